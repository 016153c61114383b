package rest

import (
	"context"
	"fmt"

	"taskflow/internal/model"
)

func (b *Backend) FetchCategories(ctx context.Context, userID string) ([]model.Category, error) {
	var categories []model.Category
	resp, err := b.http.R().
		SetContext(ctx).
		SetQueryParam("user_id", "eq."+userID).
		SetResult(&categories).
		Get("/rest/v1/categories")
	if err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}
	if resp.IsError() {
		return nil, statusErr("fetch categories", resp)
	}
	return categories, nil
}

// categoryInsert is the wire body for category creation, without the
// server-assigned id/created_at columns.
type categoryInsert struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Color  string `json:"color"`
}

func (b *Backend) InsertCategory(ctx context.Context, category *model.Category) error {
	var created []model.Category
	resp, err := b.http.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetBody(categoryInsert{UserID: category.UserID, Name: category.Name, Color: category.Color}).
		SetResult(&created).
		Post("/rest/v1/categories")
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	if resp.IsError() {
		return statusErr("insert category", resp)
	}
	if len(created) > 0 {
		*category = created[0]
	}
	return nil
}

// DeleteCategory removes the row and nulls the reference on tasks that
// pointed at it. Two requests; the service applies each atomically.
func (b *Backend) DeleteCategory(ctx context.Context, userID, categoryID string) error {
	resp, err := b.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"user_id":     "eq." + userID,
			"category_id": "eq." + categoryID,
		}).
		SetBody(map[string]interface{}{"category_id": nil}).
		Patch("/rest/v1/tasks")
	if err != nil {
		return fmt.Errorf("detach category: %w", err)
	}
	if resp.IsError() {
		return statusErr("detach category", resp)
	}

	resp, err = b.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"id":      "eq." + categoryID,
			"user_id": "eq." + userID,
		}).
		Delete("/rest/v1/categories")
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if resp.IsError() {
		return statusErr("delete category", resp)
	}
	return nil
}
