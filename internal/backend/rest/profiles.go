package rest

import (
	"context"
	"fmt"

	"taskflow/internal/backend"
	"taskflow/internal/model"
)

func (b *Backend) FetchProfile(ctx context.Context, userID string) (*model.Profile, error) {
	var profiles []model.Profile
	resp, err := b.http.R().
		SetContext(ctx).
		SetQueryParam("id", "eq."+userID).
		SetResult(&profiles).
		Get("/rest/v1/profiles")
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	if resp.IsError() {
		return nil, statusErr("fetch profile", resp)
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("fetch profile: %w", backend.ErrNotFound)
	}
	return &profiles[0], nil
}

// UpdateProfile writes XP and level together and returns the stored row.
func (b *Backend) UpdateProfile(ctx context.Context, userID string, xpTotal, level int) (*model.Profile, error) {
	var updated []model.Profile
	resp, err := b.http.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetQueryParam("id", "eq."+userID).
		SetBody(map[string]interface{}{"xp": xpTotal, "level": level}).
		SetResult(&updated).
		Patch("/rest/v1/profiles")
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if resp.IsError() {
		return nil, statusErr("update profile", resp)
	}
	if len(updated) == 0 {
		return nil, fmt.Errorf("update profile: %w", backend.ErrNotFound)
	}
	return &updated[0], nil
}
