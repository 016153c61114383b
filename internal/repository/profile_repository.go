package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"taskflow/internal/model"
)

// ProfileRepository manages the one-per-user gamification profile.
type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetOrCreate returns the profile for the user, creating a fresh one at
// level 1 with zero XP when it does not exist yet.
func (r *ProfileRepository) GetOrCreate(ctx context.Context, userID string) (*model.Profile, error) {
	var profile model.Profile
	db := r.db.WithContext(ctx)
	err := db.Where("id = ?", userID).First(&profile).Error
	switch {
	case err == nil:
		return &profile, nil
	case err == gorm.ErrRecordNotFound:
		profile = model.Profile{ID: userID, XP: 0, Level: 1}
		if err := db.Create(&profile).Error; err != nil {
			return nil, fmt.Errorf("create profile: %w", err)
		}
		return &profile, nil
	default:
		return nil, fmt.Errorf("find profile: %w", err)
	}
}

// SetXP stores a new XP total together with its derived level. The two
// columns are always written in one statement, never independently.
func (r *ProfileRepository) SetXP(ctx context.Context, userID string, xpTotal, level int) (*model.Profile, error) {
	db := r.db.WithContext(ctx)
	res := db.Model(&model.Profile{}).Where("id = ?", userID).
		Updates(map[string]interface{}{"xp": xpTotal, "level": level})
	if res.Error != nil {
		return nil, fmt.Errorf("update profile: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	var profile model.Profile
	if err := db.Where("id = ?", userID).First(&profile).Error; err != nil {
		return nil, fmt.Errorf("reload profile: %w", err)
	}
	return &profile, nil
}
