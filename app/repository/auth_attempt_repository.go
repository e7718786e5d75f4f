package repository

import (
	"context"
	"errors"

	"github.com/ManuelReschke/PointsBridge/app/models"
	"gorm.io/gorm"
)

// authAttemptRepository implements the AuthAttemptRepository interface
type authAttemptRepository struct {
	db *gorm.DB
}

// NewAuthAttemptRepository creates a new auth attempt repository instance
func NewAuthAttemptRepository(db *gorm.DB) AuthAttemptRepository {
	return &authAttemptRepository{db: db}
}

func (r *authAttemptRepository) CreateAuthAttempt(ctx context.Context, state, codeVerifier string) (*models.AuthAttempt, error) {
	attempt := &models.AuthAttempt{
		State:        state,
		CodeVerifier: codeVerifier,
	}
	if err := r.db.WithContext(ctx).Create(attempt).Error; err != nil {
		return nil, translateError(err, "create auth attempt")
	}
	return attempt, nil
}

func (r *authAttemptRepository) GetAuthAttemptByState(ctx context.Context, state string) (*models.AuthAttempt, error) {
	var attempt models.AuthAttempt
	err := r.db.WithContext(ctx).Where("state = ?", state).First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &attempt, nil
}
