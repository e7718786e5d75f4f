package repository

import (
	"context"
	"errors"

	"github.com/ManuelReschke/PointsBridge/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// orgConfigRepository implements the OrgConfigRepository interface
type orgConfigRepository struct {
	db *gorm.DB
}

// NewOrgConfigRepository creates a new org config repository instance
func NewOrgConfigRepository(db *gorm.DB) OrgConfigRepository {
	return &orgConfigRepository{db: db}
}

func (r *orgConfigRepository) GetConfig(ctx context.Context, orgID string) (*models.OrgConfig, error) {
	var config models.OrgConfig
	err := r.db.WithContext(ctx).Where("org_id = ?", orgID).First(&config).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &config, nil
}

// SetConfig replaces the whole record for the organization.
func (r *orgConfigRepository) SetConfig(ctx context.Context, orgID string, config models.OrgConfig) error {
	config.OrgID = orgID
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "org_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"points_for_dollar_spent"}),
	}).Create(&config).Error
}

func (r *orgConfigRepository) ClearConfig(ctx context.Context, orgID string) error {
	return r.db.WithContext(ctx).Where("org_id = ?", orgID).Delete(&models.OrgConfig{}).Error
}
