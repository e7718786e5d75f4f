package repository

import (
	"context"
	"errors"

	"github.com/ManuelReschke/PointsBridge/app/models"
	"gorm.io/gorm"
)

// organizationRepository implements the OrganizationRepository interface
type organizationRepository struct {
	db *gorm.DB
}

// NewOrganizationRepository creates a new organization repository instance
func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &organizationRepository{db: db}
}

// LinkBrandToOrganization inserts the link row. The primary key on org_id
// rejects a second link for the same organization with ErrConflict.
func (r *organizationRepository) LinkBrandToOrganization(ctx context.Context, orgID string, brand models.Brand) (bool, error) {
	org := &models.Organization{
		OrgID:     orgID,
		BrandID:   brand.ID,
		BrandName: brand.Name,
		BrandURL:  brand.WebsiteURL,
	}
	if err := r.db.WithContext(ctx).Create(org).Error; err != nil {
		return false, translateError(err, "link brand")
	}
	return true, nil
}

func (r *organizationRepository) GetOrganization(ctx context.Context, orgID string) (*models.LinkedOrganization, error) {
	var org models.Organization
	err := r.db.WithContext(ctx).Where("org_id = ?", orgID).First(&org).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return org.Linked(), nil
}
