package models

// Brand is the provider-side merchant brand an organization is linked to.
type Brand struct {
	ID         string  `json:"id" validate:"required"`
	Name       string  `json:"name" validate:"required"`
	WebsiteURL *string `json:"websiteURL"`
}

// Organization is the stored link between a platform organization and a
// provider brand. There is at most one row per organization.
type Organization struct {
	OrgID     string  `gorm:"column:org_id;type:varchar(191);primaryKey" json:"orgId"`
	BrandID   string  `gorm:"column:brand_id;type:varchar(191)" json:"-"`
	BrandName string  `gorm:"column:brand_name;type:varchar(255)" json:"-"`
	BrandURL  *string `gorm:"column:brand_url;type:varchar(255)" json:"-"`
}

func (Organization) TableName() string { return "organizations" }

// LinkedOrganization is the read model returned for a linked organization.
type LinkedOrganization struct {
	OrgID string `json:"orgId"`
	Brand Brand  `json:"brand"`
}

// Linked converts the stored row into its read model.
func (o *Organization) Linked() *LinkedOrganization {
	return &LinkedOrganization{
		OrgID: o.OrgID,
		Brand: Brand{
			ID:         o.BrandID,
			Name:       o.BrandName,
			WebsiteURL: o.BrandURL,
		},
	}
}
