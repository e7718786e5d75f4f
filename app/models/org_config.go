package models

// DefaultPointsForDollarSpent applies when an organization has no config.
const DefaultPointsForDollarSpent = 1.0

// OrgConfig holds the per-organization points ratio.
type OrgConfig struct {
	OrgID                string  `gorm:"column:org_id;type:varchar(191);primaryKey" json:"orgId"`
	PointsForDollarSpent float64 `gorm:"column:points_for_dollar_spent;not null;default:1" json:"pointsForDollarSpent" validate:"gt=0"`
}

func (OrgConfig) TableName() string { return "org_configs" }

// PointsRatio returns the configured ratio, falling back to the default for
// a missing config.
func (c *OrgConfig) PointsRatio() float64 {
	if c == nil || c.PointsForDollarSpent <= 0 {
		return DefaultPointsForDollarSpent
	}
	return c.PointsForDollarSpent
}
