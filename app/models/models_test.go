package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrgConfigPointsRatio(t *testing.T) {
	var missing *OrgConfig
	assert.Equal(t, DefaultPointsForDollarSpent, missing.PointsRatio())
	assert.Equal(t, DefaultPointsForDollarSpent, (&OrgConfig{}).PointsRatio())
	assert.Equal(t, 2.5, (&OrgConfig{OrgID: "org", PointsForDollarSpent: 2.5}).PointsRatio())
}

func TestOrganizationLinked(t *testing.T) {
	url := "https://example.com"
	org := &Organization{OrgID: "org_1", BrandID: "brand_1", BrandName: "Cafe", BrandURL: &url}

	linked := org.Linked()
	assert.Equal(t, "org_1", linked.OrgID)
	assert.Equal(t, "brand_1", linked.Brand.ID)
	assert.Equal(t, "Cafe", linked.Brand.Name)
	if assert.NotNil(t, linked.Brand.WebsiteURL) {
		assert.Equal(t, url, *linked.Brand.WebsiteURL)
	}
}
