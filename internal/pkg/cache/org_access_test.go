package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrgAccessKeyHidesToken(t *testing.T) {
	key := orgAccessKey("secret-token", "org-1")
	assert.NotContains(t, key, "secret-token")
	assert.Equal(t, key, orgAccessKey("secret-token", "org-1"))
	assert.NotEqual(t, key, orgAccessKey("other-token", "org-1"))
	assert.NotEqual(t, key, orgAccessKey("secret-token", "org-2"))
}

func TestNilOrgAccessIsAMiss(t *testing.T) {
	var o *OrgAccess
	assert.False(t, o.Allowed(context.Background(), "t", "org"))
	o.Remember(context.Background(), "t", "org")

	o = NewOrgAccess(nil)
	assert.False(t, o.Allowed(context.Background(), "t", "org"))
}
