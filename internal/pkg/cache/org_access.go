package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
)

const orgAccessTTL = 5 * time.Minute

// OrgAccess remembers which organizations a user token was allowed to see,
// sparing a Platform round trip on every gated request. Only positive
// answers are cached.
type OrgAccess struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewOrgAccess(rdb redis.Cmdable) *OrgAccess {
	return &OrgAccess{rdb: rdb, ttl: orgAccessTTL}
}

func orgAccessKey(accessToken, orgID string) string {
	sum := sha256.Sum256([]byte(accessToken))
	return "org_access:" + hex.EncodeToString(sum[:12]) + ":" + orgID
}

// Allowed reports a cached grant. Cache errors count as a miss.
func (o *OrgAccess) Allowed(ctx context.Context, accessToken, orgID string) bool {
	if o == nil || o.rdb == nil {
		return false
	}
	err := o.rdb.Get(ctx, orgAccessKey(accessToken, orgID)).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		log.Warnf("org access cache lookup failed: %v", err)
	}
	return err == nil
}

func (o *OrgAccess) Remember(ctx context.Context, accessToken, orgID string) {
	if o == nil || o.rdb == nil {
		return
	}
	if err := o.rdb.Set(ctx, orgAccessKey(accessToken, orgID), "1", o.ttl).Err(); err != nil {
		log.Warnf("org access cache write failed: %v", err)
	}
}
