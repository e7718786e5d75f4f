package counter

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
)

const webhookOutcomesKey = "webhook:counters:outcomes"

// Outcomes counts webhook deliveries per outcome in a Redis hash so the
// totals survive restarts and are shared between instances.
type Outcomes struct {
	rdb redis.Cmdable
}

func NewOutcomes(rdb redis.Cmdable) *Outcomes {
	return &Outcomes{rdb: rdb}
}

// Add increments the counter for outcome. Failures are logged, never
// returned, so counting can not fail a delivery.
func (o *Outcomes) Add(ctx context.Context, outcome string) {
	if o == nil || o.rdb == nil || outcome == "" {
		return
	}
	if err := o.rdb.HIncrBy(ctx, webhookOutcomesKey, outcome, 1).Err(); err != nil {
		log.Warnf("webhook counter %s: %v", outcome, err)
	}
}

// Snapshot returns the current totals. An empty hash yields an empty map.
func (o *Outcomes) Snapshot(ctx context.Context) (map[string]int64, error) {
	out := map[string]int64{}
	if o == nil || o.rdb == nil {
		return out, nil
	}
	data, err := o.rdb.HGetAll(ctx, webhookOutcomesKey).Result()
	if err != nil {
		return nil, err
	}
	for outcome, raw := range data {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			log.Warnf("webhook counter %s holds %q", outcome, raw)
			continue
		}
		out[outcome] = n
	}
	return out, nil
}
