package notify

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RedisSink publishes assignment notifications over Redis Pub/Sub, one
// channel per caregiver, so mobile clients can subscribe to their own
// channel. Publishes are rate-limited to keep a large pass from flooding
// the broker.
type RedisSink struct {
	rdb *redis.Client
	lim *rate.Limiter
}

func NewRedisSink(url string, perSec float64) (*RedisSink, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	if perSec <= 0 {
		perSec = 50
	}
	return &RedisSink{
		rdb: redis.NewClient(opt),
		lim: rate.NewLimiter(rate.Limit(perSec), int(perSec)),
	}, nil
}

func (s *RedisSink) NotifyAssignment(ctx context.Context, caregiverID string, sum VisitSummary) error {
	if err := s.lim.Wait(ctx); err != nil {
		return err
	}
	data, err := json.Marshal(sum)
	if err != nil {
		return err
	}
	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.rdb.Publish(pctx, s.chanName(caregiverID), data).Err()
}

func (s *RedisSink) Close() error { return s.rdb.Close() }

func (s *RedisSink) chanName(caregiverID string) string { return "caregiver:" + caregiverID }
