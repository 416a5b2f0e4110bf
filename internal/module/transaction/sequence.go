package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kiosko/server/internal/utils/random"
)

// OrderNumberSource produces human-facing order numbers.
type OrderNumberSource interface {
	Next(ctx context.Context) (string, error)
}

// redisSequence issues order numbers of the form ORD-YYYYMMDD-NNNN from a
// per-day Redis counter. The counter key expires after two days so stale
// days clean themselves up.
type redisSequence struct {
	client redis.UniversalClient
	logger *zap.Logger
}

// NewOrderNumberSource creates a Redis-backed order number source.
func NewOrderNumberSource(client redis.UniversalClient, logger *zap.Logger) OrderNumberSource {
	return &redisSequence{client: client, logger: logger}
}

func (s *redisSequence) Next(ctx context.Context) (string, error) {
	day := time.Now().Format("20060102")
	key := fmt.Sprintf("kiosko:orderseq:%s", day)

	seq, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		// Redis being down must not block order taking. Fall back to a
		// random suffix, which keeps the uniqueIndex on order_no safe.
		s.logger.Warn("order sequence unavailable, using random fallback", zap.Error(err))
		return fmt.Sprintf("ORD-%s-R%s", day, random.UpperAlphaNum(5)), nil
	}
	if seq == 1 {
		s.client.Expire(ctx, key, 48*time.Hour)
	}
	return fmt.Sprintf("ORD-%s-%04d", day, seq), nil
}
