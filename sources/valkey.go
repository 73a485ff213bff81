package sources

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/valkey-io/valkey-go"
)

const valkeyRateLimitPrefix = "userlens:reddit:ratelimit"

func NewValkeyClient(ctx context.Context, address, password string) (valkey.Client, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:      []string{address},
		Password:         password,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	})
	if err != nil {
		return nil, fmt.Errorf("create valkey client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Do(pingCtx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping valkey: %w", err)
	}

	return client, nil
}

// ValkeyLimiter is a fixed one-minute window counter kept in valkey, so every
// instance of the service draws from the same reddit budget.
type ValkeyLimiter struct {
	client    valkey.Client
	logger    *slog.Logger
	perMinute int64
	now       func() time.Time
}

func NewValkeyLimiter(logger *slog.Logger, client valkey.Client, perMinute int) *ValkeyLimiter {
	return &ValkeyLimiter{
		client:    client,
		logger:    logger,
		perMinute: int64(perMinute),
		now:       time.Now,
	}
}

func (l *ValkeyLimiter) Wait(ctx context.Context) error {
	if l.perMinute <= 0 {
		return ctx.Err()
	}

	for {
		now := l.now()
		window := now.Truncate(time.Minute)
		key := fmt.Sprintf("%s:%d", valkeyRateLimitPrefix, window.Unix())

		results := l.client.DoMulti(ctx,
			l.client.B().Incr().Key(key).Build(),
			l.client.B().Expire().Key(key).Seconds(120).Build(),
		)
		count, err := results[0].AsInt64()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// fail open
			l.logger.Warn("valkey rate limit unavailable, not pacing request", "error", err)
			return nil
		}
		if count <= l.perMinute {
			return nil
		}

		if err := sleepCtx(ctx, window.Add(time.Minute).Sub(now)); err != nil {
			return err
		}
	}
}
