package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/relayforge/chatrelay/pkg/logging"
)

const dedupTTL = 24 * time.Hour

// Deduper suppresses webhook redeliveries. Twilio retries webhooks it
// considers failed, so each MessageSid is claimed once in Redis; replays of
// a claimed sid are dropped without reprocessing.
type Deduper struct {
	redis  *redis.Client
	logger *logging.Logger
}

// NewDeduper creates a Redis-backed webhook deduper.
func NewDeduper(client *redis.Client, logger *logging.Logger) *Deduper {
	if client == nil {
		panic("messaging: redis client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Deduper{redis: client, logger: logger}
}

// Seen claims the message sid and reports whether it was already claimed.
// Redis being unreachable fails open: the message is treated as new and the
// error is logged, since replying twice beats not replying at all.
func (d *Deduper) Seen(ctx context.Context, messageSid string) bool {
	if messageSid == "" {
		return false
	}
	claimed, err := d.redis.SetNX(ctx, dedupKey(messageSid), 1, dedupTTL).Result()
	if err != nil {
		d.logger.Error("webhook dedup unavailable", "error", err, "message_sid", messageSid)
		return false
	}
	return !claimed
}

func dedupKey(messageSid string) string {
	return fmt.Sprintf("webhook_sid:%s", messageSid)
}
