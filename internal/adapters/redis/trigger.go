package redis

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/bft-labs/feedview/internal/ports"
	"github.com/bft-labs/feedview/pkg/log"
)

// DefaultPublishTimeout bounds a single trigger publish.
const DefaultPublishTimeout = 3 * time.Second

type triggerMessage struct {
	RequestedAt time.Time `json:"requested_at"`
	Reason      string    `json:"reason"`
}

// Trigger is a SyncTrigger that publishes refresh requests on a channel.
type Trigger struct {
	client  *goredis.Client
	channel string
	timeout time.Duration
	logger  ports.Logger
	now     func() time.Time

	wg sync.WaitGroup
}

// NewTrigger creates a trigger publishing on channel.
func NewTrigger(client *goredis.Client, channel string, logger ports.Logger) *Trigger {
	if channel == "" {
		channel = DefaultTriggerChannel
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Trigger{
		client:  client,
		channel: channel,
		timeout: DefaultPublishTimeout,
		logger:  logger,
		now:     time.Now,
	}
}

// RequestImmediateSync publishes in the background and returns at once.
func (t *Trigger) RequestImmediateSync() {
	payload, err := json.Marshal(triggerMessage{RequestedAt: t.now().UTC(), Reason: "manual"})
	if err != nil {
		t.logger.Error("encode sync trigger", ports.Err(err))
		return
	}
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
		defer cancel()
		receivers, err := t.client.Publish(ctx, t.channel, payload).Result()
		if err != nil {
			t.logger.Warn("publish sync trigger", ports.String("channel", t.channel), ports.Err(err))
			return
		}
		if receivers == 0 {
			t.logger.Warn("sync trigger published but no engine is listening", ports.String("channel", t.channel))
			return
		}
		t.logger.Debug("sync trigger published", ports.Int64("receivers", receivers))
	}()
}

// Close waits for in-flight publishes.
func (t *Trigger) Close() error {
	t.wg.Wait()
	return nil
}
