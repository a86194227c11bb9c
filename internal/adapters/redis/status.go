// Package redis connects the viewer to a sync engine through Redis: the
// engine keeps its status in a hash and announces transitions on a pub/sub
// channel; manual refreshes are published on a trigger channel.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/bft-labs/feedview/internal/adapters/fanout"
	"github.com/bft-labs/feedview/internal/domain"
	"github.com/bft-labs/feedview/internal/ports"
	"github.com/bft-labs/feedview/pkg/log"
)

// Default keys and channels.
const (
	DefaultStatusKey      = "feedview:sync:status"
	DefaultStatusChannel  = "feedview:sync:status"
	DefaultTriggerChannel = "feedview:sync:trigger"
)

// NewClient creates a client from a redis:// URL.
func NewClient(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return goredis.NewClient(opts), nil
}

type statusMessage struct {
	Pending bool `json:"pending"`
	Active  bool `json:"active"`
}

type statusListener struct {
	mask     domain.StatusMask
	onChange ports.StatusFunc
}

// StatusOptions configures a StatusMonitor.
type StatusOptions struct {
	Key     string
	Channel string
	Logger  ports.Logger
}

// StatusMonitor is a SyncStatusMonitor over a Redis hash plus channel.
type StatusMonitor struct {
	client  *goredis.Client
	key     string
	channel string
	logger  ports.Logger

	mu        sync.Mutex
	last      domain.SyncStatus
	pubsub    *goredis.PubSub
	done      chan struct{}
	listeners *fanout.Registry[statusListener]
}

// NewStatusMonitor creates a monitor using client.
func NewStatusMonitor(client *goredis.Client, opts StatusOptions) *StatusMonitor {
	if opts.Key == "" {
		opts.Key = DefaultStatusKey
	}
	if opts.Channel == "" {
		opts.Channel = DefaultStatusChannel
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNoopLogger()
	}
	return &StatusMonitor{
		client:    client,
		key:       opts.Key,
		channel:   opts.Channel,
		logger:    opts.Logger,
		listeners: fanout.NewRegistry[statusListener](),
	}
}

// Subscribe implements ports.SyncStatusMonitor. The channel subscription is
// confirmed before the current status is read, so no transition is lost
// between the two.
func (m *StatusMonitor) Subscribe(ctx context.Context, mask domain.StatusMask, onChange ports.StatusFunc) (ports.StatusHandle, domain.SyncStatus, error) {
	m.mu.Lock()

	if m.pubsub == nil {
		ps := m.client.Subscribe(ctx, m.channel)
		if _, err := ps.Receive(ctx); err != nil {
			m.mu.Unlock()
			ps.Close()
			return ports.StatusHandle{}, domain.SyncStatus{}, fmt.Errorf("subscribe %s: %w", m.channel, err)
		}
		m.pubsub = ps
		m.done = make(chan struct{})
		go m.watch(ps, m.done)
	}

	status, err := m.load(ctx)
	if err != nil {
		// nobody else holds the channel subscription, so drop it
		var ps *goredis.PubSub
		var done chan struct{}
		if m.listeners.Len() == 0 {
			ps, done = m.detachLocked()
		}
		m.mu.Unlock()
		if cerr := closeWatch(ps, done); cerr != nil {
			m.logger.Warn("closing status subscription", ports.Err(cerr))
		}
		return ports.StatusHandle{}, domain.SyncStatus{}, err
	}
	m.last = status

	id := m.listeners.Add(statusListener{mask: mask, onChange: onChange})
	m.mu.Unlock()
	return ports.StatusHandle{ID: id}, status, nil
}

// Unsubscribe implements ports.SyncStatusMonitor. The channel subscription
// is dropped with the last listener.
func (m *StatusMonitor) Unsubscribe(h ports.StatusHandle) error {
	m.listeners.Remove(h.ID)
	if m.listeners.Len() > 0 {
		return nil
	}
	return m.stop()
}

// Close drops the channel subscription. The client is left open.
func (m *StatusMonitor) Close() error {
	m.listeners.Clear()
	return m.stop()
}

// Publish stores status and announces it. Sync engines call this on every
// transition.
func (m *StatusMonitor) Publish(ctx context.Context, status domain.SyncStatus) error {
	payload, err := json.Marshal(statusMessage{Pending: status.Pending, Active: status.Active})
	if err != nil {
		return err
	}
	_, err = m.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HSet(ctx, m.key, "pending", flag(status.Pending), "active", flag(status.Active))
		pipe.Publish(ctx, m.channel, payload)
		return nil
	})
	return err
}

func (m *StatusMonitor) stop() error {
	m.mu.Lock()
	ps, done := m.detachLocked()
	m.mu.Unlock()
	return closeWatch(ps, done)
}

func (m *StatusMonitor) detachLocked() (*goredis.PubSub, chan struct{}) {
	ps, done := m.pubsub, m.done
	m.pubsub, m.done = nil, nil
	return ps, done
}

// closeWatch must be called without m.mu held; watch takes it per message.
func closeWatch(ps *goredis.PubSub, done chan struct{}) error {
	if ps == nil {
		return nil
	}
	err := ps.Close()
	<-done
	return err
}

func (m *StatusMonitor) load(ctx context.Context) (domain.SyncStatus, error) {
	fields, err := m.client.HGetAll(ctx, m.key).Result()
	if err != nil {
		return domain.SyncStatus{}, fmt.Errorf("read %s: %w", m.key, err)
	}
	return domain.SyncStatus{
		Pending: parseFlag(fields["pending"]),
		Active:  parseFlag(fields["active"]),
	}, nil
}

func (m *StatusMonitor) watch(ps *goredis.PubSub, done chan struct{}) {
	defer close(done)
	for msg := range ps.Channel(goredis.WithChannelHealthCheckInterval(30 * time.Second)) {
		var sm statusMessage
		if err := json.Unmarshal([]byte(msg.Payload), &sm); err != nil {
			m.logger.Warn("malformed sync status message", ports.String("payload", msg.Payload), ports.Err(err))
			continue
		}
		next := domain.SyncStatus{Pending: sm.Pending, Active: sm.Active}

		m.mu.Lock()
		prev := m.last
		m.last = next
		m.mu.Unlock()

		for _, l := range m.listeners.Snapshot() {
			if l.mask.Matches(prev, next) {
				l.onChange(next.Pending, next.Active)
			}
		}
	}
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func parseFlag(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}
