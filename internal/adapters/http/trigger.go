// Package http implements the sync trigger port against a sync engine's
// HTTP API.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/bft-labs/feedview/internal/ports"
	"github.com/bft-labs/feedview/pkg/log"
)

const syncEndpoint = "/v1/sync"

// Defaults for TriggerOptions.
const (
	DefaultTimeout    = 10 * time.Second
	DefaultMaxRetries = 3
)

// TriggerOptions configures a Trigger.
type TriggerOptions struct {
	// ServiceURL is the engine base URL; the trigger POSTs to ServiceURL/v1/sync.
	ServiceURL string
	AuthKey    string
	Timeout    time.Duration
	MaxRetries uint
	Logger     ports.Logger
	// BackOff overrides the retry policy. Tests use a zero backoff.
	BackOff backoff.BackOff
}

type syncRequest struct {
	RequestedAt time.Time `json:"requested_at"`
	Reason      string    `json:"reason"`
}

// Trigger is a SyncTrigger that posts refresh requests. Requests made while
// one is in flight collapse into a single follow-up.
type Trigger struct {
	client ports.HTTPClient
	opts   TriggerOptions
	logger ports.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	inflight bool
	again    bool
}

// NewTrigger creates a trigger. A nil client uses http.DefaultClient.
func NewTrigger(client ports.HTTPClient, opts TriggerOptions) *Trigger {
	if client == nil {
		client = http.DefaultClient
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNoopLogger()
	}
	opts.ServiceURL = strings.TrimRight(opts.ServiceURL, "/")
	ctx, cancel := context.WithCancel(context.Background())
	return &Trigger{
		client: client,
		opts:   opts,
		logger: opts.Logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// RequestImmediateSync returns at once; the request is sent in the background.
func (t *Trigger) RequestImmediateSync() {
	t.mu.Lock()
	if t.inflight {
		t.again = true
		t.mu.Unlock()
		return
	}
	t.inflight = true
	t.mu.Unlock()

	t.wg.Add(1)
	go t.run()
}

// Close abandons retries and waits for the background sender.
func (t *Trigger) Close() error {
	t.cancel()
	t.wg.Wait()
	return nil
}

func (t *Trigger) run() {
	defer t.wg.Done()
	for {
		if err := t.sendWithRetry(t.ctx); err != nil {
			t.logger.Warn("sync trigger failed", ports.String("url", t.opts.ServiceURL), ports.Err(err))
		}

		t.mu.Lock()
		if !t.again || t.ctx.Err() != nil {
			t.inflight, t.again = false, false
			t.mu.Unlock()
			return
		}
		t.again = false
		t.mu.Unlock()
	}
}

func (t *Trigger) sendWithRetry(ctx context.Context) error {
	bo := t.opts.BackOff
	if bo == nil {
		exp := backoff.NewExponentialBackOff()
		exp.InitialInterval = 500 * time.Millisecond
		exp.MaxInterval = 10 * time.Second
		exp.Multiplier = 2
		bo = exp
	}
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, t.send(ctx)
	},
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(t.opts.MaxRetries),
		backoff.WithNotify(func(err error, next time.Duration) {
			t.logger.Debug("retrying sync trigger", ports.Err(err), ports.Duration("next", next))
		}),
	)
	return err
}

func (t *Trigger) send(ctx context.Context) error {
	body, err := json.Marshal(syncRequest{RequestedAt: time.Now().UTC(), Reason: "manual"})
	if err != nil {
		return backoff.Permanent(fmt.Errorf("marshal request: %w", err))
	}

	ctx, cancel := context.WithTimeout(ctx, t.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.opts.ServiceURL+syncEndpoint, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Client-OSArch", runtime.GOOS+"/"+runtime.GOARCH)
	if t.opts.AuthKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.opts.AuthKey)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 == 2 {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	err = fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	// 4xx other than throttling will not succeed on retry
	if resp.StatusCode/100 == 4 && resp.StatusCode != http.StatusTooManyRequests {
		return backoff.Permanent(err)
	}
	return err
}
