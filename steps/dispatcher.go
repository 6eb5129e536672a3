/*
Copyright 2026 Chainlit Authors
SPDX-License-Identifier: Apache-2.0
*/

package steps

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/sethvargo/go-envconfig"
	"golang.org/x/sync/errgroup"
)

// Config controls the dispatcher's queue and delivery behavior.
type Config struct {
	// QueueSize bounds the number of steps waiting for delivery. Enqueue on a
	// full queue drops the step.
	QueueSize int `env:"CHAINLIT_STEP_QUEUE_SIZE, default=256"`
	// Workers is the number of concurrent delivery goroutines.
	Workers int `env:"CHAINLIT_STEP_WORKERS, default=1"`
	// SendTimeout bounds a single Send attempt.
	SendTimeout time.Duration `env:"CHAINLIT_STEP_SEND_TIMEOUT, default=10s"`
	// SendRetries is the number of re-attempts after a failed Send.
	// 0 disables retries.
	SendRetries int `env:"CHAINLIT_STEP_SEND_RETRIES, default=2"`
	// BaseBackoff is the initial backoff between send attempts.
	BaseBackoff time.Duration `env:"CHAINLIT_STEP_SEND_BACKOFF, default=100ms"`
	// MaxBackoff caps the backoff between send attempts.
	MaxBackoff time.Duration `env:"CHAINLIT_STEP_SEND_MAX_BACKOFF, default=2s"`
	// MaxJitter is the maximum random jitter added to each backoff.
	MaxJitter time.Duration `env:"CHAINLIT_STEP_SEND_MAX_JITTER, default=50ms"`
}

// DefaultConfig returns a configuration suitable for most applications.
func DefaultConfig() Config {
	return Config{
		QueueSize:   256,
		Workers:     1,
		SendTimeout: 10 * time.Second,
		SendRetries: 2,
		BaseBackoff: 100 * time.Millisecond,
		MaxBackoff:  2 * time.Second,
		MaxJitter:   50 * time.Millisecond,
	}
}

// LoadConfig reads the dispatcher configuration from the environment.
func LoadConfig(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return cfg, fmt.Errorf("processing dispatcher config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks that the configuration has usable values.
func (c Config) Validate() error {
	if c.QueueSize <= 0 {
		return errors.New("queue size must be positive")
	}
	if c.Workers <= 0 {
		return errors.New("workers must be positive")
	}
	if c.SendTimeout <= 0 {
		return errors.New("send timeout must be positive")
	}
	if c.SendRetries < 0 {
		return errors.New("send retries cannot be negative")
	}
	if c.BaseBackoff < 0 || c.MaxBackoff < 0 || c.MaxJitter < 0 {
		return errors.New("backoff durations cannot be negative")
	}
	return nil
}

// flushPollInterval is how often Flush re-checks the in-flight count.
const flushPollInterval = 5 * time.Millisecond

// Dispatcher delivers steps to a Sender from background workers. Enqueue
// never blocks the producer; delivery is best effort and unordered with
// respect to the producing call's return.
type Dispatcher struct {
	sender Sender
	cfg    Config

	queue chan *Step
	eg    *errgroup.Group

	// mu spans Enqueue's closed check and queue send, so that once Close has
	// closed the channel under the write lock no producer can still reach the
	// queue. The queue channel itself is never closed; workers drain it and
	// exit after closed is observed.
	mu        sync.RWMutex
	closeOnce sync.Once
	closed    chan struct{}

	enqueued atomic.Int64
	pending  atomic.Int64
	dropped  atomic.Int64
}

// NewDispatcher starts cfg.Workers delivery goroutines reading from a bounded
// queue. ctx is the base context for deliveries and their logging.
func NewDispatcher(ctx context.Context, sender Sender, cfg Config) (*Dispatcher, error) {
	if sender == nil {
		return nil, errors.New("sender is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d := &Dispatcher{
		sender: sender,
		cfg:    cfg,
		queue:  make(chan *Step, cfg.QueueSize),
		closed: make(chan struct{}),
	}

	d.eg = &errgroup.Group{}
	for range cfg.Workers {
		d.eg.Go(func() error {
			d.worker(ctx)
			return nil
		})
	}
	return d, nil
}

// Enqueue submits a step for asynchronous delivery. It returns false when the
// step was dropped because the queue is full or the dispatcher is closed.
func (d *Dispatcher) Enqueue(step *Step) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	select {
	case <-d.closed:
		d.dropped.Add(1)
		return false
	default:
	}

	d.pending.Add(1)
	select {
	case d.queue <- step:
		d.enqueued.Add(1)
		return true
	default:
		d.pending.Add(-1)
		d.dropped.Add(1)
		return false
	}
}

// Flush waits until every step enqueued so far has been handed to the Sender,
// or until ctx is done.
func (d *Dispatcher) Flush(ctx context.Context) error {
	ticker := time.NewTicker(flushPollInterval)
	defer ticker.Stop()
	for d.pending.Load() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// Close stops intake, drains outstanding steps, and waits for the workers.
// The dispatcher accepts no further steps afterwards. When ctx expires before
// the drain completes, Close returns the context error; the workers still
// finish the drain on their own and exit.
func (d *Dispatcher) Close(ctx context.Context) error {
	var err error
	d.closeOnce.Do(func() {
		d.mu.Lock()
		close(d.closed)
		d.mu.Unlock()

		if err = d.Flush(ctx); err != nil {
			return
		}
		err = d.eg.Wait()
	})
	return err
}

// Dropped returns the number of steps dropped since the dispatcher started.
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

func (d *Dispatcher) worker(ctx context.Context) {
	for {
		select {
		case step := <-d.queue:
			d.deliver(ctx, step)
			d.pending.Add(-1)
		case <-d.closed:
			// Intake has stopped; anything still buffered was enqueued before
			// closed was closed. Drain it and exit.
			for {
				select {
				case step := <-d.queue:
					d.deliver(ctx, step)
					d.pending.Add(-1)
				default:
					return
				}
			}
		}
	}
}

// deliver sends one step, retrying transient failures with capped exponential
// backoff plus jitter. A step that exhausts its retries is dropped.
func (d *Dispatcher) deliver(ctx context.Context, step *Step) {
	log := clog.FromContext(ctx)

	var lastErr error
	for attempt := 0; attempt <= d.cfg.SendRetries; attempt++ {
		sctx, cancel := context.WithTimeout(ctx, d.cfg.SendTimeout)
		lastErr = d.sender.Send(sctx, step)
		cancel()
		if lastErr == nil {
			return
		}

		if attempt >= d.cfg.SendRetries {
			break
		}

		backoff := min(d.cfg.BaseBackoff<<attempt, d.cfg.MaxBackoff)
		var jitter time.Duration
		if d.cfg.MaxJitter > 0 {
			if n, err := rand.Int(rand.Reader, big.NewInt(int64(d.cfg.MaxJitter))); err == nil {
				jitter = time.Duration(n.Int64())
			}
		}

		log.With("step_id", step.ID).
			With("attempt", attempt+1).
			With("backoff", backoff+jitter).
			With("error", lastErr.Error()).
			Warn("Step delivery failed, retrying")

		select {
		case <-ctx.Done():
			d.dropped.Add(1)
			return
		case <-time.After(backoff + jitter):
		}
	}

	d.dropped.Add(1)
	log.With("step_id", step.ID).
		With("retries", d.cfg.SendRetries).
		With("error", lastErr.Error()).
		Warn("Dropping step after delivery failures")
}
