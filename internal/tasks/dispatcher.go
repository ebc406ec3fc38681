// Package tasks runs fire-and-forget background jobs with bounded retry.
// Jobs are enqueued after the originating transaction commits; a job that
// exhausts its attempts reports the terminal error to its OnExhausted hook
// so the owning record can be marked failed.
package tasks

import (
	"context"
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = 500 * time.Millisecond
	}
	return c
}

// Job is one unit of background work. Run is retried on error; OnExhausted
// fires once after the last failed attempt, with the final error.
type Job struct {
	Name        string
	Run         func(ctx context.Context) error
	OnExhausted func(ctx context.Context, err error)
}

type Params struct {
	fx.In

	Log    *zap.Logger
	Config Config `optional:"true"`
}

type Dispatcher struct {
	log  *zap.Logger
	cfg  Config
	wg   sync.WaitGroup
	mu   sync.Mutex
	done bool

	ctx    context.Context
	cancel context.CancelFunc
}

func New(p Params) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		log:    p.Log.Named("tasks"),
		cfg:    p.Config.withDefaults(),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Dispatch schedules the job on its own goroutine. Returns false when the
// dispatcher is already shut down.
func (d *Dispatcher) Dispatch(job Job) bool {
	d.mu.Lock()
	if d.done {
		d.mu.Unlock()
		return false
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()
		d.run(job)
	}()
	return true
}

func (d *Dispatcher) run(job Job) {
	log := d.log.With(zap.String("job", job.Name))
	delay := d.cfg.BaseDelay
	var lastErr error

	for attempt := 1; attempt <= d.cfg.MaxAttempts; attempt++ {
		if d.ctx.Err() != nil {
			return
		}
		lastErr = job.Run(d.ctx)
		if lastErr == nil {
			if attempt > 1 {
				log.Info("job recovered", zap.Int("attempt", attempt))
			}
			return
		}
		log.Warn("job attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", d.cfg.MaxAttempts),
			zap.Error(lastErr),
		)
		if attempt == d.cfg.MaxAttempts {
			break
		}
		select {
		case <-d.ctx.Done():
			return
		case <-time.After(delay):
		}
		delay *= 2
	}

	log.Error("job exhausted retries", zap.Error(lastErr))
	if job.OnExhausted != nil {
		job.OnExhausted(d.ctx, lastErr)
	}
}

// Shutdown stops accepting work and waits for in-flight jobs.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.done = true
	d.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		return ctx.Err()
	}
}

// Wait blocks until all dispatched jobs finish. Test helper.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
