package job

import (
	"log/slog"
	"time"

	"github.com/riverqueue/river"
)

type schedule struct {
	task ScheduledTask
}

type config struct {
	registry   *registry
	queues     map[string]int
	log        *slog.Logger
	schedules  []schedule
	maxWorkers int
}

// Option configures a Manager.
type Option func(*config)

// WithTask registers a payload-carrying task under its Name.
func WithTask[P any](t Task[P]) Option {
	return func(c *config) {
		c.registry.add(t.Name(), typed(t))
	}
}

// WithScheduledTask registers a periodic task.
func WithScheduledTask(t ScheduledTask) Option {
	return func(c *config) {
		c.schedules = append(c.schedules, schedule{task: t})
	}
}

// WithQueue adds a named queue with its own worker limit.
func WithQueue(name string, workers int) Option {
	return func(c *config) {
		if workers > 0 {
			c.queues[name] = workers
		}
	}
}

// WithMaxWorkers sets the worker limit of the default queue. Default 10.
func WithMaxWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxWorkers = n
		}
	}
}

// WithLogger sets the logger used by the manager and by River itself.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.log = l
		}
	}
}

type enqueueConfig struct {
	scheduledAt time.Time
	queue       string
	maxAttempts int
	uniqueFor   time.Duration
}

// EnqueueOption tweaks a single insert.
type EnqueueOption func(*enqueueConfig)

// InQueue routes the job to a named queue.
func InQueue(name string) EnqueueOption {
	return func(c *enqueueConfig) { c.queue = name }
}

// ScheduledIn delays the job by d.
func ScheduledIn(d time.Duration) EnqueueOption {
	return func(c *enqueueConfig) { c.scheduledAt = time.Now().Add(d) }
}

// MaxAttempts caps retries. River's default applies when unset.
func MaxAttempts(n int) EnqueueOption {
	return func(c *enqueueConfig) { c.maxAttempts = n }
}

// UniqueFor skips the insert when an identical job was queued within d.
func UniqueFor(d time.Duration) EnqueueOption {
	return func(c *enqueueConfig) { c.uniqueFor = d }
}

func (c *enqueueConfig) insertOpts() *river.InsertOpts {
	opts := &river.InsertOpts{
		Queue:       c.queue,
		ScheduledAt: c.scheduledAt,
	}
	if c.maxAttempts > 0 {
		opts.MaxAttempts = c.maxAttempts
	}
	if c.uniqueFor > 0 {
		opts.UniqueOpts = river.UniqueOpts{ByArgs: true, ByPeriod: c.uniqueFor}
	}
	return opts
}
