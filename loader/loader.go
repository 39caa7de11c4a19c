package loader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/pitabwire/util"

	"github.com/pitabwire/podenv/props"
)

const (
	defaultWorkers        = 4
	defaultExpiryDuration = time.Second
	defaultRetryDelay     = 5 * time.Second
)

// Options defines configurable options for the background refresh pool.
type Options struct {
	Workers        int
	ExpiryDuration time.Duration
	RetryDelay     time.Duration
	Logger         *util.LogEntry
}

// Option defines a function that configures loader options.
type Option func(*Options)

// WithWorkers sets how many refreshes may run at once.
func WithWorkers(count int) Option {
	return func(opts *Options) {
		opts.Workers = count
	}
}

// WithExpiryDuration sets how long an idle refresh worker is kept.
func WithExpiryDuration(duration time.Duration) Option {
	return func(opts *Options) {
		opts.ExpiryDuration = duration
	}
}

// WithRetryDelay sets how long a table whose fetch failed is left alone
// before Notify schedules it again.
func WithRetryDelay(delay time.Duration) Option {
	return func(opts *Options) {
		opts.RetryDelay = delay
	}
}

// WithLogger sets a logger for the loader and its pool.
func WithLogger(logger *util.LogEntry) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// Loader fills property tables from a Source. Tables are refreshed in place
// so their identity never changes, and a refresh is only scheduled when a
// table was never loaded or has outlived the max age its caller asked for.
// After a failed fetch the table is not retried until the retry delay passes.
type Loader struct {
	ctx        context.Context
	source     Source
	pool       *ants.Pool
	logger     *util.LogEntry
	retryDelay time.Duration
	inflight   sync.Map // map[string]struct{}
	failedAt   sync.Map // map[string]time.Time
	pending    sync.WaitGroup
}

// New creates a loader backed by source. ctx bounds background refreshes.
func New(ctx context.Context, source Source, opts ...Option) (*Loader, error) {
	options := &Options{
		Workers:        defaultWorkers,
		ExpiryDuration: defaultExpiryDuration,
		RetryDelay:     defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.Logger == nil {
		options.Logger = util.Log(ctx)
	}
	if options.Workers <= 0 {
		options.Workers = 1
	}

	// Submissions queue for a free worker; Notify never waits on them.
	pool, err := ants.NewPool(options.Workers,
		ants.WithExpiryDuration(options.ExpiryDuration),
		ants.WithNonblocking(false),
		ants.WithMaxBlockingTasks(0),
		ants.WithLogger(options.Logger),
		ants.WithPanicHandler(func(p any) {
			options.Logger.WithField("panic", p).Error("property refresh panicked")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("could not create refresh pool: %w", err)
	}

	return &Loader{
		ctx:        ctx,
		source:     source,
		pool:       pool,
		logger:     options.Logger,
		retryDelay: options.RetryDelay,
	}, nil
}

// Notify schedules a background refresh of table when it is stale for maxAge.
// It never blocks; at most one refresh per key is outstanding and a scheduled
// refresh runs as soon as a worker is free.
func (l *Loader) Notify(module, resourcePath string, table *props.Table, maxAge time.Duration) {
	if !table.Stale(maxAge) {
		return
	}

	key := props.Key(module, resourcePath)
	if l.backingOff(key) {
		return
	}
	if _, busy := l.inflight.LoadOrStore(key, struct{}{}); busy {
		return
	}

	l.pending.Add(1)
	go l.submit(key, func() {
		if err := l.Refresh(l.ctx, module, resourcePath, table); err != nil {
			l.logger.WithError(err).WithField("key", key).Warn("could not refresh property table")
		}
	})
}

func (l *Loader) submit(key string, refresh func()) {
	err := l.pool.Submit(func() {
		defer l.pending.Done()
		defer l.inflight.Delete(key)
		refresh()
	})
	if err != nil {
		l.pending.Done()
		l.inflight.Delete(key)
		l.logger.WithError(err).WithField("key", key).Warn("property refresh not scheduled")
	}
}

func (l *Loader) backingOff(key string) bool {
	v, ok := l.failedAt.Load(key)
	if !ok {
		return false
	}
	at, _ := v.(time.Time)
	return time.Since(at) < l.retryDelay
}

// Refresh fetches the table synchronously and replaces its contents.
// A missing table loads as empty; any other failure leaves contents intact.
func (l *Loader) Refresh(ctx context.Context, module, resourcePath string, table *props.Table) error {
	values, err := l.source.Fetch(ctx, module, resourcePath)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			l.failedAt.Store(props.Key(module, resourcePath), time.Now())
			return fmt.Errorf("fetch %s: %w", props.Key(module, resourcePath), err)
		}
		values = nil
	}

	table.Replace(values)
	l.failedAt.Delete(props.Key(module, resourcePath))
	l.logger.WithField("key", props.Key(module, resourcePath)).
		WithField("entries", len(values)).
		Debug("property table refreshed")
	return nil
}

// Wait blocks until every scheduled refresh has finished.
func (l *Loader) Wait() {
	l.pending.Wait()
}

// Close waits for outstanding refreshes and releases the worker pool.
func (l *Loader) Close() {
	l.Wait()
	l.pool.Release()
}
