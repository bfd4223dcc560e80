// Package livequery turns a query plus a change stream into a standing
// subscription that redelivers the full result set on every mutation.
package livequery

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/linesmerrill/radio-santana-api/databases"
)

// DefaultBackoff is the fixed delay before resubscribing after a retryable error
const DefaultBackoff = 5 * time.Second

// ErrStreamClosed is reported when the server ends a change stream without an error
var ErrStreamClosed = errors.New("livequery: change stream closed")

// Stream is the notification side of a live query. Every successful Next means
// the watched result set may have changed.
type Stream interface {
	Next(ctx context.Context) bool
	Err() error
	Close(ctx context.Context) error
}

// Source runs the watched query and opens its change stream
type Source[T any] interface {
	Fetch(ctx context.Context) ([]T, error)
	Watch(ctx context.Context) (Stream, error)
}

// SourceFuncs adapts a pair of functions to a Source
type SourceFuncs[T any] struct {
	FetchFunc func(ctx context.Context) ([]T, error)
	WatchFunc func(ctx context.Context) (Stream, error)
}

// Fetch calls FetchFunc
func (s SourceFuncs[T]) Fetch(ctx context.Context) ([]T, error) {
	return s.FetchFunc(ctx)
}

// Watch calls WatchFunc
func (s SourceFuncs[T]) Watch(ctx context.Context) (Stream, error) {
	return s.WatchFunc(ctx)
}

// Options tunes a subscription
type Options struct {
	// Name identifies the query in logs
	Name string
	// Backoff is the delay before resubscribing, DefaultBackoff when zero
	Backoff time.Duration
	// Retryable decides whether an error resubscribes or ends the
	// subscription, databases.IsRetryable when nil
	Retryable func(error) bool
	// OnRetry is called before each scheduled resubscription
	OnRetry func(err error, attempt int)
}

func (o Options) withDefaults() Options {
	if o.Backoff <= 0 {
		o.Backoff = DefaultBackoff
	}
	if o.Retryable == nil {
		o.Retryable = databases.IsRetryable
	}
	return o
}

// Subscription is the handle of a running live query
type Subscription struct {
	cancel    context.CancelFunc
	once      sync.Once
	cancelled atomic.Bool
	done      chan struct{}
}

// Subscribe starts a live query on its own goroutine and returns immediately.
// onSnapshot receives the complete result set, never a diff, once after the
// initial fetch and again after every change. onError receives the error that
// ended the subscription; retryable errors never reach it.
func Subscribe[T any](src Source[T], onSnapshot func([]T), onError func(error), opts Options) *Subscription {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Subscription{
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go run(ctx, s, src, onSnapshot, onError, opts.withDefaults())
	return s
}

// Cancel stops the live query and any pending resubscription. It is safe to
// call more than once and from inside a callback. Cancel does not wait: a
// delivery that already passed its cancel check may still run, but none starts
// once the subscription goroutine observes the cancel. Wait on Done for the
// point after which no callback runs.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.cancelled.Store(true)
		s.cancel()
	})
}

// Done is closed once the subscription goroutine has exited and its last
// callback has returned
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

func run[T any](ctx context.Context, s *Subscription, src Source[T], onSnapshot func([]T), onError func(error), opts Options) {
	defer close(s.done)

	attempt := 0
	for {
		err := listen(ctx, s, src, onSnapshot, &attempt)
		if ctx.Err() != nil {
			return
		}
		if !errors.Is(err, ErrStreamClosed) && !opts.Retryable(err) {
			zap.S().Errorw("live query failed", "query", opts.Name, "code", databases.Classify(err), "error", err)
			if onError != nil && !s.cancelled.Load() {
				onError(err)
			}
			return
		}

		attempt++
		zap.S().Warnw("live query interrupted, resubscribing",
			"query", opts.Name,
			"attempt", attempt,
			"backoff", opts.Backoff.String(),
			"error", err)
		if opts.OnRetry != nil {
			opts.OnRetry(err, attempt)
		}

		timer := time.NewTimer(opts.Backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// listen opens the stream before the first fetch so no mutation can slip in
// between them, then refetches on every event
func listen[T any](ctx context.Context, s *Subscription, src Source[T], onSnapshot func([]T), attempt *int) error {
	stream, err := src.Watch(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := stream.Close(context.Background()); err != nil {
			zap.S().Debugw("failed to close change stream", "error", err)
		}
	}()

	deliver := func() error {
		items, err := src.Fetch(ctx)
		if err != nil {
			return err
		}
		if s.cancelled.Load() {
			return ctx.Err()
		}
		*attempt = 0
		onSnapshot(items)
		return nil
	}

	if err := deliver(); err != nil {
		return err
	}
	for stream.Next(ctx) {
		if err := deliver(); err != nil {
			return err
		}
	}
	if err := stream.Err(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return ErrStreamClosed
}
