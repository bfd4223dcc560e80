package livequery_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/radio-santana-api/databases"
	"github.com/linesmerrill/radio-santana-api/livequery"
)

type fakeStream struct {
	events chan struct{}
	fail   chan error
	err    error
	closed atomic.Bool
}

func newFakeStream() *fakeStream {
	return &fakeStream{events: make(chan struct{}, 8), fail: make(chan error, 1)}
}

func (f *fakeStream) Next(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		f.err = ctx.Err()
		return false
	case err := <-f.fail:
		f.err = err
		return false
	case <-f.events:
		return true
	}
}

func (f *fakeStream) Err() error { return f.err }

func (f *fakeStream) Close(context.Context) error {
	f.closed.Store(true)
	return nil
}

type fakeSource struct {
	mu        sync.Mutex
	items     []int
	watchErrs []error
	watches   int
	streams   chan *fakeStream
}

func newFakeSource(items ...int) *fakeSource {
	return &fakeSource{items: items, streams: make(chan *fakeStream, 8)}
}

func (f *fakeSource) set(items ...int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = items
}

func (f *fakeSource) watchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.watches
}

func (f *fakeSource) Fetch(context.Context) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.items...), nil
}

func (f *fakeSource) Watch(context.Context) (livequery.Stream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.watches++
	if len(f.watchErrs) > 0 {
		err := f.watchErrs[0]
		f.watchErrs = f.watchErrs[1:]
		return nil, err
	}
	s := newFakeStream()
	f.streams <- s
	return s, nil
}

func receive(t *testing.T, ch <-chan []int) []int {
	t.Helper()
	select {
	case got := <-ch:
		return got
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func TestSubscribe_RedeliversFullSnapshot(t *testing.T) {
	src := newFakeSource(1, 2)
	snapshots := make(chan []int, 8)

	sub := livequery.Subscribe[int](src, func(items []int) { snapshots <- items }, nil, livequery.Options{Name: "test"})
	defer sub.Cancel()

	assert.Equal(t, []int{1, 2}, receive(t, snapshots))

	stream := <-src.streams
	src.set(1, 2, 3)
	stream.events <- struct{}{}
	assert.Equal(t, []int{1, 2, 3}, receive(t, snapshots))

	src.set(2, 3)
	stream.events <- struct{}{}
	assert.Equal(t, []int{2, 3}, receive(t, snapshots))
}

func TestSubscribe_RetryableErrorResubscribes(t *testing.T) {
	src := newFakeSource(7)
	snapshots := make(chan []int, 8)
	var retries atomic.Int32
	var terminal atomic.Int32

	sub := livequery.Subscribe[int](src,
		func(items []int) { snapshots <- items },
		func(error) { terminal.Add(1) },
		livequery.Options{
			Backoff: 10 * time.Millisecond,
			OnRetry: func(err error, attempt int) {
				assert.Equal(t, databases.CodeUnavailable, databases.Classify(err))
				assert.Equal(t, 1, attempt)
				retries.Add(1)
			},
		})
	defer sub.Cancel()

	assert.Equal(t, []int{7}, receive(t, snapshots))

	first := <-src.streams
	src.set(7, 8)
	first.fail <- &databases.Error{Code: databases.CodeUnavailable, Op: "watch"}

	assert.Equal(t, []int{7, 8}, receive(t, snapshots))
	assert.True(t, first.closed.Load())
	assert.Equal(t, int32(1), retries.Load())
	assert.Zero(t, terminal.Load())
	assert.Equal(t, 2, src.watchCount())
}

func TestSubscribe_ServerClosedStreamResubscribes(t *testing.T) {
	src := newFakeSource(1)
	snapshots := make(chan []int, 8)

	sub := livequery.Subscribe[int](src, func(items []int) { snapshots <- items }, nil, livequery.Options{Backoff: time.Millisecond})
	defer sub.Cancel()

	receive(t, snapshots)
	first := <-src.streams
	first.fail <- nil

	assert.Equal(t, []int{1}, receive(t, snapshots))
	assert.Equal(t, 2, src.watchCount())
}

func TestSubscribe_TerminalErrorStops(t *testing.T) {
	src := newFakeSource()
	src.watchErrs = []error{&databases.Error{Code: databases.CodePermissionDenied, Op: "watch"}}
	errs := make(chan error, 1)

	sub := livequery.Subscribe[int](src,
		func([]int) { t.Error("unexpected snapshot") },
		func(err error) { errs <- err },
		livequery.Options{Backoff: time.Millisecond})

	select {
	case err := <-errs:
		assert.Equal(t, databases.CodePermissionDenied, databases.Classify(err))
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for error")
	}

	<-sub.Done()
	assert.Equal(t, 1, src.watchCount())
	sub.Cancel()
}

func TestSubscription_CancelIsIdempotent(t *testing.T) {
	src := newFakeSource(1)
	var delivered atomic.Int32

	sub := livequery.Subscribe[int](src, func([]int) { delivered.Add(1) }, nil, livequery.Options{})

	stream := <-src.streams
	require.Eventually(t, func() bool { return delivered.Load() == 1 }, time.Second, time.Millisecond)

	sub.Cancel()
	sub.Cancel()

	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("subscription did not stop")
	}

	stream.events <- struct{}{}
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), delivered.Load())
	assert.True(t, stream.closed.Load())
}

func TestSubscription_CancelClearsPendingRetry(t *testing.T) {
	src := newFakeSource()
	src.watchErrs = []error{&databases.Error{Code: databases.CodeUnavailable, Op: "watch"}}
	retried := make(chan struct{}, 1)

	sub := livequery.Subscribe[int](src, func([]int) {}, func(error) { t.Error("unexpected error") }, livequery.Options{
		Backoff: time.Hour,
		OnRetry: func(error, int) { retried <- struct{}{} },
	})

	<-retried
	sub.Cancel()

	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("pending retry kept the subscription alive")
	}
	assert.Equal(t, 1, src.watchCount())
}

func TestSubscription_CancelFromCallback(t *testing.T) {
	src := newFakeSource(1)
	var sub *livequery.Subscription
	ready := make(chan struct{})

	sub = livequery.Subscribe[int](src, func([]int) {
		<-ready
		sub.Cancel()
	}, nil, livequery.Options{})
	close(ready)

	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("cancel from callback deadlocked")
	}
}

func TestSubscription_DoneWaitsForDeliveryInFlight(t *testing.T) {
	src := newFakeSource(1)
	entered := make(chan struct{})
	release := make(chan struct{})
	var delivered atomic.Int32

	sub := livequery.Subscribe[int](src, func([]int) {
		if delivered.Add(1) == 1 {
			close(entered)
			<-release
		}
	}, nil, livequery.Options{})

	stream := <-src.streams
	<-entered
	sub.Cancel()

	select {
	case <-sub.Done():
		t.Fatal("done closed while a callback was still running")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("subscription did not stop")
	}

	stream.events <- struct{}{}
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), delivered.Load())
}

func TestSourceFuncs(t *testing.T) {
	boom := errors.New("boom")
	src := livequery.SourceFuncs[string]{
		FetchFunc: func(context.Context) ([]string, error) { return []string{"a"}, nil },
		WatchFunc: func(context.Context) (livequery.Stream, error) { return nil, boom },
	}

	items, err := src.Fetch(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []string{"a"}, items)

	_, err = src.Watch(context.Background())
	assert.Equal(t, boom, err)
}
