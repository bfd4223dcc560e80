// Package testhelpers holds in-memory stand-ins for the live collections so
// managers and handlers can be tested without a replica set.
package testhelpers

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/radio-santana-api/databases"
	"github.com/linesmerrill/radio-santana-api/models"
)

var epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// changeFeed fans mutation notices out to every open stream
type changeFeed struct {
	mu      sync.Mutex
	streams map[*FeedStream]struct{}
}

func (f *changeFeed) open() *FeedStream {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.streams == nil {
		f.streams = make(map[*FeedStream]struct{})
	}
	s := &FeedStream{
		feed:   f,
		events: make(chan struct{}, 1),
		fail:   make(chan error, 1),
		closed: make(chan struct{}),
	}
	f.streams[s] = struct{}{}
	return s
}

func (f *changeFeed) notify() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for s := range f.streams {
		select {
		case s.events <- struct{}{}:
		default:
		}
	}
}

func (f *changeFeed) failAll(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for s := range f.streams {
		select {
		case s.fail <- err:
		default:
		}
	}
}

func (f *changeFeed) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.streams)
}

// FeedStream is an in-memory change stream. Notices coalesce, which is fine
// for consumers that refetch on every event.
type FeedStream struct {
	feed      *changeFeed
	events    chan struct{}
	fail      chan error
	closed    chan struct{}
	closeOnce sync.Once
	err       error
}

// Next blocks until a mutation, a failure or the end of ctx
func (s *FeedStream) Next(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		s.err = ctx.Err()
		return false
	case err := <-s.fail:
		s.err = err
		return false
	case <-s.closed:
		return false
	case <-s.events:
		return true
	}
}

// Err returns the error that ended the stream
func (s *FeedStream) Err() error {
	return s.err
}

// Close detaches the stream from its feed
func (s *FeedStream) Close(context.Context) error {
	s.closeOnce.Do(func() {
		s.feed.mu.Lock()
		delete(s.feed.streams, s)
		s.feed.mu.Unlock()
		close(s.closed)
	})
	return nil
}

// findOptions pulls the descending flag and limit out of find options
func findOptions(opts []*options.FindOptions) (desc bool, limit int64) {
	for _, o := range opts {
		if o == nil {
			continue
		}
		if o.Sort != nil {
			desc = true
		}
		if o.Limit != nil {
			limit = *o.Limit
		}
	}
	return desc, limit
}

func popErr(errs *[]error) error {
	if len(*errs) == 0 {
		return nil
	}
	err := (*errs)[0]
	*errs = (*errs)[1:]
	return err
}

// ChatMessages is an in-memory databases.ChatMessageDatabase
type ChatMessages struct {
	mu       sync.Mutex
	messages []models.ChatMessage
	feed     changeFeed
	tick     int

	// InsertErr fails every insert while set
	InsertErr error
	// FindErrs fail the next finds, one each
	FindErrs []error
	// WatchErrs fail the next watches, one each
	WatchErrs []error
}

var _ databases.ChatMessageDatabase = (*ChatMessages)(nil)

// InsertOne stores msg with the next tick of a fake server clock
func (c *ChatMessages) InsertOne(_ context.Context, msg models.ChatMessage) (primitive.ObjectID, error) {
	c.mu.Lock()
	if c.InsertErr != nil {
		err := c.InsertErr
		c.mu.Unlock()
		return primitive.NilObjectID, databases.Wrap("insert chat message", err)
	}
	c.tick++
	msg.ID = primitive.NewObjectID()
	msg.Timestamp = epoch.Add(time.Duration(c.tick) * time.Millisecond)
	msg.CreatedAt = msg.Timestamp.Format(time.RFC3339Nano)
	c.messages = append(c.messages, msg)
	c.mu.Unlock()

	c.feed.notify()
	return msg.ID, nil
}

// Find returns the messages, newest first when a sort is given
func (c *ChatMessages) Find(_ context.Context, _ interface{}, opts ...*options.FindOptions) ([]models.ChatMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := popErr(&c.FindErrs); err != nil {
		return nil, databases.Wrap("find chat messages", err)
	}

	out := append([]models.ChatMessage(nil), c.messages...)
	desc, limit := findOptions(opts)
	if desc {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	}
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Watch opens a change stream on the collection
func (c *ChatMessages) Watch(context.Context) (databases.ChangeStreamHelper, error) {
	c.mu.Lock()
	err := popErr(&c.WatchErrs)
	c.mu.Unlock()
	if err != nil {
		return nil, databases.Wrap("watch chat messages", err)
	}
	return c.feed.open(), nil
}

// All returns every stored message in insertion order
func (c *ChatMessages) All() []models.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.ChatMessage(nil), c.messages...)
}

// FailStreams ends every open change stream with err
func (c *ChatMessages) FailStreams(err error) {
	c.feed.failAll(err)
}

// OpenStreams reports how many change streams are attached
func (c *ChatMessages) OpenStreams() int {
	return c.feed.count()
}

// MusicRequests is an in-memory databases.MusicRequestDatabase
type MusicRequests struct {
	mu       sync.Mutex
	requests []models.MusicRequest
	feed     changeFeed
	tick     int

	// InsertErr fails every insert while set
	InsertErr error
	// FindErrs fail the next finds, one each
	FindErrs []error
	// CountErr fails every count while set
	CountErr error
	// DeleteErr fails every delete while set
	DeleteErr error
	// BeforeDelete runs ahead of every delete, outside the lock
	BeforeDelete func()
	// WatchErrs fail the next watches, one each
	WatchErrs []error
}

var _ databases.MusicRequestDatabase = (*MusicRequests)(nil)

// InsertOne stores req with the next tick of a fake server clock
func (m *MusicRequests) InsertOne(_ context.Context, req models.MusicRequest) (primitive.ObjectID, error) {
	m.mu.Lock()
	if m.InsertErr != nil {
		err := m.InsertErr
		m.mu.Unlock()
		return primitive.NilObjectID, databases.Wrap("insert music request", err)
	}
	m.tick++
	req.ID = primitive.NewObjectID()
	req.Timestamp = epoch.Add(time.Duration(m.tick) * time.Millisecond)
	req.CreatedAt = req.Timestamp.Format(time.RFC3339Nano)
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	m.feed.notify()
	return req.ID, nil
}

// Find returns the requests, newest first when a sort is given
func (m *MusicRequests) Find(_ context.Context, _ interface{}, opts ...*options.FindOptions) ([]models.MusicRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := popErr(&m.FindErrs); err != nil {
		return nil, databases.Wrap("find music requests", err)
	}

	out := append([]models.MusicRequest(nil), m.requests...)
	desc, limit := findOptions(opts)
	if desc {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	}
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Count returns the number of stored requests
func (m *MusicRequests) Count(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CountErr != nil {
		return 0, databases.Wrap("count music requests", m.CountErr)
	}
	return int64(len(m.requests)), nil
}

// UpdateStatus sets the status of an existing request
func (m *MusicRequests) UpdateStatus(_ context.Context, id primitive.ObjectID, status models.RequestStatus) error {
	m.mu.Lock()
	found := false
	for i := range m.requests {
		if m.requests[i].ID == id {
			m.tick++
			updated := epoch.Add(time.Duration(m.tick) * time.Millisecond)
			m.requests[i].Status = status
			m.requests[i].UpdatedAt = &updated
			found = true
			break
		}
	}
	m.mu.Unlock()

	if !found {
		return &databases.Error{Code: databases.CodeNotFound, Op: "update music request"}
	}
	m.feed.notify()
	return nil
}

// DeleteMany removes the requests with the given ids
func (m *MusicRequests) DeleteMany(_ context.Context, ids []primitive.ObjectID) (int64, error) {
	if m.BeforeDelete != nil {
		m.BeforeDelete()
	}

	m.mu.Lock()
	if m.DeleteErr != nil {
		err := m.DeleteErr
		m.mu.Unlock()
		return 0, databases.Wrap("delete music requests", err)
	}
	drop := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := m.requests[:0]
	var n int64
	for _, r := range m.requests {
		if drop[r.ID] {
			n++
			continue
		}
		kept = append(kept, r)
	}
	m.requests = kept
	m.mu.Unlock()

	if n > 0 {
		m.feed.notify()
	}
	return n, nil
}

// Watch opens a change stream on the collection
func (m *MusicRequests) Watch(context.Context) (databases.ChangeStreamHelper, error) {
	m.mu.Lock()
	err := popErr(&m.WatchErrs)
	m.mu.Unlock()
	if err != nil {
		return nil, databases.Wrap("watch music requests", err)
	}
	return m.feed.open(), nil
}

// All returns every stored request in insertion order
func (m *MusicRequests) All() []models.MusicRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.MusicRequest(nil), m.requests...)
}

// FailStreams ends every open change stream with err
func (m *MusicRequests) FailStreams(err error) {
	m.feed.failAll(err)
}
