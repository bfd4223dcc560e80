// Package requests owns the song request queue: submissions, a bounded
// retention window and moderation status changes.
package requests

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/linesmerrill/radio-santana-api/databases"
	"github.com/linesmerrill/radio-santana-api/livequery"
	"github.com/linesmerrill/radio-santana-api/models"
	"github.com/linesmerrill/radio-santana-api/telemetry"
)

// DefaultRetention is the number of most recent requests kept
const DefaultRetention = 3

// Queue mediates every read and write against the music requests
type Queue struct {
	db        databases.MusicRequestDatabase
	sink      telemetry.Sink
	retention int
	backoff   time.Duration
}

// NewQueue returns a Queue over db keeping the retention most recent requests.
// A zero retention or backoff takes the default and a nil sink discards events.
func NewQueue(db databases.MusicRequestDatabase, sink telemetry.Sink, retention int, backoff time.Duration) *Queue {
	if retention <= 0 {
		retention = DefaultRetention
	}
	if sink == nil {
		sink = telemetry.Noop{}
	}
	return &Queue{
		db:        db,
		sink:      sink,
		retention: retention,
		backoff:   backoff,
	}
}

// Retention returns the size of the kept window
func (q *Queue) Retention() int {
	return q.retention
}

// Submit stores a pending request and trims the queue back to the retention
// window. A failed trim is logged and left to the next submit or sweep.
func (q *Queue) Submit(ctx context.Context, track, artist, requester, message string) (primitive.ObjectID, error) {
	req := models.MusicRequest{
		Track:     strings.TrimSpace(track),
		Artist:    strings.TrimSpace(artist),
		Requester: strings.TrimSpace(requester),
		Message:   strings.TrimSpace(message),
		Status:    models.RequestStatusPending,
	}
	switch {
	case req.Track == "":
		return primitive.NilObjectID, &models.ValidationError{Field: "track", Message: "La canción es obligatoria."}
	case req.Artist == "":
		return primitive.NilObjectID, &models.ValidationError{Field: "artist", Message: "El artista es obligatorio."}
	case req.Requester == "":
		return primitive.NilObjectID, &models.ValidationError{Field: "requester", Message: "Tu nombre es obligatorio."}
	}

	id, err := q.db.InsertOne(ctx, req)
	if err != nil {
		zap.S().Errorw("failed to submit music request", "error", err)
		return primitive.NilObjectID, &WriteError{Code: databases.Classify(err), Message: SubmitFailedMessage, Err: err}
	}
	q.sink.RecordEvent(telemetry.EventRequestSubmitted, map[string]string{"artist": req.Artist})

	if _, err := q.cleanup(ctx); err != nil {
		zap.S().Warnw("failed to trim music requests after submit", "requestID", id.Hex(), "error", err)
	}
	return id, nil
}

// Sweep trims the queue back to the retention window without submitting
func (q *Queue) Sweep(ctx context.Context) (int64, error) {
	return q.cleanup(ctx)
}

// cleanup reads the full id set before the recent window. A request inserted
// in between is missing from the first read and so is never deleted here,
// which can over-retain until the next pass but never drops below the window.
func (q *Queue) cleanup(ctx context.Context) (int64, error) {
	total, err := q.db.Count(ctx)
	if err != nil {
		return 0, err
	}
	if total <= int64(q.retention) {
		return 0, nil
	}

	all, err := q.db.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return 0, err
	}
	if len(all) <= q.retention {
		return 0, nil
	}

	recent, err := q.db.Find(ctx, bson.M{}, q.windowOptions())
	if err != nil {
		return 0, err
	}
	keep := make(map[primitive.ObjectID]bool, len(recent))
	for _, r := range recent {
		keep[r.ID] = true
	}

	var stale []primitive.ObjectID
	for _, r := range all {
		if !keep[r.ID] {
			stale = append(stale, r.ID)
		}
	}

	n, err := q.db.DeleteMany(ctx, stale)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		zap.S().Infow("trimmed music requests", "deleted", n, "kept", len(recent))
	}
	return n, nil
}

func (q *Queue) windowOptions() *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(q.retention))
}

// Recent reads the retained window once, newest first
func (q *Queue) Recent(ctx context.Context) ([]models.MusicRequest, error) {
	return q.fetch(ctx)
}

func (q *Queue) fetch(ctx context.Context) ([]models.MusicRequest, error) {
	reqs, err := q.db.Find(ctx, bson.M{}, q.windowOptions())
	if err != nil {
		return nil, err
	}
	if reqs == nil {
		reqs = []models.MusicRequest{}
	}
	return reqs, nil
}

// Subscribe keeps onUpdate fed with the retained window in the store's
// newest first order. Every call carries the full window.
func (q *Queue) Subscribe(onUpdate func([]models.MusicRequest), onError func(error)) *livequery.Subscription {
	src := livequery.SourceFuncs[models.MusicRequest]{
		FetchFunc: q.fetch,
		WatchFunc: func(ctx context.Context) (livequery.Stream, error) {
			cs, err := q.db.Watch(ctx)
			if err != nil {
				return nil, err
			}
			return cs, nil
		},
	}
	return livequery.Subscribe[models.MusicRequest](src, onUpdate, onError, livequery.Options{
		Name:    "musicRequests",
		Backoff: q.backoff,
	})
}

// UpdateStatus moves a request to status. Any of the known statuses may follow
// any other, moderation is trusted.
func (q *Queue) UpdateStatus(ctx context.Context, id string, status models.RequestStatus) error {
	if !status.Valid() {
		return &models.ValidationError{Field: "status", Message: "Estado de petición no válido."}
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return &WriteError{Code: databases.CodeNotFound, Message: UpdateFailedMessage, Err: err}
	}

	if err := q.db.UpdateStatus(ctx, oid, status); err != nil {
		zap.S().Errorw("failed to update music request status",
			"requestID", id,
			"status", status,
			"error", err)
		return &WriteError{Code: databases.Classify(err), Message: UpdateFailedMessage, Err: err}
	}
	q.sink.RecordEvent(telemetry.EventRequestStatus, map[string]string{"status": string(status)})
	return nil
}
