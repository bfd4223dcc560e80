package scheduler

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/linesmerrill/radio-santana-api/databases"
)

const (
	requestSweepLock = "request_sweep_job"

	requestSweepSpec  = "* * * * *"
	streamStatsSpec   = "@every 5s"
	sessionExpirySpec = "@every 1m"
)

// Sweeper trims a retention bounded collection
type Sweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

// StatsRefresher reloads cached stream statistics
type StatsRefresher interface {
	Refresh(ctx context.Context) error
}

// SessionReaper ends sessions whose credential has lapsed
type SessionReaper interface {
	Expire(now time.Time) int
}

// Scheduler handles the periodic background jobs of the station
type Scheduler struct {
	cron       *cron.Cron
	Queue      Sweeper
	Stats      StatsRefresher
	Sessions   SessionReaper
	LockDB     databases.SchedulerLockDatabase
	instanceID string

	mu          sync.Mutex
	statsFailed bool
}

// NewScheduler creates a new scheduler instance. stats may be nil when no
// stream status endpoint is configured.
func NewScheduler(queue Sweeper, stats StatsRefresher, lockDB databases.SchedulerLockDatabase) *Scheduler {
	// Heroku sets this to "web.1", "web.2", etc.
	instanceID := os.Getenv("DYNO")
	if instanceID == "" {
		instanceID = "instance-" + uuid.New().String()
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		Queue:      queue,
		Stats:      stats,
		LockDB:     lockDB,
		instanceID: instanceID,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Requests that lost a cleanup race are trimmed every minute
	if _, err := s.cron.AddFunc(requestSweepSpec, s.sweepRequests); err != nil {
		zap.S().Errorw("failed to register request sweep job", "error", err)
	}

	if s.Stats != nil {
		if _, err := s.cron.AddFunc(streamStatsSpec, s.refreshStreamStats); err != nil {
			zap.S().Errorw("failed to register stream stats job", "error", err)
		}
	}

	// Sessions live in this process, so every instance reaps its own
	if s.Sessions != nil {
		if _, err := s.cron.AddFunc(sessionExpirySpec, s.expireSessions); err != nil {
			zap.S().Errorw("failed to register session expiry job", "error", err)
		}
	}

	s.cron.Start()
	zap.S().Infow("Station scheduler started", "instance", s.instanceID)
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Station scheduler stopped")
}

// sweepRequests enforces the request queue retention on a single instance
func (s *Scheduler) sweepRequests() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	acquired, err := s.LockDB.TryAcquireLock(ctx, requestSweepLock, s.instanceID, 2*time.Minute)
	if err != nil {
		zap.S().Errorw("failed to acquire lock for request sweep job", "error", err)
		return
	}
	if !acquired {
		zap.S().Debug("Request sweep job already running on another instance, skipping")
		return
	}
	defer func() {
		if err := s.LockDB.ReleaseLock(ctx, requestSweepLock, s.instanceID); err != nil {
			zap.S().Warnw("failed to release request sweep lock", "error", err)
		}
	}()

	deleted, err := s.Queue.Sweep(ctx)
	if err != nil {
		zap.S().Errorw("request sweep failed", "error", err)
		return
	}
	if deleted > 0 {
		zap.S().Infow("request sweep removed overflow", "deleted", deleted, "instance", s.instanceID)
	}
}

// expireSessions closes the chat sessions of visitors whose credential ran out
func (s *Scheduler) expireSessions() {
	if n := s.Sessions.Expire(time.Now()); n > 0 {
		zap.S().Infow("expired chat sessions", "closed", n, "instance", s.instanceID)
	}
}

// refreshStreamStats polls the stream server. Failures are logged once when
// they start and once when they clear.
func (s *Scheduler) refreshStreamStats() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := s.Stats.Refresh(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case err != nil && !s.statsFailed:
		zap.S().Warnw("stream stats unavailable", "error", err)
	case err == nil && s.statsFailed:
		zap.S().Info("stream stats available again")
	case err != nil:
		zap.S().Debugw("stream stats still unavailable", "error", err)
	}
	s.statsFailed = err != nil
}
