package scheduler

import (
	"context"
	"time"

	"goaltracker/logger"
)

const (
	PurgeSessionsJob = "purge_sessions"
	PurgeEventsJob   = "purge_events"

	housekeepingTimeout = time.Minute
)

type SessionPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

type EventPurger interface {
	PurgeDispatched(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Housekeeping removes rows that only exist to be consumed once: revocations
// of sessions that have expired anyway, and outbox events already delivered.
type Housekeeping struct {
	Sessions       SessionPurger
	Events         EventPurger
	EventRetention time.Duration
}

// Register adds the hourly purge jobs to s.
func (h *Housekeeping) Register(s EventScheduler) error {
	if err := s.AddJob(PurgeSessionsJob, "@every 1h", func() { h.PurgeSessions(context.Background()) }); err != nil {
		return err
	}
	return s.AddJob(PurgeEventsJob, "@every 1h", func() { h.PurgeEvents(context.Background()) })
}

func (h *Housekeeping) PurgeSessions(ctx context.Context) {
	if h.Sessions == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, housekeepingTimeout)
	defer cancel()

	n, err := h.Sessions.PurgeExpired(ctx)
	if err != nil {
		logger.Error("Failed to purge expired sessions", "error", err)
		return
	}
	if n > 0 {
		logger.Info("Purged expired sessions", "count", n)
	}
}

func (h *Housekeeping) PurgeEvents(ctx context.Context) {
	if h.Events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, housekeepingTimeout)
	defer cancel()

	n, err := h.Events.PurgeDispatched(ctx, h.EventRetention)
	if err != nil {
		logger.Error("Failed to purge dispatched events", "error", err)
		return
	}
	if n > 0 {
		logger.Info("Purged dispatched events", "count", n)
	}
}
