package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"goaltracker/broker"
	"goaltracker/database"
	"goaltracker/logger"
	"goaltracker/models"
)

const eventBatchSize = 100

// UserNotifier delivers a message to every live connection of a user.
type UserNotifier interface {
	SendToUser(userID uint, message []byte)
}

type EventHandlerServiceInterface interface {
	Start()
	Stop()
	ProcessPendingEvents(ctx context.Context) (int, error)
	PurgeDispatched(ctx context.Context, olderThan time.Duration) (int64, error)
}

// EventHandlerService drains the events outbox. Each pending event is
// published on the broker, pushed to the acting user's websocket clients and
// then marked dispatched. Publisher and notifier are both optional.
type EventHandlerService struct {
	db        *database.Database
	publisher broker.Producer
	notifier  UserNotifier
	interval  time.Duration

	mu        sync.Mutex
	isRunning bool
	stopChan  chan struct{}
	done      chan struct{}
}

func NewEventHandlerService(db *database.Database, publisher broker.Producer, notifier UserNotifier, interval time.Duration) *EventHandlerService {
	if interval <= 0 {
		interval = time.Second
	}
	return &EventHandlerService{
		db:        db,
		publisher: publisher,
		notifier:  notifier,
		interval:  interval,
	}
}

func (s *EventHandlerService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	go s.loop(s.stopChan, s.done)
	logger.Info("Event dispatcher started", "interval", s.interval.String())
}

func (s *EventHandlerService) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	close(s.stopChan)
	done := s.done
	s.mu.Unlock()

	<-done
	logger.Info("Event dispatcher stopped")
}

func (s *EventHandlerService) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

func (s *EventHandlerService) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), s.interval*10)
			if _, err := s.ProcessPendingEvents(ctx); err != nil {
				logger.Error("Error processing events", "error", err)
			}
			cancel()
		}
	}
}

// ProcessPendingEvents dispatches up to one batch of pending events and
// returns how many were marked dispatched. An event whose publish fails stays
// pending and is retried on the next pass.
func (s *EventHandlerService) ProcessPendingEvents(ctx context.Context) (int, error) {
	var events []models.Event
	err := s.db.DB.WithContext(ctx).
		Where("dispatched = ?", false).
		Order("timestamp").
		Limit(eventBatchSize).
		Find(&events).Error
	if err != nil {
		return 0, storageError("fetch pending events", err)
	}

	if len(events) > 0 {
		logger.Debug("Found pending events", "count", len(events))
	}

	dispatched := 0
	for _, event := range events {
		if err := s.dispatchEvent(ctx, event); err != nil {
			logger.Warn("Error dispatching event", "event_id", event.ID, "event", event.Event, "error", err)
			continue
		}
		dispatched++
	}
	return dispatched, nil
}

func (s *EventHandlerService) dispatchEvent(ctx context.Context, event models.Event) error {
	message, err := json.Marshal(newEventMessage(event))
	if err != nil {
		return err
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(broker.SubjectForEntity(event.Entity), message); err != nil {
			return err
		}
	}

	if s.notifier != nil && event.ActorID != 0 {
		s.notifier.SendToUser(event.ActorID, message)
	}

	now := time.Now().UTC()
	return s.db.DB.WithContext(ctx).Model(&event).Updates(map[string]interface{}{
		"dispatched":    true,
		"dispatched_at": now,
		"status":        "completed",
	}).Error
}

// PurgeDispatched deletes dispatched events older than olderThan.
func (s *EventHandlerService) PurgeDispatched(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	result := s.db.DB.WithContext(ctx).
		Where("dispatched = ? AND dispatched_at < ?", true, cutoff).
		Delete(&models.Event{})
	if result.Error != nil {
		return 0, storageError("purge events", result.Error)
	}
	return result.RowsAffected, nil
}

func newEventMessage(event models.Event) ServerMessage {
	data := event.Data
	if len(data) == 0 {
		data = json.RawMessage(`{}`)
	}
	return ServerMessage{
		Type:  "event",
		Event: event.Event,
		Payload: map[string]interface{}{
			"event_id":  event.ID.String(),
			"entity":    event.Entity,
			"operation": event.Operation,
			"timestamp": event.Timestamp,
			"data":      data,
		},
	}
}
