package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event is an outbox row describing a committed change. Rows are written in
// the same transaction as the change and picked up by the dispatcher.
type Event struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Event        string          `gorm:"not null" json:"event"`
	Version      int             `gorm:"not null" json:"version"`
	Entity       string          `gorm:"not null" json:"entity"`
	Operation    string          `gorm:"not null" json:"operation"`
	ActorID      uint            `gorm:"not null;index" json:"actor_id"`
	Timestamp    time.Time       `gorm:"not null" json:"timestamp"`
	Data         json.RawMessage `gorm:"type:jsonb;not null" json:"data"`
	Status       string          `gorm:"not null;default:'pending'" json:"status"`
	Dispatched   bool            `gorm:"not null;default:false;index" json:"dispatched"`
	DispatchedAt *time.Time      `json:"dispatched_at,omitempty"`
}

func NewEvent(event, entity, operation string, actorID uint, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Event:     event,
		Version:   1,
		Entity:    entity,
		Operation: operation,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
		Data:      dataBytes,
		Status:    "pending",
	}, nil
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
