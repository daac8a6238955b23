package testutils

import (
	"database/sql/driver"
	"encoding/json"
	"testing"
	"time"

	"goaltracker/database"
	"goaltracker/models"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

// MockEventRows creates mock SQL rows for events testing
func MockEventRows(events []models.Event) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "event", "version", "entity", "operation",
		"actor_id", "timestamp", "data", "status",
		"dispatched", "dispatched_at",
	})

	for _, event := range events {
		if event.ID == uuid.Nil {
			event.ID = uuid.New()
		}
		if event.Timestamp.IsZero() {
			event.Timestamp = time.Now()
		}
		if event.Data == nil {
			event.Data = json.RawMessage(`{}`)
		}
		if event.Status == "" {
			event.Status = "pending"
		}

		rows.AddRow(
			event.ID,
			event.Event,
			event.Version,
			event.Entity,
			event.Operation,
			event.ActorID,
			event.Timestamp,
			[]byte(event.Data),
			event.Status,
			event.Dispatched,
			event.DispatchedAt,
		)
	}

	return rows
}

// EventsNamed returns the outbox rows with the given event name, oldest first.
func EventsNamed(t *testing.T, db *database.Database, name string) []models.Event {
	t.Helper()
	var events []models.Event
	if err := db.DB.Where("event = ?", name).Order("timestamp").Find(&events).Error; err != nil {
		t.Fatalf("failed to load events: %v", err)
	}
	return events
}

func NewResult(lastInsertID, rowsAffected int64) driver.Result {
	return sqlmock.NewResult(lastInsertID, rowsAffected)
}
