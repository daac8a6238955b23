package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewEvent(t *testing.T) {
	testCases := []struct {
		name      string
		event     string
		entity    string
		operation string
		actorID   uint
		data      interface{}
		wantErr   bool
	}{
		{
			name:      "Valid event",
			event:     "task.toggled",
			entity:    "task",
			operation: "toggle",
			actorID:   3,
			data:      map[string]interface{}{"task_id": 9, "completed": true},
			wantErr:   false,
		},
		{
			name:    "Invalid JSON data",
			event:   "goal.created",
			entity:  "goal",
			data:    make(chan int),
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			event, err := NewEvent(tc.event, tc.entity, tc.operation, tc.actorID, tc.data)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.NotNil(t, event)
			assert.Equal(t, tc.event, event.Event)
			assert.Equal(t, tc.entity, event.Entity)
			assert.Equal(t, tc.operation, event.Operation)
			assert.Equal(t, tc.actorID, event.ActorID)
			assert.Equal(t, "pending", event.Status)
			assert.False(t, event.Dispatched)
			assert.Nil(t, event.DispatchedAt)

			var data map[string]interface{}
			assert.NoError(t, json.Unmarshal(event.Data, &data))
			assert.Equal(t, true, data["completed"])
		})
	}
}
