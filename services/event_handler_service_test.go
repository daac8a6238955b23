package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"goaltracker/models"
	"goaltracker/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockProducer struct {
	mock.Mock
}

func (m *mockProducer) Publish(subject string, data []byte) error {
	args := m.Called(subject, data)
	return args.Error(0)
}

func (m *mockProducer) Close() {}

type recordingNotifier struct {
	mu       sync.Mutex
	messages map[uint][][]byte
}

func (n *recordingNotifier) SendToUser(userID uint, message []byte) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.messages == nil {
		n.messages = make(map[uint][][]byte)
	}
	n.messages[userID] = append(n.messages[userID], message)
}

func (n *recordingNotifier) count(userID uint) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages[userID])
}

func TestProcessPendingEvents_PublishesAndNotifies(t *testing.T) {
	db, ctx := setupServiceDB(t)
	alice := createTestUser(t, db, "alice")
	createTestGoal(t, db, alice, "Goal", "a")

	producer := &mockProducer{}
	producer.On("Publish", "goaltracker.user_events", mock.Anything).Return(nil).Once()
	producer.On("Publish", "goaltracker.goal_events", mock.Anything).Return(nil).Once()
	notifier := &recordingNotifier{}

	service := NewEventHandlerService(db, producer, notifier, time.Second)
	n, err := service.ProcessPendingEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	producer.AssertExpectations(t)

	require.Equal(t, 2, notifier.count(alice.UserID))
	var msg ServerMessage
	require.NoError(t, json.Unmarshal(notifier.messages[alice.UserID][1], &msg))
	assert.Equal(t, "event", msg.Type)
	assert.Equal(t, "goal.created", msg.Event)

	events := testutils.EventsNamed(t, db, "goal.created")
	require.Len(t, events, 1)
	assert.True(t, events[0].Dispatched)
	assert.Equal(t, "completed", events[0].Status)
	assert.NotNil(t, events[0].DispatchedAt)

	n, err = service.ProcessPendingEvents(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestProcessPendingEvents_PublishFailureKeepsEventPending(t *testing.T) {
	db, ctx := setupServiceDB(t)
	createTestUser(t, db, "alice")

	producer := &mockProducer{}
	producer.On("Publish", mock.Anything, mock.Anything).Return(errors.New("nats down"))

	service := NewEventHandlerService(db, producer, nil, time.Second)
	n, err := service.ProcessPendingEvents(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	events := testutils.EventsNamed(t, db, "user.created")
	require.Len(t, events, 1)
	assert.False(t, events[0].Dispatched)
}

func TestProcessPendingEvents_WithoutPublisher(t *testing.T) {
	db, ctx := setupServiceDB(t)
	createTestUser(t, db, "alice")

	n, err := NewEventHandlerService(db, nil, nil, time.Second).ProcessPendingEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestProcessPendingEvents_FetchError(t *testing.T) {
	db, mock, close := testutils.SetupMockDB()
	defer close()

	mock.ExpectQuery(`SELECT \* FROM "events" WHERE dispatched = \$1`).
		WillReturnError(errors.New("connection reset"))

	_, err := NewEventHandlerService(db, nil, nil, time.Second).ProcessPendingEvents(context.Background())
	assert.ErrorIs(t, err, ErrStorage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurgeDispatched(t *testing.T) {
	db, ctx := setupServiceDB(t)
	old := time.Now().UTC().Add(-48 * time.Hour)
	recent := time.Now().UTC()

	for _, e := range []models.Event{
		{Event: "goal.created", Entity: "goal", Operation: "create", ActorID: 1, Timestamp: old, Data: []byte(`{}`), Status: "completed", Dispatched: true, DispatchedAt: &old},
		{Event: "goal.created", Entity: "goal", Operation: "create", ActorID: 1, Timestamp: recent, Data: []byte(`{}`), Status: "completed", Dispatched: true, DispatchedAt: &recent},
		{Event: "goal.created", Entity: "goal", Operation: "create", ActorID: 1, Timestamp: old, Data: []byte(`{}`), Status: "pending"},
	} {
		require.NoError(t, db.DB.Create(&e).Error)
	}

	purged, err := NewEventHandlerService(db, nil, nil, time.Second).PurgeDispatched(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
	assert.Len(t, testutils.EventsNamed(t, db, "goal.created"), 2)
}

func TestEventHandlerService_Lifecycle(t *testing.T) {
	db, _ := setupServiceDB(t)
	createTestUser(t, db, "alice")
	service := NewEventHandlerService(db, nil, nil, 10*time.Millisecond)

	service.Start()
	assert.True(t, service.IsRunning())
	service.Start() // no-op

	assert.Eventually(t, func() bool {
		events := testutils.EventsNamed(t, db, "user.created")
		return len(events) == 1 && events[0].Dispatched
	}, 2*time.Second, 20*time.Millisecond)

	service.Stop()
	assert.False(t, service.IsRunning())
	service.Stop() // no-op
}
