package broker

type EventType string

const (
	// Event types in format: <resource>.<action>
	GoalCreated EventType = "goal.created"
	GoalDeleted EventType = "goal.deleted"

	TaskToggled   EventType = "task.toggled"
	TaskReordered EventType = "task.reordered"

	UserCreated EventType = "user.created"
)
