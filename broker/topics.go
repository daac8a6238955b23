package broker

const subjectPrefix = "goaltracker"

const (
	UserEventsSubject = subjectPrefix + ".user_events"
	GoalEventsSubject = subjectPrefix + ".goal_events"
	TaskEventsSubject = subjectPrefix + ".task_events"
	MiscEventsSubject = subjectPrefix + ".events"
)

// SubjectForEntity maps an event entity to the subject it is published on.
func SubjectForEntity(entity string) string {
	switch entity {
	case "user":
		return UserEventsSubject
	case "goal":
		return GoalEventsSubject
	case "task":
		return TaskEventsSubject
	default:
		return MiscEventsSubject
	}
}
