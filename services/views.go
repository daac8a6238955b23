package services

import (
	"time"

	"goaltracker/models"
)

// TaskView is the presentation shape of a task.
type TaskView struct {
	ID          uint   `json:"id"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	Position    int    `json:"position"`
}

// GoalSummary is a goal with its computed progress.
type GoalSummary struct {
	ID             uint      `json:"id"`
	Title          string    `json:"title"`
	Deadline       string    `json:"deadline"`
	TotalTasks     int       `json:"total_tasks"`
	CompletedTasks int       `json:"completed_tasks"`
	Progress       int       `json:"progress"`
	CreatedAt      time.Time `json:"created_at"`
}

// GoalDetail is a goal summary plus its tasks in position order.
type GoalDetail struct {
	GoalSummary
	Tasks []TaskView `json:"tasks"`
}

// Progress is floor(100 * completed / total), and 0 for an empty goal.
func Progress(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return completed * 100 / total
}

func newGoalSummary(goal models.Goal) GoalSummary {
	total := len(goal.Tasks)
	completed := goal.CountCompleted()
	return GoalSummary{
		ID:             goal.ID,
		Title:          goal.Title,
		Deadline:       goal.Deadline,
		TotalTasks:     total,
		CompletedTasks: completed,
		Progress:       Progress(completed, total),
		CreatedAt:      goal.CreatedAt,
	}
}

// newGoalDetail expects goal.Tasks to be sorted by position.
func newGoalDetail(goal models.Goal) GoalDetail {
	tasks := make([]TaskView, 0, len(goal.Tasks))
	for _, task := range goal.Tasks {
		tasks = append(tasks, TaskView{
			ID:          task.ID,
			Description: task.Description,
			Completed:   task.Completed,
			Position:    task.Position,
		})
	}
	return GoalDetail{GoalSummary: newGoalSummary(goal), Tasks: tasks}
}
