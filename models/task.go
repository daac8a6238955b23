package models

import (
	"time"
)

// Task is one step of a goal. Position is the zero-based rank of the task
// within its goal; positions of a goal always form 0..n-1.
type Task struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Description string    `gorm:"size:300;not null" json:"description"`
	Completed   bool      `gorm:"not null;default:false" json:"completed"`
	Position    int       `gorm:"not null;index:idx_tasks_goal_position,priority:2" json:"position"`
	GoalID      uint      `gorm:"not null;index:idx_tasks_goal_position,priority:1" json:"goal_id"`
	UpdatedAt   time.Time `json:"updated_at"`
}
