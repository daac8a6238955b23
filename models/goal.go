package models

import (
	"time"
)

// Goal is owned by a single user and holds an ordered list of tasks.
type Goal struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Deadline  string    `gorm:"size:50;not null" json:"deadline"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	Tasks     []Task    `gorm:"constraint:OnDelete:CASCADE;" json:"tasks,omitempty"`
}

// CountCompleted returns how many of the loaded tasks are completed.
func (g Goal) CountCompleted() int {
	completed := 0
	for _, task := range g.Tasks {
		if task.Completed {
			completed++
		}
	}
	return completed
}
