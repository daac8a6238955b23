package services

import (
	"context"
	"errors"

	"goaltracker/broker"
	"goaltracker/database"
	"goaltracker/logger"
	"goaltracker/models"

	"gorm.io/gorm"
)

type TaskServiceInterface interface {
	ToggleTask(ctx context.Context, db *database.Database, identity Identity, taskID uint) (bool, error)
	ReorderTask(ctx context.Context, db *database.Database, identity Identity, taskID, targetID uint) error
}

type TaskService struct{}

func NewTaskService() *TaskService {
	return &TaskService{}
}

// ToggleTask flips the completed flag of a task owned by identity and returns
// the new value. The flip happens in SQL so concurrent toggles do not collapse.
func (s *TaskService) ToggleTask(ctx context.Context, db *database.Database, identity Identity, taskID uint) (bool, error) {
	tx := db.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return false, storageError("begin toggle task", tx.Error)
	}

	task, goal, err := findOwnedTask(ctx, tx, identity, taskID, false)
	if err != nil {
		tx.Rollback()
		return false, err
	}

	if err := tx.Model(&task).Update("completed", gorm.Expr("NOT completed")).Error; err != nil {
		tx.Rollback()
		return false, storageError("toggle task", err)
	}
	if err := tx.First(&task, task.ID).Error; err != nil {
		tx.Rollback()
		return false, storageError("reload task", err)
	}

	event, err := models.NewEvent(
		string(broker.TaskToggled),
		"task",
		"toggle",
		identity.UserID,
		map[string]interface{}{
			"task_id":   task.ID,
			"goal_id":   goal.ID,
			"completed": task.Completed,
		},
	)
	if err != nil {
		tx.Rollback()
		return false, err
	}
	if err := tx.Create(event).Error; err != nil {
		tx.Rollback()
		return false, storageError("insert task event", err)
	}

	if err := tx.Commit().Error; err != nil {
		return false, storageError("commit toggle task", err)
	}

	state := "incomplete"
	if task.Completed {
		state = "completed"
	}
	logger.InfoContext(ctx, "Task toggled", "user", identity.Username, "task_id", task.ID, "description", task.Description, "state", state)
	return task.Completed, nil
}

// ReorderTask moves a task to sit immediately before target within their
// goal and renumbers every task of the goal 0..n-1.
func (s *TaskService) ReorderTask(ctx context.Context, db *database.Database, identity Identity, taskID, targetID uint) error {
	if taskID == 0 || targetID == 0 {
		return NewValidationError("Invalid data")
	}

	tx := db.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return storageError("begin reorder task", tx.Error)
	}

	task, goal, err := findOwnedTask(ctx, tx, identity, taskID, true)
	if err != nil {
		tx.Rollback()
		return err
	}

	var target models.Task
	if err := tx.First(&target, targetID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return storageError("find target task", err)
	}
	if target.GoalID != task.GoalID {
		tx.Rollback()
		return NewValidationError("Tasks belong to different goals")
	}

	var tasks []models.Task
	if err := tx.Where("goal_id = ?", goal.ID).Order("position, id").Find(&tasks).Error; err != nil {
		tx.Rollback()
		return storageError("load tasks", err)
	}

	ids := make([]uint, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	order, err := MoveBefore(ids, task.ID, target.ID)
	if err != nil {
		tx.Rollback()
		return storageError("reorder tasks", err)
	}

	for position, id := range order {
		if err := tx.Model(&models.Task{}).Where("id = ?", id).Update("position", position).Error; err != nil {
			tx.Rollback()
			return storageError("renumber tasks", err)
		}
	}

	event, err := models.NewEvent(
		string(broker.TaskReordered),
		"task",
		"reorder",
		identity.UserID,
		map[string]interface{}{
			"task_id":   task.ID,
			"target_id": target.ID,
			"goal_id":   goal.ID,
			"order":     order,
		},
	)
	if err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Create(event).Error; err != nil {
		tx.Rollback()
		return storageError("insert task event", err)
	}

	if err := tx.Commit().Error; err != nil {
		return storageError("commit reorder task", err)
	}

	logger.InfoContext(ctx, "Tasks reordered", "user", identity.Username, "goal_id", goal.ID, "goal", goal.Title)
	return nil
}

// findOwnedTask loads a task and walks the ownership chain through its goal.
func findOwnedTask(ctx context.Context, tx *gorm.DB, identity Identity, taskID uint, lockGoal bool) (models.Task, models.Goal, error) {
	var task models.Task
	if err := tx.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Task{}, models.Goal{}, ErrTaskNotFound
		}
		return models.Task{}, models.Goal{}, storageError("find task", err)
	}

	goal, err := findOwnedGoal(ctx, tx, identity, task.GoalID, lockGoal)
	if err != nil {
		if errors.Is(err, ErrGoalNotFound) {
			return models.Task{}, models.Goal{}, ErrTaskNotFound
		}
		return models.Task{}, models.Goal{}, err
	}
	return task, goal, nil
}
