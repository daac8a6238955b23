package services

import (
	"context"
	"errors"
	"strings"

	"goaltracker/broker"
	"goaltracker/database"
	"goaltracker/logger"
	"goaltracker/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GoalServiceInterface interface {
	CreateGoal(ctx context.Context, db *database.Database, identity Identity, input GoalInput) (GoalDetail, error)
	ListGoals(ctx context.Context, db *database.Database, identity Identity) ([]GoalSummary, error)
	GetGoal(ctx context.Context, db *database.Database, identity Identity, goalID uint) (GoalDetail, error)
	DeleteGoal(ctx context.Context, db *database.Database, identity Identity, goalID uint) error
}

type GoalService struct{}

func NewGoalService() *GoalService {
	return &GoalService{}
}

// CreateGoal inserts the goal and its tasks, numbered 0..n-1 in input order,
// in a single transaction.
func (s *GoalService) CreateGoal(ctx context.Context, db *database.Database, identity Identity, input GoalInput) (GoalDetail, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Deadline = strings.TrimSpace(input.Deadline)
	descriptions := make([]string, len(input.Tasks))
	for i, description := range input.Tasks {
		descriptions[i] = strings.TrimSpace(description)
	}
	if input.Tasks != nil {
		input.Tasks = descriptions
	}
	if err := validateInput(input, goalMessages); err != nil {
		return GoalDetail{}, err
	}

	tx := db.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return GoalDetail{}, storageError("begin create goal", tx.Error)
	}

	goal := models.Goal{
		Title:    input.Title,
		Deadline: input.Deadline,
		UserID:   identity.UserID,
	}
	if err := tx.Create(&goal).Error; err != nil {
		tx.Rollback()
		return GoalDetail{}, storageError("insert goal", err)
	}

	tasks := make([]models.Task, len(input.Tasks))
	for i, description := range input.Tasks {
		tasks[i] = models.Task{
			Description: description,
			Position:    i,
			GoalID:      goal.ID,
		}
	}
	if err := tx.Create(&tasks).Error; err != nil {
		tx.Rollback()
		return GoalDetail{}, storageError("insert tasks", err)
	}

	event, err := models.NewEvent(
		string(broker.GoalCreated),
		"goal",
		"create",
		identity.UserID,
		map[string]interface{}{
			"goal_id":    goal.ID,
			"title":      goal.Title,
			"task_count": len(tasks),
		},
	)
	if err != nil {
		tx.Rollback()
		return GoalDetail{}, err
	}
	if err := tx.Create(event).Error; err != nil {
		tx.Rollback()
		return GoalDetail{}, storageError("insert goal event", err)
	}

	if err := tx.Commit().Error; err != nil {
		return GoalDetail{}, storageError("commit create goal", err)
	}

	logger.InfoContext(ctx, "Goal created", "user", identity.Username, "goal_id", goal.ID, "title", goal.Title, "tasks", len(tasks))

	goal.Tasks = tasks
	return newGoalDetail(goal), nil
}

func (s *GoalService) ListGoals(ctx context.Context, db *database.Database, identity Identity) ([]GoalSummary, error) {
	var goals []models.Goal
	err := db.DB.WithContext(ctx).
		Preload("Tasks").
		Where("user_id = ?", identity.UserID).
		Order("created_at, id").
		Find(&goals).Error
	if err != nil {
		return nil, storageError("list goals", err)
	}

	summaries := make([]GoalSummary, 0, len(goals))
	for _, goal := range goals {
		summaries = append(summaries, newGoalSummary(goal))
	}
	return summaries, nil
}

func (s *GoalService) GetGoal(ctx context.Context, db *database.Database, identity Identity, goalID uint) (GoalDetail, error) {
	tx := db.DB.WithContext(ctx)

	goal, err := findOwnedGoal(ctx, tx, identity, goalID, false)
	if err != nil {
		return GoalDetail{}, err
	}

	if err := tx.Where("goal_id = ?", goal.ID).Order("position, id").Find(&goal.Tasks).Error; err != nil {
		return GoalDetail{}, storageError("load tasks", err)
	}
	return newGoalDetail(goal), nil
}

// DeleteGoal removes the goal and its tasks. The tasks are deleted explicitly
// so the cascade does not depend on the driver enforcing foreign keys.
func (s *GoalService) DeleteGoal(ctx context.Context, db *database.Database, identity Identity, goalID uint) error {
	tx := db.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return storageError("begin delete goal", tx.Error)
	}

	goal, err := findOwnedGoal(ctx, tx, identity, goalID, true)
	if err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Where("goal_id = ?", goal.ID).Delete(&models.Task{}).Error; err != nil {
		tx.Rollback()
		return storageError("delete tasks", err)
	}
	if err := tx.Delete(&goal).Error; err != nil {
		tx.Rollback()
		return storageError("delete goal", err)
	}

	event, err := models.NewEvent(
		string(broker.GoalDeleted),
		"goal",
		"delete",
		identity.UserID,
		map[string]interface{}{
			"goal_id": goal.ID,
			"title":   goal.Title,
		},
	)
	if err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Create(event).Error; err != nil {
		tx.Rollback()
		return storageError("insert goal event", err)
	}

	if err := tx.Commit().Error; err != nil {
		return storageError("commit delete goal", err)
	}

	logger.InfoContext(ctx, "Goal deleted", "user", identity.Username, "goal_id", goal.ID, "title", goal.Title)
	return nil
}

// findOwnedGoal loads a goal and checks it belongs to identity. With lock set
// the row is locked for the rest of the transaction where the driver supports it.
func findOwnedGoal(ctx context.Context, tx *gorm.DB, identity Identity, goalID uint, lock bool) (models.Goal, error) {
	query := tx
	if lock && tx.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var goal models.Goal
	if err := query.First(&goal, goalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Goal{}, ErrGoalNotFound
		}
		return models.Goal{}, storageError("find goal", err)
	}

	if goal.UserID != identity.UserID {
		logger.WarnContext(ctx, "Unauthorized goal access", "user", identity.Username, "goal_id", goalID)
		return models.Goal{}, ErrForbidden
	}
	return goal, nil
}
