package services

import (
	"context"
	"testing"

	"goaltracker/database"
	"goaltracker/models"
	"goaltracker/testutils"

	"github.com/stretchr/testify/require"
)

func setupServiceDB(t *testing.T) (*database.Database, context.Context) {
	t.Helper()
	return testutils.SetupTestDB(t), context.Background()
}

func createTestUser(t *testing.T, db *database.Database, username string) Identity {
	t.Helper()
	user, err := NewUserService().CreateUser(context.Background(), db, models.User{
		Username:     username,
		PasswordHash: "not-a-real-hash",
	})
	require.NoError(t, err)
	return Identity{UserID: user.ID, Username: user.Username}
}

func createTestGoal(t *testing.T, db *database.Database, owner Identity, title string, tasks ...string) GoalDetail {
	t.Helper()
	goal, err := NewGoalService().CreateGoal(context.Background(), db, owner, GoalInput{
		Title:    title,
		Deadline: "2030-01-01",
		Tasks:    tasks,
	})
	require.NoError(t, err)
	return goal
}

// taskOrder returns the task descriptions of a goal in position order and
// checks that the positions are exactly 0..n-1.
func taskOrder(t *testing.T, db *database.Database, goalID uint) []string {
	t.Helper()
	var tasks []models.Task
	require.NoError(t, db.DB.Where("goal_id = ?", goalID).Order("position, id").Find(&tasks).Error)
	descriptions := make([]string, len(tasks))
	for i, task := range tasks {
		require.Equal(t, i, task.Position, "positions of goal %d are not dense", goalID)
		descriptions[i] = task.Description
	}
	return descriptions
}

func taskIDs(goal GoalDetail) map[string]uint {
	ids := make(map[string]uint, len(goal.Tasks))
	for _, task := range goal.Tasks {
		ids[task.Description] = task.ID
	}
	return ids
}
