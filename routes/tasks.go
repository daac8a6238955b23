package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"goaltracker/database"
	"goaltracker/services"

	"github.com/gin-gonic/gin"
)

// taskRef accepts an id sent either as a JSON number or as a numeric string,
// which is what browsers produce from data-* attributes.
type taskRef uint

func (r *taskRef) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*r = 0
		return nil
	}
	id, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return err
	}
	*r = taskRef(id)
	return nil
}

type reorderRequest struct {
	TaskID   taskRef `json:"task_id"`
	TargetID taskRef `json:"target_id"`
}

func RegisterTaskRoutes(group *gin.RouterGroup, db *database.Database, taskService services.TaskServiceInterface) {
	group.POST("/toggle_task/:id", func(c *gin.Context) { ToggleTask(c, db, taskService) })
	group.POST("/reorder_task", func(c *gin.Context) { ReorderTask(c, db, taskService) })
}

func ToggleTask(c *gin.Context, db *database.Database, taskService services.TaskServiceInterface) {
	taskID, ok := parseID(c, "id")
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	completed, err := taskService.ToggleTask(c.Request.Context(), db, identity(c), taskID)
	if err != nil {
		respondJSONError(c, "toggle task", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "completed": completed})
}

func ReorderTask(c *gin.Context, db *database.Database, taskService services.TaskServiceInterface) {
	var request reorderRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}

	err := taskService.ReorderTask(c.Request.Context(), db, identity(c), uint(request.TaskID), uint(request.TargetID))
	if err != nil {
		respondJSONError(c, "reorder task", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
