package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"familyhub/models"
)

// createTask validates and inserts one task row. Omitted enum fields fall
// back to the schema defaults before validation.
func createTask(in models.TaskInput) mutationResult {
	if in.Status == "" {
		in.Status = models.TaskStatusTodo
	}
	if in.Priority == "" {
		in.Priority = models.TaskPriorityMedium
	}
	if errs := in.Validate(); len(errs) > 0 {
		return recordMutation("task", "create", invalidResult(errs))
	}
	t := models.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		AssigneeID:  in.AssigneeID,
	}
	if err := db.Create(&t).Error; err != nil {
		log.Printf("failed to create task: %v", err)
		return recordMutation("task", "create", failResult("failed to create task"))
	}
	revalidateView(viewTasks, viewDashboard)
	return recordMutation("task", "create", okResult())
}

// updateTask rewrites the row matching id. An id that matches nothing is a
// silent no-op. The update timestamp refreshes on every matched write.
func updateTask(id string, in models.TaskInput) mutationResult {
	if in.Status == "" {
		in.Status = models.TaskStatusTodo
	}
	if in.Priority == "" {
		in.Priority = models.TaskPriorityMedium
	}
	if errs := in.Validate(); len(errs) > 0 {
		return recordMutation("task", "update", invalidResult(errs))
	}
	err := db.Model(&models.Task{}).Where("id = ?", id).Updates(map[string]any{
		"title":       in.Title,
		"description": in.Description,
		"status":      in.Status,
		"priority":    in.Priority,
		"assignee_id": in.AssigneeID,
	}).Error
	if err != nil {
		log.Printf("failed to update task %s: %v", id, err)
		return recordMutation("task", "update", failResult("failed to update task"))
	}
	revalidateView(viewTasks, viewDashboard)
	return recordMutation("task", "update", okResult())
}

// deleteTask removes the row matching id; deleting an absent id is a no-op.
func deleteTask(id string) mutationResult {
	if err := db.Where("id = ?", id).Delete(&models.Task{}).Error; err != nil {
		log.Printf("failed to delete task %s: %v", id, err)
		return recordMutation("task", "delete", failResult("failed to delete task"))
	}
	revalidateView(viewTasks, viewDashboard)
	return recordMutation("task", "delete", okResult())
}

// listTasks returns all tasks, newest first. Fetch failures are logged and
// read as an empty list.
func listTasks() []models.Task {
	var tasks []models.Task
	if err := db.Order("created_at desc").Find(&tasks).Error; err != nil {
		log.Printf("failed to fetch tasks: %v", err)
		return []models.Task{}
	}
	return tasks
}

func createTaskHandler(c *gin.Context) {
	var in models.TaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	respondMutation(c, createTask(in))
}

func updateTaskHandler(c *gin.Context) {
	var in models.TaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	respondMutation(c, updateTask(c.Param("id"), in))
}

func deleteTaskHandler(c *gin.Context) {
	respondMutation(c, deleteTask(c.Param("id")))
}

func listTasksHandler(c *gin.Context) {
	c.JSON(http.StatusOK, listTasks())
}
