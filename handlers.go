package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"familyhub/models"
)

func setupRoutes(r *gin.Engine) {
	api := r.Group("/api")

	api.GET("/tasks", listTasksHandler)
	api.POST("/tasks", createTaskHandler)
	api.PUT("/tasks/:id", updateTaskHandler)
	api.DELETE("/tasks/:id", deleteTaskHandler)

	api.GET("/events", listEventsHandler)
	api.POST("/events", createEventHandler)
	api.PUT("/events/:id", updateEventHandler)
	api.DELETE("/events/:id", deleteEventHandler)

	api.GET("/meals", listMealsHandler)
	api.POST("/meals", createMealHandler)
	api.PUT("/meals/:id", updateMealHandler)
	api.DELETE("/meals/:id", deleteMealHandler)

	api.GET("/expenses", listExpensesHandler)
	api.POST("/expenses", createExpenseHandler)
	api.PUT("/expenses/:id", updateExpenseHandler)
	api.DELETE("/expenses/:id", deleteExpenseHandler)
	api.POST("/expenses/receipt", scanReceiptHandler)

	api.GET("/trips", listTripsHandler)
	api.POST("/trips", createTripHandler)
	api.PUT("/trips/:id", updateTripHandler)
	api.DELETE("/trips/:id", deleteTripHandler)

	api.GET("/dashboard", dashboardHandler)
	api.GET("/finances/summary", financeSummaryHandler)

	api.POST("/chat", chatHandler)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// mutationResult is the uniform envelope every create/update/delete returns.
// Persistence failures are converted into it rather than propagated.
type mutationResult struct {
	Success bool               `json:"success"`
	Error   string             `json:"error,omitempty"`
	Fields  models.FieldErrors `json:"fields,omitempty"`
}

func okResult() mutationResult {
	return mutationResult{Success: true}
}

func failResult(msg string) mutationResult {
	return mutationResult{Success: false, Error: msg}
}

func invalidResult(errs models.FieldErrors) mutationResult {
	return mutationResult{Success: false, Error: "validation failed", Fields: errs}
}

// respondMutation maps the envelope onto an HTTP status. Validation failures
// are the caller's to fix (400); persistence failures are ours (500).
func respondMutation(c *gin.Context, res mutationResult) {
	switch {
	case res.Success:
		c.JSON(http.StatusOK, res)
	case len(res.Fields) > 0:
		c.JSON(http.StatusBadRequest, res)
	default:
		c.JSON(http.StatusInternalServerError, res)
	}
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, failResult(err.Error()))
}
