package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"familyhub/models"
	"familyhub/pkg/assistant"
)

const assistantSystemPrompt = `You are a helpful assistant for a household of seven.
Your goal is to help organize family life: tasks, calendar events, meals and expenses.
You have tools to create tasks, events, meals and expenses. When the user asks you
to create something, use the matching tool and then confirm what happened,
including any failure the tool reported. Be concise and friendly.`

var (
	assistantOnce   sync.Once
	assistantClient *assistant.Client
)

func getAssistantClient() *assistant.Client {
	assistantOnce.Do(func() {
		model := os.Getenv("ASSISTANT_MODEL")
		if model == "" {
			model = "gpt-4o"
		}
		assistantClient = assistant.New(
			os.Getenv("ASSISTANT_BASE_URL"),
			model,
			os.Getenv("OPENAI_API_KEY"),
		)
	})
	return assistantClient
}

// chatHandler streams the assistant's reply as plain text chunks. Closing the
// client connection cancels the model stream; a tool call already started
// still runs to completion.
func chatHandler(c *gin.Context) {
	var req struct {
		Messages []assistant.Message `json:"messages" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	transcript := append(
		[]assistant.Message{{Role: "system", Content: assistantSystemPrompt}},
		req.Messages...,
	)

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Status(http.StatusOK)

	err := getAssistantClient().Stream(c.Request.Context(), transcript, householdTools(), func(delta string) {
		_, _ = c.Writer.WriteString(delta)
		c.Writer.Flush()
	})
	if err != nil && c.Request.Context().Err() == nil {
		// Headers are already out; all we can do is log and close the stream.
		_ = c.Error(err)
	}
}

// householdTools exposes the four creation gateways to the model. Each tool
// normalizes model-supplied arguments into the gateway's input shape and
// returns the gateway's envelope verbatim, success or not.
func householdTools() []assistant.Tool {
	return []assistant.Tool{
		{
			Name:        "createTask",
			Description: "Create a new task for a family member",
			Parameters: assistant.Schema{
				Type: "object",
				Properties: map[string]assistant.Property{
					"title":       {Type: "string", Description: "Task title"},
					"description": {Type: "string", Description: "Detailed description"},
					"priority":    {Type: "string", Enum: []string{"low", "medium", "high"}, Description: "Task priority"},
					"assigneeId":  {Type: "string", Description: "ID of the assigned member"},
				},
				Required: []string{"title"},
			},
			Execute: func(_ context.Context, args json.RawMessage) (any, error) {
				var a struct {
					Title       string `json:"title"`
					Description string `json:"description"`
					Priority    string `json:"priority"`
					AssigneeID  string `json:"assigneeId"`
				}
				if err := json.Unmarshal(args, &a); err != nil {
					return nil, fmt.Errorf("parse createTask arguments: %w", err)
				}
				if a.Priority == "" {
					a.Priority = string(models.TaskPriorityMedium)
				}
				return createTask(models.TaskInput{
					Title:       a.Title,
					Description: a.Description,
					Status:      models.TaskStatusTodo,
					Priority:    models.TaskPriority(a.Priority),
					AssigneeID:  a.AssigneeID,
				}), nil
			},
		},
		{
			Name:        "createEvent",
			Description: "Create a new calendar event",
			Parameters: assistant.Schema{
				Type: "object",
				Properties: map[string]assistant.Property{
					"title":       {Type: "string", Description: "Event title"},
					"startTime":   {Type: "string", Description: "Start date and time, ISO 8601"},
					"endTime":     {Type: "string", Description: "End date and time, ISO 8601"},
					"description": {Type: "string"},
					"location":    {Type: "string"},
					"type":        {Type: "string", Enum: []string{"general", "school", "work", "vacation", "activity"}},
				},
				Required: []string{"title", "startTime", "endTime", "type"},
			},
			Execute: func(_ context.Context, args json.RawMessage) (any, error) {
				var a struct {
					Title       string `json:"title"`
					StartTime   string `json:"startTime"`
					EndTime     string `json:"endTime"`
					Description string `json:"description"`
					Location    string `json:"location"`
					Type        string `json:"type"`
				}
				if err := json.Unmarshal(args, &a); err != nil {
					return nil, fmt.Errorf("parse createEvent arguments: %w", err)
				}
				start, err := time.Parse(time.RFC3339, a.StartTime)
				if err != nil {
					return nil, fmt.Errorf("startTime must be ISO 8601: %w", err)
				}
				end, err := time.Parse(time.RFC3339, a.EndTime)
				if err != nil {
					return nil, fmt.Errorf("endTime must be ISO 8601: %w", err)
				}
				return createEvent(models.EventInput{
					Title:       a.Title,
					Description: a.Description,
					StartTime:   start,
					EndTime:     end,
					IsAllDay:    false,
					Location:    a.Location,
					Type:        models.EventType(a.Type),
				}), nil
			},
		},
		{
			Name:        "createMeal",
			Description: "Plan a meal in the weekly menu",
			Parameters: assistant.Schema{
				Type: "object",
				Properties: map[string]assistant.Property{
					"date":        {Type: "string", Description: "Meal date, ISO 8601"},
					"type":        {Type: "string", Enum: []string{"breakfast", "lunch", "dinner", "snack"}, Description: "Meal slot"},
					"description": {Type: "string", Description: "Menu or recipe description"},
					"assignedTo":  {Type: "string", Description: "ID of whoever cooks (optional)"},
				},
				Required: []string{"date", "type", "description"},
			},
			Execute: func(_ context.Context, args json.RawMessage) (any, error) {
				var a struct {
					Date        string `json:"date"`
					Type        string `json:"type"`
					Description string `json:"description"`
					AssignedTo  string `json:"assignedTo"`
				}
				if err := json.Unmarshal(args, &a); err != nil {
					return nil, fmt.Errorf("parse createMeal arguments: %w", err)
				}
				date, err := parseDay(a.Date)
				if err != nil {
					return nil, fmt.Errorf("date must be ISO 8601: %w", err)
				}
				return createMeal(models.MealInput{
					Date:        date,
					Type:        models.MealType(a.Type),
					Description: a.Description,
					AssignedTo:  a.AssignedTo,
				}), nil
			},
		},
		{
			Name:        "createExpense",
			Description: "Record a new expense",
			Parameters: assistant.Schema{
				Type: "object",
				Properties: map[string]assistant.Property{
					"amount":      {Type: "number", Description: "Expense amount"},
					"category":    {Type: "string", Description: "Expense category (groceries, utilities, education, transport, entertainment, health, clothing, other)"},
					"description": {Type: "string", Description: "Expense description"},
					"date":        {Type: "string", Description: "Expense date, ISO 8601"},
				},
				Required: []string{"amount", "category", "description", "date"},
			},
			Execute: func(_ context.Context, args json.RawMessage) (any, error) {
				var a struct {
					Amount      float64 `json:"amount"`
					Category    string  `json:"category"`
					Description string  `json:"description"`
					Date        string  `json:"date"`
				}
				if err := json.Unmarshal(args, &a); err != nil {
					return nil, fmt.Errorf("parse createExpense arguments: %w", err)
				}
				date, err := parseDay(a.Date)
				if err != nil {
					return nil, fmt.Errorf("date must be ISO 8601: %w", err)
				}
				return createExpense(models.ExpenseInput{
					Amount:      a.Amount,
					Category:    a.Category,
					Description: a.Description,
					Date:        date,
				}), nil
			},
		},
	}
}
