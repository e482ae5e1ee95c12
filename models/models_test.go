package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFieldErrorsFirstMessageWins(t *testing.T) {
	errs := FieldErrors{}
	errs.Add("title", "title is required")
	errs.Add("title", "title must be at most 100 characters")
	assert.Equal(t, "title is required", errs["title"])
}

func TestFieldErrorsErrorIsSortedByField(t *testing.T) {
	errs := FieldErrors{}
	errs.Add("endTime", "end time is required")
	errs.Add("destination", "destination is required")
	assert.Equal(t, "destination: destination is required; endTime: end time is required", errs.Error())
}

func TestTaskInputValidate(t *testing.T) {
	valid := TaskInput{Title: "Do laundry", Status: TaskStatusTodo, Priority: TaskPriorityLow}
	assert.Empty(t, valid.Validate())

	tests := []struct {
		name  string
		in    TaskInput
		field string
	}{
		{"missing title", TaskInput{Status: TaskStatusTodo, Priority: TaskPriorityLow}, "title"},
		{"title too long", TaskInput{Title: strings.Repeat("x", 101), Status: TaskStatusTodo, Priority: TaskPriorityLow}, "title"},
		{"bad status", TaskInput{Title: "t", Status: "paused", Priority: TaskPriorityLow}, "status"},
		{"bad priority", TaskInput{Title: "t", Status: TaskStatusTodo, Priority: "urgent"}, "priority"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Contains(t, tc.in.Validate(), tc.field)
		})
	}
}

func TestEventInputValidate(t *testing.T) {
	start := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	valid := EventInput{Title: "Recital", StartTime: start, EndTime: start.Add(time.Hour), Type: EventTypeSchool}
	assert.Empty(t, valid.Validate())

	tests := []struct {
		name  string
		in    EventInput
		field string
	}{
		{"missing title", EventInput{StartTime: start, EndTime: start, Type: EventTypeGeneral}, "title"},
		{"missing start", EventInput{Title: "t", EndTime: start, Type: EventTypeGeneral}, "startTime"},
		{"missing end", EventInput{Title: "t", StartTime: start, Type: EventTypeGeneral}, "endTime"},
		{"end before start", EventInput{Title: "t", StartTime: start, EndTime: start.Add(-time.Minute), Type: EventTypeGeneral}, "endTime"},
		{"bad type", EventInput{Title: "t", StartTime: start, EndTime: start, Type: "party"}, "type"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Contains(t, tc.in.Validate(), tc.field)
		})
	}

	// equal start and end is allowed
	assert.Empty(t, EventInput{Title: "t", StartTime: start, EndTime: start, Type: EventTypeGeneral}.Validate())
}

func TestMealInputValidate(t *testing.T) {
	day := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	assert.Empty(t, MealInput{Date: day, Type: MealTypeDinner, Description: "Tacos"}.Validate())

	assert.Contains(t, MealInput{Type: MealTypeDinner, Description: "d"}.Validate(), "date")
	assert.Contains(t, MealInput{Date: day, Type: "brunch", Description: "d"}.Validate(), "type")
	assert.Contains(t, MealInput{Date: day, Type: MealTypeSnack}.Validate(), "description")
	assert.Contains(t, MealInput{Date: day, Type: MealTypeSnack, Description: strings.Repeat("x", 256)}.Validate(), "description")
}

func TestExpenseInputValidate(t *testing.T) {
	day := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	assert.Empty(t, ExpenseInput{Amount: 9.5, Category: "groceries", Description: "Milk", Date: day}.Validate())

	assert.Contains(t, ExpenseInput{Amount: 0, Category: "c", Description: "d", Date: day}.Validate(), "amount")
	assert.Contains(t, ExpenseInput{Amount: -1, Category: "c", Description: "d", Date: day}.Validate(), "amount")
	assert.Contains(t, ExpenseInput{Amount: 1, Description: "d", Date: day}.Validate(), "category")
	assert.Contains(t, ExpenseInput{Amount: 1, Category: "c", Date: day}.Validate(), "description")
	assert.Contains(t, ExpenseInput{Amount: 1, Category: "c", Description: "d"}.Validate(), "date")
}

func TestTripInputValidate(t *testing.T) {
	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 5)
	assert.Empty(t, TripInput{Destination: "Rome", StartDate: start, EndDate: end, Status: TripStatusPlanned}.Validate())

	negative := -10.0
	zero := 0.0
	assert.Contains(t, TripInput{StartDate: start, EndDate: end, Status: TripStatusPlanned}.Validate(), "destination")
	assert.Contains(t, TripInput{Destination: "Rome", EndDate: end, Status: TripStatusPlanned}.Validate(), "startDate")
	assert.Contains(t, TripInput{Destination: "Rome", StartDate: end, EndDate: start, Status: TripStatusPlanned}.Validate(), "endDate")
	assert.Contains(t, TripInput{Destination: "Rome", StartDate: start, EndDate: end, Budget: &negative, Status: TripStatusPlanned}.Validate(), "budget")
	assert.Contains(t, TripInput{Destination: "Rome", StartDate: start, EndDate: end, Status: "dreaming"}.Validate(), "status")
	// zero budget is allowed, it just means free
	assert.Empty(t, TripInput{Destination: "Rome", StartDate: start, EndDate: end, Budget: &zero, Status: TripStatusOngoing}.Validate())
}

func TestFormatAmountAndAmountValue(t *testing.T) {
	assert.Equal(t, "12.50", FormatAmount(12.5))
	assert.Equal(t, "0.99", FormatAmount(0.99))
	assert.Equal(t, "1500.00", FormatAmount(1500))

	assert.InDelta(t, 12.5, Expense{Amount: "12.50"}.AmountValue(), 1e-9)
	assert.Zero(t, Expense{Amount: "not-a-number"}.AmountValue())
}
