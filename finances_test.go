package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"familyhub/models"
)

func expenseOn(amount float64, category string, date time.Time) expenseRecord {
	return expenseRecord{Amount: amount, Category: category, Date: date}
}

func TestSummarizeExpensesTotalsAndMonth(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	expenses := []expenseRecord{
		expenseOn(100, "groceries", time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)),
		// both ends of the current month count
		expenseOn(50, "transport", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)),
		expenseOn(150, "transport", time.Date(2025, 3, 31, 23, 59, 0, 0, time.UTC)),
		// first instant of next month does not
		expenseOn(75, "health", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)),
	}

	s := summarizeExpenses(expenses, now)
	assert.InDelta(t, 375, s.Total, 1e-9)
	assert.InDelta(t, 200, s.CurrentMonth, 1e-9)
	assert.Equal(t, "transport", s.TopCategory)
	assert.InDelta(t, 200, s.TopCategoryAmount, 1e-9)
}

func TestSummarizeExpensesTopCategoryTieBreaksAlphabetically(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	expenses := []expenseRecord{
		expenseOn(100, "transport", now),
		expenseOn(60, "groceries", now),
		expenseOn(40, "groceries", now),
	}

	s := summarizeExpenses(expenses, now)
	assert.Equal(t, "groceries", s.TopCategory)
	assert.InDelta(t, 100, s.TopCategoryAmount, 1e-9)
}

func TestFinanceSummaryThroughGateway(t *testing.T) {
	setupTestDB(t)
	now := time.Now()

	require.True(t, createExpense(models.ExpenseInput{
		Amount:      500,
		Category:    "groceries",
		Description: "Monthly stock-up",
		Date:        now,
	}).Success)

	s := summarizeExpenses(listExpenses(), now)
	assert.InDelta(t, 500, s.CurrentMonth, 1e-9)
	assert.InDelta(t, 500, s.Total, 1e-9)

	// an old expense moves the historical total only
	require.True(t, createExpense(models.ExpenseInput{
		Amount:      500,
		Category:    "groceries",
		Description: "Old receipt",
		Date:        now.AddDate(-1, -1, 0),
	}).Success)

	s = summarizeExpenses(listExpenses(), now)
	assert.InDelta(t, 500, s.CurrentMonth, 1e-9)
	assert.InDelta(t, 1000, s.Total, 1e-9)
}

func TestSummarizeExpensesEmpty(t *testing.T) {
	s := summarizeExpenses(nil, time.Now())
	assert.Zero(t, s.Total)
	assert.Zero(t, s.CurrentMonth)
	assert.Equal(t, "N/A", s.TopCategory)
	assert.Zero(t, s.TopCategoryAmount)
}
