package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"familyhub/models"
)

// expenseRecord is the transport shape of an expense: the stored decimal
// string becomes a plain number for display.
type expenseRecord struct {
	ID          string    `json:"id"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toExpenseRecord(e models.Expense) expenseRecord {
	return expenseRecord{
		ID:          e.ID,
		Amount:      e.AmountValue(),
		Category:    e.Category,
		Description: e.Description,
		Date:        e.Date,
		CreatedAt:   e.CreatedAt,
	}
}

// createExpense validates and inserts one expense row.
func createExpense(in models.ExpenseInput) mutationResult {
	if errs := in.Validate(); len(errs) > 0 {
		return recordMutation("expense", "create", invalidResult(errs))
	}
	e := models.Expense{
		Amount:      models.FormatAmount(in.Amount),
		Category:    in.Category,
		Description: in.Description,
		Date:        in.Date,
	}
	if err := db.Create(&e).Error; err != nil {
		log.Printf("failed to create expense: %v", err)
		return recordMutation("expense", "create", failResult("failed to create expense"))
	}
	revalidateView(viewFinances)
	return recordMutation("expense", "create", okResult())
}

// updateExpense rewrites the row matching id; absent ids are a silent no-op.
func updateExpense(id string, in models.ExpenseInput) mutationResult {
	if errs := in.Validate(); len(errs) > 0 {
		return recordMutation("expense", "update", invalidResult(errs))
	}
	err := db.Model(&models.Expense{}).Where("id = ?", id).Updates(map[string]any{
		"amount":      models.FormatAmount(in.Amount),
		"category":    in.Category,
		"description": in.Description,
		"date":        in.Date,
	}).Error
	if err != nil {
		log.Printf("failed to update expense %s: %v", id, err)
		return recordMutation("expense", "update", failResult("failed to update expense"))
	}
	revalidateView(viewFinances)
	return recordMutation("expense", "update", okResult())
}

func deleteExpense(id string) mutationResult {
	if err := db.Where("id = ?", id).Delete(&models.Expense{}).Error; err != nil {
		log.Printf("failed to delete expense %s: %v", id, err)
		return recordMutation("expense", "delete", failResult("failed to delete expense"))
	}
	revalidateView(viewFinances)
	return recordMutation("expense", "delete", okResult())
}

// listExpenses returns all expenses ordered by expense date, latest first,
// with amounts converted for display.
func listExpenses() []expenseRecord {
	var expenses []models.Expense
	if err := db.Order("date desc").Find(&expenses).Error; err != nil {
		log.Printf("failed to fetch expenses: %v", err)
		return []expenseRecord{}
	}
	records := make([]expenseRecord, len(expenses))
	for i, e := range expenses {
		records[i] = toExpenseRecord(e)
	}
	return records
}

func createExpenseHandler(c *gin.Context) {
	var in models.ExpenseInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	respondMutation(c, createExpense(in))
}

func updateExpenseHandler(c *gin.Context) {
	var in models.ExpenseInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	respondMutation(c, updateExpense(c.Param("id"), in))
}

func deleteExpenseHandler(c *gin.Context) {
	respondMutation(c, deleteExpense(c.Param("id")))
}

func listExpensesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, listExpenses())
}
