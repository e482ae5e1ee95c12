package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// financeSummary is the derived view over the expense collection.
type financeSummary struct {
	Total             float64 `json:"total"`
	CurrentMonth      float64 `json:"currentMonth"`
	TopCategory       string  `json:"topCategory"`
	TopCategoryAmount float64 `json:"topCategoryAmount"`
}

// summarizeExpenses totals the collection, the current calendar month, and
// finds the category with the largest summed amount. Ties break
// alphabetically so the result is deterministic.
func summarizeExpenses(expenses []expenseRecord, now time.Time) financeSummary {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0).Add(-time.Nanosecond)

	s := financeSummary{TopCategory: "N/A"}
	byCategory := map[string]float64{}
	for _, e := range expenses {
		s.Total += e.Amount
		if !e.Date.Before(monthStart) && !e.Date.After(monthEnd) {
			s.CurrentMonth += e.Amount
		}
		byCategory[e.Category] += e.Amount
	}
	for cat, amount := range byCategory {
		switch {
		case amount > s.TopCategoryAmount:
			s.TopCategory, s.TopCategoryAmount = cat, amount
		case amount == s.TopCategoryAmount && s.TopCategory != "N/A" && cat < s.TopCategory:
			s.TopCategory = cat
		}
	}
	return s
}

var financeCache projectionCache[financeSummary]

func init() {
	onRevalidate(viewFinances, financeCache.invalidate)
}

func financeSummaryHandler(c *gin.Context) {
	data := financeCache.get(func() financeSummary {
		return summarizeExpenses(listExpenses(), time.Now())
	})
	c.JSON(http.StatusOK, data)
}
