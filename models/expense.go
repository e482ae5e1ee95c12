package models

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Expense is one recorded household expense. Amount is persisted as a
// decimal(10,2) string so the database keeps exact cents; the read path
// converts it to a float for display.
type Expense struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	Amount      string    `gorm:"type:decimal(10,2);not null" json:"amount"`
	Category    string    `gorm:"size:64;not null;index" json:"category"`
	Description string    `gorm:"size:255;not null" json:"description"`
	Date        time.Time `gorm:"not null;index" json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (e *Expense) BeforeCreate(_ *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// AmountValue parses the stored decimal string. Malformed values read as 0.
func (e Expense) AmountValue() float64 {
	v, err := strconv.ParseFloat(e.Amount, 64)
	if err != nil {
		return 0
	}
	return v
}

// FormatAmount renders a float as the decimal(10,2) string stored at rest.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// ExpenseInput carries the mutable fields of an expense through validation.
type ExpenseInput struct {
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
}

func (in ExpenseInput) Validate() FieldErrors {
	errs := FieldErrors{}
	if in.Amount <= 0 {
		errs.Add("amount", "amount must be positive")
	}
	if in.Category == "" {
		errs.Add("category", "category is required")
	}
	if in.Description == "" {
		errs.Add("description", "description is required")
	}
	if in.Date.IsZero() {
		errs.Add("date", "date is required")
	}
	return errs
}
