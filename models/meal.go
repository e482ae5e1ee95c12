package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MealType is the slot a meal occupies in the day.
type MealType string

const (
	MealTypeBreakfast MealType = "breakfast"
	MealTypeLunch     MealType = "lunch"
	MealTypeDinner    MealType = "dinner"
	MealTypeSnack     MealType = "snack"
)

func (t MealType) Valid() bool {
	switch t {
	case MealTypeBreakfast, MealTypeLunch, MealTypeDinner, MealTypeSnack:
		return true
	}
	return false
}

// Meal is one planned menu entry. Meals track no update timestamp; edits
// replace the row contents in place.
type Meal struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	Date        time.Time `gorm:"not null;index" json:"date"`
	Type        MealType  `gorm:"size:16;not null" json:"type"`
	Description string    `gorm:"size:255;not null" json:"description"`
	AssignedTo  string    `gorm:"size:64" json:"assignedTo,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (m *Meal) BeforeCreate(_ *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// MealInput carries the mutable fields of a meal through validation.
type MealInput struct {
	Date        time.Time `json:"date"`
	Type        MealType  `json:"type"`
	Description string    `json:"description"`
	AssignedTo  string    `json:"assignedTo"`
}

func (in MealInput) Validate() FieldErrors {
	errs := FieldErrors{}
	if in.Date.IsZero() {
		errs.Add("date", "date is required")
	}
	if !in.Type.Valid() {
		errs.Add("type", "type must be one of breakfast, lunch, dinner, snack")
	}
	if in.Description == "" {
		errs.Add("description", "description is required")
	}
	if len(in.Description) > 255 {
		errs.Add("description", "description must be at most 255 characters")
	}
	return errs
}
