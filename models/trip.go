package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TripStatus is the planning state of a trip.
type TripStatus string

const (
	TripStatusPlanned   TripStatus = "planned"
	TripStatusOngoing   TripStatus = "ongoing"
	TripStatusCompleted TripStatus = "completed"
	TripStatusCancelled TripStatus = "cancelled"
)

func (s TripStatus) Valid() bool {
	switch s {
	case TripStatusPlanned, TripStatusOngoing, TripStatusCompleted, TripStatusCancelled:
		return true
	}
	return false
}

// Trip is a planned family trip. Budget follows the same decimal-string
// storage convention as Expense.Amount and is nullable.
type Trip struct {
	ID          string     `gorm:"type:uuid;primaryKey" json:"id"`
	Destination string     `gorm:"size:100;not null" json:"destination"`
	StartDate   time.Time  `gorm:"not null;index" json:"startDate"`
	EndDate     time.Time  `gorm:"not null" json:"endDate"`
	Description string     `gorm:"size:1024" json:"description,omitempty"`
	Budget      *string    `gorm:"type:decimal(10,2)" json:"budget,omitempty"`
	Status      TripStatus `gorm:"size:16;not null;default:planned" json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func (t *Trip) BeforeCreate(_ *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// TripInput carries the mutable fields of a trip through validation. Budget
// is a pointer so "no budget" and "zero budget" stay distinguishable.
type TripInput struct {
	Destination string     `json:"destination"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     time.Time  `json:"endDate"`
	Description string     `json:"description"`
	Budget      *float64   `json:"budget"`
	Status      TripStatus `json:"status"`
}

func (in TripInput) Validate() FieldErrors {
	errs := FieldErrors{}
	if in.Destination == "" {
		errs.Add("destination", "destination is required")
	}
	if len(in.Destination) > 100 {
		errs.Add("destination", "destination must be at most 100 characters")
	}
	if in.StartDate.IsZero() {
		errs.Add("startDate", "start date is required")
	}
	if in.EndDate.IsZero() {
		errs.Add("endDate", "end date is required")
	}
	if !in.StartDate.IsZero() && !in.EndDate.IsZero() && in.EndDate.Before(in.StartDate) {
		errs.Add("endDate", "end date must not be before start date")
	}
	if in.Budget != nil && *in.Budget < 0 {
		errs.Add("budget", "budget must not be negative")
	}
	if !in.Status.Valid() {
		errs.Add("status", "status must be one of planned, ongoing, completed, cancelled")
	}
	return errs
}
