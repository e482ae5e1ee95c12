package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventType labels a calendar event.
type EventType string

const (
	EventTypeGeneral  EventType = "general"
	EventTypeSchool   EventType = "school"
	EventTypeWork     EventType = "work"
	EventTypeVacation EventType = "vacation"
	EventTypeActivity EventType = "activity"
)

func (t EventType) Valid() bool {
	switch t {
	case EventTypeGeneral, EventTypeSchool, EventTypeWork, EventTypeVacation, EventTypeActivity:
		return true
	}
	return false
}

// Event is a calendar entry. TripID is an optional soft link to a trip; it is
// not enforced as a foreign key anywhere in the mutation logic.
type Event struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"size:100;not null" json:"title"`
	Description string    `gorm:"size:1024" json:"description,omitempty"`
	StartTime   time.Time `gorm:"not null;index" json:"startTime"`
	EndTime     time.Time `gorm:"not null" json:"endTime"`
	IsAllDay    bool      `gorm:"not null;default:false" json:"isAllDay"`
	Location    string    `gorm:"size:255" json:"location,omitempty"`
	Type        EventType `gorm:"size:16;not null;default:general" json:"type"`
	TripID      *string   `gorm:"type:uuid" json:"tripId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (e *Event) BeforeCreate(_ *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// EventInput carries the mutable fields of an event through validation.
type EventInput struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	IsAllDay    bool      `json:"isAllDay"`
	Location    string    `json:"location"`
	Type        EventType `json:"type"`
	TripID      *string   `json:"tripId"`
}

func (in EventInput) Validate() FieldErrors {
	errs := FieldErrors{}
	if in.Title == "" {
		errs.Add("title", "title is required")
	}
	if len(in.Title) > 100 {
		errs.Add("title", "title must be at most 100 characters")
	}
	if in.StartTime.IsZero() {
		errs.Add("startTime", "start time is required")
	}
	if in.EndTime.IsZero() {
		errs.Add("endTime", "end time is required")
	}
	if !in.StartTime.IsZero() && !in.EndTime.IsZero() && in.EndTime.Before(in.StartTime) {
		errs.Add("endTime", "end time must not be before start time")
	}
	if !in.Type.Valid() {
		errs.Add("type", "type must be one of general, school, work, vacation, activity")
	}
	return errs
}
