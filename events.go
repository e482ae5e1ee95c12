package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"familyhub/models"
)

// createEvent validates and inserts one calendar event.
func createEvent(in models.EventInput) mutationResult {
	if in.Type == "" {
		in.Type = models.EventTypeGeneral
	}
	if errs := in.Validate(); len(errs) > 0 {
		return recordMutation("event", "create", invalidResult(errs))
	}
	e := models.Event{
		Title:       in.Title,
		Description: in.Description,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		IsAllDay:    in.IsAllDay,
		Location:    in.Location,
		Type:        in.Type,
		TripID:      in.TripID,
	}
	if err := db.Create(&e).Error; err != nil {
		log.Printf("failed to create event: %v", err)
		return recordMutation("event", "create", failResult("failed to create event"))
	}
	revalidateView(viewCalendar, viewDashboard)
	return recordMutation("event", "create", okResult())
}

// updateEvent rewrites the row matching id; absent ids are a silent no-op.
func updateEvent(id string, in models.EventInput) mutationResult {
	if in.Type == "" {
		in.Type = models.EventTypeGeneral
	}
	if errs := in.Validate(); len(errs) > 0 {
		return recordMutation("event", "update", invalidResult(errs))
	}
	err := db.Model(&models.Event{}).Where("id = ?", id).Updates(map[string]any{
		"title":       in.Title,
		"description": in.Description,
		"start_time":  in.StartTime,
		"end_time":    in.EndTime,
		"is_all_day":  in.IsAllDay,
		"location":    in.Location,
		"type":        in.Type,
		"trip_id":     in.TripID,
	}).Error
	if err != nil {
		log.Printf("failed to update event %s: %v", id, err)
		return recordMutation("event", "update", failResult("failed to update event"))
	}
	revalidateView(viewCalendar, viewDashboard)
	return recordMutation("event", "update", okResult())
}

func deleteEvent(id string) mutationResult {
	if err := db.Where("id = ?", id).Delete(&models.Event{}).Error; err != nil {
		log.Printf("failed to delete event %s: %v", id, err)
		return recordMutation("event", "delete", failResult("failed to delete event"))
	}
	revalidateView(viewCalendar, viewDashboard)
	return recordMutation("event", "delete", okResult())
}

// listEvents returns all events ordered by start time, latest first.
func listEvents() []models.Event {
	var events []models.Event
	if err := db.Order("start_time desc").Find(&events).Error; err != nil {
		log.Printf("failed to fetch events: %v", err)
		return []models.Event{}
	}
	return events
}

func createEventHandler(c *gin.Context) {
	var in models.EventInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	respondMutation(c, createEvent(in))
}

func updateEventHandler(c *gin.Context) {
	var in models.EventInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	respondMutation(c, updateEvent(c.Param("id"), in))
}

func deleteEventHandler(c *gin.Context) {
	respondMutation(c, deleteEvent(c.Param("id")))
}

func listEventsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, listEvents())
}
