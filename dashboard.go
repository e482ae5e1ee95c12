package main

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"familyhub/models"
)

// activityBucket is one day of the trailing-week completed-task chart.
type activityBucket struct {
	Name  string `json:"name"`
	Total int    `json:"total"`
}

type nextEventSummary struct {
	Title string `json:"title"`
	Time  string `json:"time"`
}

type eventSummary struct {
	Count     int               `json:"count"`
	NextEvent *nextEventSummary `json:"nextEvent"`
}

type dinnerSummary struct {
	Description string `json:"description"`
	AssignedTo  string `json:"assignedTo,omitempty"`
}

type dashboardData struct {
	PendingTasks   int              `json:"pendingTasks"`
	RecentTasks    []models.Task    `json:"recentTasks"`
	WeeklyActivity []activityBucket `json:"weeklyActivity"`
	EventSummary   eventSummary     `json:"eventSummary"`
	DinnerSummary  *dinnerSummary   `json:"dinnerSummary"`
}

// buildDashboard derives the dashboard projection from full collections and
// "now". It never touches storage, so it stays deterministic under test.
func buildDashboard(tasks []models.Task, events []models.Event, meals []models.Meal, now time.Time) dashboardData {
	byCreation := make([]models.Task, len(tasks))
	copy(byCreation, tasks)
	sort.SliceStable(byCreation, func(i, j int) bool {
		return byCreation[i].CreatedAt.After(byCreation[j].CreatedAt)
	})

	pending := 0
	for _, t := range byCreation {
		if t.Status == models.TaskStatusTodo || t.Status == models.TaskStatusInProgress {
			pending++
		}
	}

	recent := byCreation
	if len(recent) > 5 {
		recent = recent[:5]
	}

	// One bucket per trailing day, oldest first. The update timestamp stands
	// in for the completion time of done tasks; the source data records no
	// separate completion timestamp.
	weekly := make([]activityBucket, 0, 7)
	for i := 0; i < 7; i++ {
		day := now.AddDate(0, 0, -(6 - i))
		count := 0
		for _, t := range byCreation {
			if t.Status == models.TaskStatusDone && sameDay(t.UpdatedAt, day) {
				count++
			}
		}
		weekly = append(weekly, activityBucket{Name: day.Weekday().String()[:3], Total: count})
	}

	dayStart := startOfDay(now)
	dayEnd := dayStart.AddDate(0, 0, 1).Add(-time.Nanosecond)

	summary := eventSummary{}
	var earliest *models.Event
	for i := range events {
		e := events[i]
		if e.StartTime.Before(dayStart) || e.StartTime.After(dayEnd) {
			continue
		}
		summary.Count++
		if earliest == nil || e.StartTime.Before(earliest.StartTime) {
			earliest = &events[i]
		}
	}
	if earliest != nil {
		summary.NextEvent = &nextEventSummary{
			Title: earliest.Title,
			Time:  earliest.StartTime.Format("15:04"),
		}
	}

	var dinner *dinnerSummary
	for _, m := range meals {
		if m.Type == models.MealTypeDinner && !m.Date.Before(dayStart) && !m.Date.After(dayEnd) {
			dinner = &dinnerSummary{Description: m.Description, AssignedTo: m.AssignedTo}
			break
		}
	}

	return dashboardData{
		PendingTasks:   pending,
		RecentTasks:    recent,
		WeeklyActivity: weekly,
		EventSummary:   summary,
		DinnerSummary:  dinner,
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// projectionCache holds one derived view until a mutation invalidates it.
// A read racing an invalidation may still observe the stale value.
type projectionCache[T any] struct {
	mu    sync.Mutex
	valid bool
	data  T
}

func (c *projectionCache[T]) get(fill func() T) T {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.valid {
		c.data = fill()
		c.valid = true
	}
	return c.data
}

func (c *projectionCache[T]) invalidate() {
	c.mu.Lock()
	c.valid = false
	c.mu.Unlock()
}

var dashboardCache projectionCache[dashboardData]

func init() {
	onRevalidate(viewDashboard, dashboardCache.invalidate)
}

func dashboardHandler(c *gin.Context) {
	data := dashboardCache.get(func() dashboardData {
		return buildDashboard(listTasks(), listEvents(), listMeals(), time.Now())
	})
	c.JSON(http.StatusOK, data)
}
