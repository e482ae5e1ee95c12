package main

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"familyhub/models"
)

// tripRecord is the transport shape of a trip. A trip without a budget reads
// as budget 0, matching the presentation surface's expectation.
type tripRecord struct {
	ID          string            `json:"id"`
	Destination string            `json:"destination"`
	StartDate   time.Time         `json:"startDate"`
	EndDate     time.Time         `json:"endDate"`
	Description string            `json:"description,omitempty"`
	Budget      float64           `json:"budget"`
	Status      models.TripStatus `json:"status"`
	CreatedAt   time.Time         `json:"createdAt"`
}

func toTripRecord(t models.Trip) tripRecord {
	rec := tripRecord{
		ID:          t.ID,
		Destination: t.Destination,
		StartDate:   t.StartDate,
		EndDate:     t.EndDate,
		Description: t.Description,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt,
	}
	if t.Budget != nil {
		if v, err := strconv.ParseFloat(*t.Budget, 64); err == nil {
			rec.Budget = v
		}
	}
	return rec
}

// createTrip validates and inserts one trip row.
func createTrip(in models.TripInput) mutationResult {
	if in.Status == "" {
		in.Status = models.TripStatusPlanned
	}
	if errs := in.Validate(); len(errs) > 0 {
		return recordMutation("trip", "create", invalidResult(errs))
	}
	t := models.Trip{
		Destination: in.Destination,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Description: in.Description,
		Budget:      formatBudget(in.Budget),
		Status:      in.Status,
	}
	if err := db.Create(&t).Error; err != nil {
		log.Printf("failed to create trip: %v", err)
		return recordMutation("trip", "create", failResult("failed to create trip"))
	}
	revalidateView(viewVacation)
	return recordMutation("trip", "create", okResult())
}

// updateTrip rewrites the row matching id; absent ids are a silent no-op.
func updateTrip(id string, in models.TripInput) mutationResult {
	if in.Status == "" {
		in.Status = models.TripStatusPlanned
	}
	if errs := in.Validate(); len(errs) > 0 {
		return recordMutation("trip", "update", invalidResult(errs))
	}
	err := db.Model(&models.Trip{}).Where("id = ?", id).Updates(map[string]any{
		"destination": in.Destination,
		"start_date":  in.StartDate,
		"end_date":    in.EndDate,
		"description": in.Description,
		"budget":      formatBudget(in.Budget),
		"status":      in.Status,
	}).Error
	if err != nil {
		log.Printf("failed to update trip %s: %v", id, err)
		return recordMutation("trip", "update", failResult("failed to update trip"))
	}
	revalidateView(viewVacation)
	return recordMutation("trip", "update", okResult())
}

func deleteTrip(id string) mutationResult {
	if err := db.Where("id = ?", id).Delete(&models.Trip{}).Error; err != nil {
		log.Printf("failed to delete trip %s: %v", id, err)
		return recordMutation("trip", "delete", failResult("failed to delete trip"))
	}
	revalidateView(viewVacation)
	return recordMutation("trip", "delete", okResult())
}

// listTrips returns all trips ordered by start date, latest first.
func listTrips() []tripRecord {
	var trips []models.Trip
	if err := db.Order("start_date desc").Find(&trips).Error; err != nil {
		log.Printf("failed to fetch trips: %v", err)
		return []tripRecord{}
	}
	records := make([]tripRecord, len(trips))
	for i, t := range trips {
		records[i] = toTripRecord(t)
	}
	return records
}

func formatBudget(v *float64) *string {
	if v == nil {
		return nil
	}
	s := models.FormatAmount(*v)
	return &s
}

func createTripHandler(c *gin.Context) {
	var in models.TripInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	respondMutation(c, createTrip(in))
}

func updateTripHandler(c *gin.Context) {
	var in models.TripInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	respondMutation(c, updateTrip(c.Param("id"), in))
}

func deleteTripHandler(c *gin.Context) {
	respondMutation(c, deleteTrip(c.Param("id")))
}

func listTripsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, listTrips())
}
