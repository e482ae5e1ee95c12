package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"familyhub/models"
)

// createMeal validates and inserts one planned meal.
func createMeal(in models.MealInput) mutationResult {
	if errs := in.Validate(); len(errs) > 0 {
		return recordMutation("meal", "create", invalidResult(errs))
	}
	m := models.Meal{
		Date:        in.Date,
		Type:        in.Type,
		Description: in.Description,
		AssignedTo:  in.AssignedTo,
	}
	if err := db.Create(&m).Error; err != nil {
		log.Printf("failed to create meal: %v", err)
		return recordMutation("meal", "create", failResult("failed to create meal"))
	}
	revalidateView(viewMeals, viewDashboard)
	return recordMutation("meal", "create", okResult())
}

// updateMeal rewrites the row matching id; absent ids are a silent no-op.
func updateMeal(id string, in models.MealInput) mutationResult {
	if errs := in.Validate(); len(errs) > 0 {
		return recordMutation("meal", "update", invalidResult(errs))
	}
	err := db.Model(&models.Meal{}).Where("id = ?", id).Updates(map[string]any{
		"date":        in.Date,
		"type":        in.Type,
		"description": in.Description,
		"assigned_to": in.AssignedTo,
	}).Error
	if err != nil {
		log.Printf("failed to update meal %s: %v", id, err)
		return recordMutation("meal", "update", failResult("failed to update meal"))
	}
	revalidateView(viewMeals, viewDashboard)
	return recordMutation("meal", "update", okResult())
}

func deleteMeal(id string) mutationResult {
	if err := db.Where("id = ?", id).Delete(&models.Meal{}).Error; err != nil {
		log.Printf("failed to delete meal %s: %v", id, err)
		return recordMutation("meal", "delete", failResult("failed to delete meal"))
	}
	revalidateView(viewMeals, viewDashboard)
	return recordMutation("meal", "delete", okResult())
}

// listMeals returns all meals ordered by date, latest first.
func listMeals() []models.Meal {
	var meals []models.Meal
	if err := db.Order("date desc").Find(&meals).Error; err != nil {
		log.Printf("failed to fetch meals: %v", err)
		return []models.Meal{}
	}
	return meals
}

// listWeeklyMeals returns the meals planned for the Monday-based week that
// contains the given day.
func listWeeklyMeals(day time.Time) []models.Meal {
	start, end := weekBounds(day)
	var meals []models.Meal
	if err := db.Where("date >= ? AND date <= ?", start, end).
		Order("date asc").Find(&meals).Error; err != nil {
		log.Printf("failed to fetch weekly meals: %v", err)
		return []models.Meal{}
	}
	return meals
}

// weekBounds returns the inclusive interval of the Monday-based calendar week
// containing t, in t's location.
func weekBounds(t time.Time) (time.Time, time.Time) {
	offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).AddDate(0, 0, -offset)
	end := start.AddDate(0, 0, 7).Add(-time.Nanosecond)
	return start, end
}

func createMealHandler(c *gin.Context) {
	var in models.MealInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	respondMutation(c, createMeal(in))
}

func updateMealHandler(c *gin.Context) {
	var in models.MealInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	respondMutation(c, updateMeal(c.Param("id"), in))
}

func deleteMealHandler(c *gin.Context) {
	respondMutation(c, deleteMeal(c.Param("id")))
}

// listMealsHandler serves the full plan, or one week of it when ?week= holds
// a date (YYYY-MM-DD or RFC 3339) inside the wanted week.
func listMealsHandler(c *gin.Context) {
	if w := c.Query("week"); w != "" {
		day, err := parseDay(w)
		if err != nil {
			c.JSON(http.StatusBadRequest, failResult("week must be a date (YYYY-MM-DD)"))
			return
		}
		c.JSON(http.StatusOK, listWeeklyMeals(day))
		return
	}
	c.JSON(http.StatusOK, listMeals())
}

func parseDay(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
