package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"familyhub/models"
)

// setupTestDB points the package-level handle at a fresh in-memory database
// for the duration of one test.
func setupTestDB(t *testing.T) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	migrateModels(gdb)
	prev := db
	db = gdb
	t.Cleanup(func() { db = prev })
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	setupRoutes(r)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeList[T any](t *testing.T, w *httptest.ResponseRecorder) []T {
	t.Helper()
	var out []T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestTaskEndpoints(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/api/tasks", gin.H{
		"title":    "Take out the trash",
		"priority": "high",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res mutationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.Empty(t, res.Error)

	w = doJSON(t, r, http.MethodGet, "/api/tasks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	tasks := decodeList[models.Task](t, w)
	require.Len(t, tasks, 1)
	assert.NotEmpty(t, tasks[0].ID)
	assert.Equal(t, "Take out the trash", tasks[0].Title)
	assert.Equal(t, models.TaskStatusTodo, tasks[0].Status)
	assert.Equal(t, models.TaskPriorityHigh, tasks[0].Priority)

	w = doJSON(t, r, http.MethodPut, "/api/tasks/"+tasks[0].ID, gin.H{
		"title":  "Take out the trash",
		"status": "done",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodGet, "/api/tasks", nil)
	tasks = decodeList[models.Task](t, w)
	require.Len(t, tasks, 1)
	assert.Equal(t, models.TaskStatusDone, tasks[0].Status)

	w = doJSON(t, r, http.MethodDelete, "/api/tasks/"+tasks[0].ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodGet, "/api/tasks", nil)
	assert.Empty(t, decodeList[models.Task](t, w))
}

func TestCreateTaskValidationRejectedBeforePersistence(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/api/tasks", gin.H{"title": ""})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var res mutationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.False(t, res.Success)
	assert.Contains(t, res.Fields, "title")

	w = doJSON(t, r, http.MethodGet, "/api/tasks", nil)
	assert.Empty(t, decodeList[models.Task](t, w))
}

func TestUpdateUnknownIDIsSilentNoOp(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	doJSON(t, r, http.MethodPost, "/api/tasks", gin.H{"title": "Original"})

	w := doJSON(t, r, http.MethodPut, "/api/tasks/no-such-id", gin.H{
		"title": "Replaced",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var res mutationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.Success)

	w = doJSON(t, r, http.MethodGet, "/api/tasks", nil)
	tasks := decodeList[models.Task](t, w)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Original", tasks[0].Title)
}

func TestDeleteUnknownIDIsIdempotent(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	w := doJSON(t, r, http.MethodDelete, "/api/tasks/no-such-id", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var res mutationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.Success)
}

func TestMalformedBodyIsBadRequest(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/tasks", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExpenseEndpointsRoundTripAmount(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/api/expenses", gin.H{
		"amount":      42.5,
		"category":    "groceries",
		"description": "Weekly shop",
		"date":        time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodGet, "/api/expenses", nil)
	records := decodeList[expenseRecord](t, w)
	require.Len(t, records, 1)
	assert.InDelta(t, 42.5, records[0].Amount, 1e-9)
	assert.Equal(t, "groceries", records[0].Category)
}

func TestMealsWeekQuery(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	// Wednesday 2025-03-12; its Monday week runs 03-10 through 03-16.
	inWeek := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	outOfWeek := time.Date(2025, 3, 19, 0, 0, 0, 0, time.UTC)
	for _, d := range []time.Time{inWeek, outOfWeek} {
		w := doJSON(t, r, http.MethodPost, "/api/meals", gin.H{
			"date":        d,
			"type":        "dinner",
			"description": "Pasta",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w := doJSON(t, r, http.MethodGet, "/api/meals?week=2025-03-12", nil)
	require.Equal(t, http.StatusOK, w.Code)
	meals := decodeList[models.Meal](t, w)
	require.Len(t, meals, 1)
	assert.Equal(t, inWeek.Day(), meals[0].Date.Day())

	w = doJSON(t, r, http.MethodGet, "/api/meals?week=not-a-date", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/meals", nil)
	assert.Len(t, decodeList[models.Meal](t, w), 2)
}
