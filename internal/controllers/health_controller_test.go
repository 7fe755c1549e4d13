package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repx/internal/models"
	"repx/internal/testutil"
)

func newTestHealthController() (*HealthController, *models.RatingStore, *testutil.LoopTransport) {
	store := models.NewRatingStore()
	tr := testutil.NewLoopTransport("guild")
	return NewHealthController(store, tr), store, tr
}

func TestHealth_ReturnsOK(t *testing.T) {
	hc, store, tr := newTestHealthController()
	store.AddGivenRating("Jaina-Proudmoore", &models.Rating{Driver: "Jaina-Proudmoore", Score: 5, Timestamp: 100})
	store.UpsertReceived("Thrall-Draenor", &models.Rating{Driver: "Thrall-Draenor", Reviewer: "Uther-Silvermoon", Score: 4, Timestamp: 200})
	tr.SetRoster("Jaina-Proudmoore", "Uther-Silvermoon")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	hc.Health(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Contains(t, resp, "uptime")
	assert.Contains(t, resp, "uptime_seconds")
	assert.Equal(t, float64(1), resp["received"])
	assert.Equal(t, float64(1), resp["given"])
	assert.Equal(t, float64(2), resp["roster_size"])
}

func TestHealth_MethodNotAllowed(t *testing.T) {
	hc, _, _ := newTestHealthController()

	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	rr := httptest.NewRecorder()
	hc.Health(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestHealth_EmptyStore(t *testing.T) {
	hc, _, _ := newTestHealthController()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	hc.Health(rr, req)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, float64(0), resp["received"])
	assert.Equal(t, float64(0), resp["given"])
	assert.Equal(t, float64(0), resp["roster_size"])
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{"zero", 0, "0h0m0s"},
		{"one minute", 60 * time.Second, "0h1m0s"},
		{"one hour", time.Hour, "1h0m0s"},
		{"mixed", time.Hour + time.Minute + time.Second, "1h1m1s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatDuration(tt.duration))
		})
	}
}
