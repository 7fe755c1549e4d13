package controllers

import (
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"repx/internal/models"
	"repx/internal/transport"
)

type HealthController struct {
	store     *models.RatingStore
	transport transport.TransportInterface
	startTime time.Time
}

type healthResponse struct {
	Status        string  `json:"status"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Received      int     `json:"received"`
	Given         int     `json:"given"`
	Known         int     `json:"known"`
	RosterSize    int     `json:"roster_size"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(hc.startTime)
	counts := hc.store.Counts()
	resp := healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		Received:      counts.Received,
		Given:         counts.Given,
		Known:         counts.Known,
		RosterSize:    len(hc.transport.CurrentRoster()),
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(store *models.RatingStore, tr transport.TransportInterface) *HealthController {
	return &HealthController{
		store:     store,
		transport: tr,
		startTime: time.Now(),
	}
}
