package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/satwatch/boletin-monitor/internal/models"
	"github.com/satwatch/boletin-monitor/internal/services"
)

var (
	monitorInstance *services.MonitorFunction
	once            sync.Once
	initErr         error
)

func init() {
	// Register the HTTP function with the framework.
	// "MonitorBoletines" is the entry point name configured in GCP.
	functions.HTTP("MonitorBoletines", handleMonitorBoletines)
}

// main is required by the Go Functions Framework.
func main() {}

// handleMonitorBoletines triggers one monitoring run. The request carries no
// meaningful payload; the response is a JSON envelope with the run outcome.
func handleMonitorBoletines(w http.ResponseWriter, r *http.Request) {
	// Use sync.Once for robust, one-time initialization of clients.
	once.Do(func() {
		monitorInstance, initErr = services.NewMonitor(context.Background())
	})
	if initErr != nil {
		log.Printf("CRITICAL: Monitor initialization failed: %v", initErr)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Status:  "error",
			Message: initErr.Error(),
		})
		return
	}

	report := monitorInstance.Run(r.Context())
	if report.Status != "success" {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Status:  "error",
			Message: report.Message,
		})
		return
	}

	writeJSON(w, http.StatusOK, models.SuccessResponse{
		Status:        "success",
		UpdatesFound:  len(report.Updates),
		PDFsAnalyzed:  report.LinksFound,
		ExecutionTime: report.ExecutionTime.Seconds(),
	})
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("ERROR: Failed to write response: %v", err)
	}
}
