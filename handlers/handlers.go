// Package handlers provides the HTTP handlers for the medication safety API:
// safety evaluation, medication directory search, knowledge snapshot info and
// health checks, with input validation and consistent JSON envelopes.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mindhub/medsafety-api/interfaces"
	"github.com/mindhub/medsafety-api/logging"
	"github.com/mindhub/medsafety-api/metrics"
	"github.com/mindhub/medsafety-api/safety"
)

// Handler implements the API endpoints with injected dependencies.
type Handler struct {
	store     interfaces.KnowledgeStore
	evaluator *safety.Evaluator
	directory interfaces.MedicationDirectory
	validator interfaces.InputValidator
}

// NewHandler creates a handler with injected dependencies.
func NewHandler(store interfaces.KnowledgeStore, evaluator *safety.Evaluator,
	directory interfaces.MedicationDirectory, validator interfaces.InputValidator) *Handler {
	return &Handler{
		store:     store,
		evaluator: evaluator,
		directory: directory,
		validator: validator,
	}
}

// RespondWithJSON writes a JSON response.
func RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	w.Write(data)
}

// RespondWithError writes the JSON error envelope.
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, map[string]any{
		"success": false,
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	})
}

// respondWithData writes the JSON success envelope.
func respondWithData(w http.ResponseWriter, code int, data any, message string) {
	RespondWithJSON(w, code, map[string]any{
		"success": true,
		"data":    data,
		"message": message,
	})
}

// EvaluateSafety handles POST /api/v1/safety/evaluate. Validation failures are
// a 400 with no partial evaluation; evaluator failures surface as 500 with the
// error message.
func (h *Handler) EvaluateSafety(w http.ResponseWriter, r *http.Request) {
	var req safety.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if len(req.Medications) == 0 {
		RespondWithError(w, http.StatusBadRequest, "medications list is required and cannot be empty")
		return
	}

	for _, med := range req.Medications {
		if err := h.validator.ValidateTerm(med.Name); err != nil {
			RespondWithError(w, http.StatusBadRequest, fmt.Sprintf("invalid medication name %q: %v", med.Name, err))
			return
		}
	}
	for _, allergy := range req.Allergies {
		if err := h.validator.ValidateTerm(allergy); err != nil {
			RespondWithError(w, http.StatusBadRequest, fmt.Sprintf("invalid allergy %q: %v", allergy, err))
			return
		}
	}
	for _, condition := range req.Conditions {
		if err := h.validator.ValidateTerm(condition); err != nil {
			RespondWithError(w, http.StatusBadRequest, fmt.Sprintf("invalid condition %q: %v", condition, err))
			return
		}
	}
	if req.Age != nil {
		if err := h.validator.ValidateAge(*req.Age); err != nil {
			RespondWithError(w, http.StatusBadRequest, fmt.Sprintf("invalid patient age: %v", err))
			return
		}
	}

	report, err := h.evaluator.Evaluate(r.Context(), req)
	if err != nil {
		logging.Error("Safety evaluation failed", "error", err, "medications", len(req.Medications))
		RespondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	metrics.RecordEvaluation(report)

	logging.Debug("Safety evaluation completed",
		"report_id", report.ReportID,
		"medications", len(req.Medications),
		"findings", len(report.Interactions),
		"warnings", len(report.Warnings),
		"score", report.SafetyScore)

	respondWithData(w, http.StatusOK, report, "Análisis de seguridad completado")
}

// SearchMedications handles GET /api/v1/medications/{name}: fuzzy search of
// the medication reference database.
func (h *Handler) SearchMedications(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.validator.ValidateTerm(name); err != nil {
		RespondWithError(w, http.StatusBadRequest, fmt.Sprintf("invalid search term: %v", err))
		return
	}

	if h.directory == nil || !h.directory.Available() {
		RespondWithError(w, http.StatusServiceUnavailable, "medication directory is not configured")
		return
	}

	refs, err := h.directory.Search(r.Context(), name, 20)
	if err != nil {
		logging.Error("Medication search failed", "term", name, "error", err)
		RespondWithError(w, http.StatusInternalServerError, "medication search failed")
		return
	}

	if len(refs) == 0 {
		RespondWithError(w, http.StatusNotFound, "no medications found")
		return
	}

	respondWithData(w, http.StatusOK, refs, "Búsqueda completada")
}

// KnowledgeInfo handles GET /api/v1/safety/knowledge: version and rule counts
// of the active snapshot.
func (h *Handler) KnowledgeInfo(w http.ResponseWriter, r *http.Request) {
	base := h.store.GetBase()

	respondWithData(w, http.StatusOK, map[string]any{
		"version":      base.Version,
		"loaded_at":    base.LoadedAt.Format(time.RFC3339),
		"last_updated": h.store.GetLastUpdated().Format(time.RFC3339),
		"rule_counts":  base.Counts(),
	}, "Base de conocimiento activa")
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	base := h.store.GetBase()
	counts := base.Counts()
	uptime := time.Since(h.store.GetServerStartTime())

	directoryStatus := "disabled"
	if h.directory != nil && h.directory.Available() {
		pingCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.directory.Ping(pingCtx); err != nil {
			directoryStatus = "unreachable"
		} else {
			directoryStatus = "connected"
		}
	}

	status := "healthy"
	httpStatus := http.StatusOK
	switch {
	case counts.Interactions == 0:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	case h.store.IsUpdating():
		status = "degraded"
	case directoryStatus == "unreachable":
		status = "degraded"
	}

	RespondWithJSON(w, httpStatus, map[string]any{
		"status":            status,
		"knowledge_version": base.Version,
		"last_update":       h.store.GetLastUpdated().Format(time.RFC3339),
		"is_updating":       h.store.IsUpdating(),
		"uptime_seconds":    uptime.Seconds(),
		"directory":         directoryStatus,
		"rule_counts":       counts,
		"system": map[string]any{
			"goroutines": runtime.NumGoroutine(),
			"alloc_mb":   int(m.Alloc / 1024 / 1024),
			"num_gc":     m.NumGC,
		},
	})
}
