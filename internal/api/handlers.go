package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Franca20/telegram-motorista-bot/internal/audit"
)

// HealthResponse is the /healthz payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// StatusResponse is the /status payload.
type StatusResponse struct {
	UptimeSeconds int64  `json:"uptime_seconds"`
	ActiveDrivers int    `json:"active_drivers"`
	ClosedDrivers int    `json:"closed_drivers"`
	Operators     int    `json:"operators"`
	IngestState   string `json:"ingest_state,omitempty"`
	LastUpdateID  int64  `json:"last_update_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: s.version,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	active, closed := s.registry.Counts()

	resp := StatusResponse{
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
		ActiveDrivers: active,
		ClosedDrivers: closed,
	}
	if s.owners != nil {
		resp.Operators = s.owners.OperatorCount()
	}
	if s.loop != nil {
		resp.IngestState = s.loop.State()
		resp.LastUpdateID = s.loop.LastSeenID()
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		writeNotFound(w, "audit trail not configured")
		return
	}

	filter := audit.Filter{
		Action:     r.URL.Query().Get("action"),
		DriverKey:  r.URL.Query().Get("driver_key"),
		OperatorID: r.URL.Query().Get("operator_id"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeBadRequest(w, "limit must be a non-negative integer")
			return
		}
		filter.Limit = limit
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			writeBadRequest(w, "offset must be a non-negative integer")
			return
		}
		filter.Offset = offset
	}

	result, err := s.audit.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("audit list failed", "error", err)
		writeInternalError(w, "failed to list audit entries")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
