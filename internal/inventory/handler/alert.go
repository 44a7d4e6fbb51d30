package handler

import (
	"net/http"
	"strconv"

	"github.com/stocktrack/stocktrack-backend/internal/inventory/service"
	"github.com/stocktrack/stocktrack-backend/pkg/errors"
	"github.com/stocktrack/stocktrack-backend/pkg/httputil"
	"github.com/stocktrack/stocktrack-backend/pkg/logger"
)

// AlertHandler handles on-demand alert scans
type AlertHandler struct {
	engine *service.AlertEngine
	logger *logger.Logger
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(engine *service.AlertEngine, log *logger.Logger) *AlertHandler {
	return &AlertHandler{
		engine: engine,
		logger: log,
	}
}

// Scan runs a threshold scan now and returns the resulting alerts. An
// optional threshold query parameter overrides the default.
func (h *AlertHandler) Scan(w http.ResponseWriter, r *http.Request) {
	var threshold int64
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 1 {
			httputil.Error(w, errors.InvalidInput("threshold must be a positive integer"))
			return
		}
		threshold = parsed
	}

	alerts, err := h.engine.Scan(r.Context(), threshold)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, alerts)
}
