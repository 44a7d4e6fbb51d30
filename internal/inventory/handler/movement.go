package handler

import (
	"net/http"

	"github.com/stocktrack/stocktrack-backend/internal/inventory/repository"
	"github.com/stocktrack/stocktrack-backend/internal/inventory/service"
	"github.com/stocktrack/stocktrack-backend/pkg/errors"
	"github.com/stocktrack/stocktrack-backend/pkg/httputil"
	"github.com/stocktrack/stocktrack-backend/pkg/logger"
)

// MovementHandler handles stock movement endpoints
type MovementHandler struct {
	service *service.InventoryService
	logger  *logger.Logger
}

// NewMovementHandler creates a new movement handler
func NewMovementHandler(svc *service.InventoryService, log *logger.Logger) *MovementHandler {
	return &MovementHandler{
		service: svc,
		logger:  log,
	}
}

// AppendMovementRequest is the JSON body for recording a movement
type AppendMovementRequest struct {
	Delta int64  `json:"delta"`
	Kind  string `json:"kind" validate:"required"`
}

// Append records a signed movement against an item's ledger
func (h *MovementHandler) Append(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	var req AppendMovementRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	kind := repository.MovementKind(req.Kind)
	if !kind.Valid() {
		httputil.Error(w, errors.InvalidInput("unknown movement kind "+req.Kind))
		return
	}

	stock, err := h.service.AppendMovement(r.Context(), id, req.Delta, kind)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]int64{
		"item_id":       id,
		"current_stock": stock,
	})
}

// List returns an item's full movement history in ledger order
func (h *MovementHandler) List(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	movements, err := h.service.ListMovements(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, movements)
}

// Stock returns an item's current ledger-derived stock
func (h *MovementHandler) Stock(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	stock, err := h.service.CurrentStock(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]int64{
		"item_id":       id,
		"current_stock": stock,
	})
}
