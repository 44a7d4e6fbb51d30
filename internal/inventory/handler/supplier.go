package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/stocktrack/stocktrack-backend/internal/inventory/service"
	"github.com/stocktrack/stocktrack-backend/pkg/errors"
	"github.com/stocktrack/stocktrack-backend/pkg/httputil"
	"github.com/stocktrack/stocktrack-backend/pkg/logger"
)

// SupplierHandler handles supplier and contract endpoints
type SupplierHandler struct {
	service *service.BiddingService
	logger  *logger.Logger
}

// NewSupplierHandler creates a new supplier handler
func NewSupplierHandler(svc *service.BiddingService, log *logger.Logger) *SupplierHandler {
	return &SupplierHandler{
		service: svc,
		logger:  log,
	}
}

// RegisterSupplierRequest is the JSON body for adding a supplier
type RegisterSupplierRequest struct {
	Name         string          `json:"name" validate:"required"`
	Contact      string          `json:"contact"`
	OrderHistory string          `json:"order_history"`
	Rating       int             `json:"rating" validate:"gte=0,lte=5"`
	BiddingPrice decimal.Decimal `json:"bidding_price"`
}

// UpdateBidRequest is the JSON body for replacing a standing bid
type UpdateBidRequest struct {
	BiddingPrice decimal.Decimal `json:"bidding_price"`
}

// List lists all suppliers
func (h *SupplierHandler) List(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.service.ListAll(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, suppliers)
}

// Get gets a supplier by ID
func (h *SupplierHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := supplierID(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	supplier, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, supplier)
}

// Create registers a supplier
func (h *SupplierHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req RegisterSupplierRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	supplier, err := h.service.RegisterSupplier(r.Context(), service.RegisterSupplierInput{
		Name:         req.Name,
		Contact:      req.Contact,
		OrderHistory: req.OrderHistory,
		Rating:       req.Rating,
		BiddingPrice: req.BiddingPrice,
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, supplier)
}

// UpdateBid replaces a supplier's standing bid
func (h *SupplierHandler) UpdateBid(w http.ResponseWriter, r *http.Request) {
	id, err := supplierID(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	var req UpdateBidRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.UpdateBid(r.Context(), id, req.BiddingPrice); err != nil {
		httputil.Error(w, err)
		return
	}

	supplier, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, supplier)
}

// ApproveBest awards a contract to the lowest standing bid
func (h *SupplierHandler) ApproveBest(w http.ResponseWriter, r *http.Request) {
	contract, winner, err := h.service.ApproveBest(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, map[string]interface{}{
		"contract": contract,
		"supplier": winner,
	})
}

// ListContracts lists contracts newest first
func (h *SupplierHandler) ListContracts(w http.ResponseWriter, r *http.Request) {
	contracts, err := h.service.ListContracts(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, contracts)
}

func supplierID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.InvalidInput("supplier id must be a positive integer")
	}
	return id, nil
}
