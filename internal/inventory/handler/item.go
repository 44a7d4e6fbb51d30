package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/stocktrack/stocktrack-backend/internal/inventory/repository"
	"github.com/stocktrack/stocktrack-backend/internal/inventory/service"
	"github.com/stocktrack/stocktrack-backend/pkg/errors"
	"github.com/stocktrack/stocktrack-backend/pkg/httputil"
	"github.com/stocktrack/stocktrack-backend/pkg/logger"
)

// ItemHandler handles item endpoints
type ItemHandler struct {
	service *service.InventoryService
	logger  *logger.Logger
}

// NewItemHandler creates a new item handler
func NewItemHandler(svc *service.InventoryService, log *logger.Logger) *ItemHandler {
	return &ItemHandler{
		service: svc,
		logger:  log,
	}
}

// CreateItemRequest is the JSON body for registering an item
type CreateItemRequest struct {
	Name       string          `json:"name" validate:"required"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Location   string          `json:"location"`
	Condition  string          `json:"condition"`
	Barcode    string          `json:"barcode"`
	OpeningQty int64           `json:"opening_qty" validate:"gte=0"`
}

// UpdateItemRequest carries the editable metadata fields. Absent fields
// are left untouched; stock is not editable here.
type UpdateItemRequest struct {
	Name      *string          `json:"name"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
	Location  *string          `json:"location"`
	Condition *string          `json:"condition"`
}

// List lists all items with their derived stock
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListAll(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, items)
}

// Get gets an item by ID
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, item)
}

// Create registers a new item
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateItemRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	item, err := h.service.CreateItem(r.Context(), service.CreateItemInput{
		Name:       req.Name,
		UnitPrice:  req.UnitPrice,
		Location:   req.Location,
		Condition:  req.Condition,
		Tag:        req.Barcode,
		OpeningQty: req.OpeningQty,
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, item)
}

// Update changes an item's metadata
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	var req UpdateItemRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	upd := repository.MetadataUpdate{
		Name:      req.Name,
		UnitPrice: req.UnitPrice,
		Location:  req.Location,
		Condition: req.Condition,
	}
	if err := h.service.UpdateMetadata(r.Context(), id, upd); err != nil {
		httputil.Error(w, err)
		return
	}

	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, item)
}

// Delete retires an item: stock is zeroed through the ledger, the tag is
// released and the row is soft-deleted
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.RemoveItem(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// itemID parses the {id} URL parameter
func itemID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.InvalidInput("item id must be a positive integer")
	}
	return id, nil
}
