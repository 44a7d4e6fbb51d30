package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stocktrack/stocktrack-backend/internal/inventory/service"
	"github.com/stocktrack/stocktrack-backend/pkg/errors"
	"github.com/stocktrack/stocktrack-backend/pkg/httputil"
	"github.com/stocktrack/stocktrack-backend/pkg/logger"
)

// TagHandler handles barcode/RFID tag endpoints
type TagHandler struct {
	service *service.InventoryService
	logger  *logger.Logger
}

// NewTagHandler creates a new tag handler
func NewTagHandler(svc *service.InventoryService, log *logger.Logger) *TagHandler {
	return &TagHandler{
		service: svc,
		logger:  log,
	}
}

// BindTagRequest is the JSON body for binding a tag to an item
type BindTagRequest struct {
	Tag string `json:"tag" validate:"required"`
}

// Resolve looks up the item a tag is bound to
func (h *TagHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	if tag == "" {
		httputil.Error(w, errors.InvalidInput("tag must not be empty"))
		return
	}

	item, err := h.service.ResolveTag(r.Context(), tag)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, item)
}

// Bind attaches a tag to an item. Binding the same tag to the same item
// again is a no-op; binding it to a different live item is a conflict.
func (h *TagHandler) Bind(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	var req BindTagRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.BindTag(r.Context(), req.Tag, id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"tag":     req.Tag,
		"item_id": id,
	})
}

// Unbind releases a tag
func (h *TagHandler) Unbind(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	if tag == "" {
		httputil.Error(w, errors.InvalidInput("tag must not be empty"))
		return
	}

	if err := h.service.UnbindTag(r.Context(), tag); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}
