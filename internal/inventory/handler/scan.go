package handler

import (
	"bytes"
	"io"
	"net/http"

	"github.com/stocktrack/stocktrack-backend/internal/inventory/scan"
	"github.com/stocktrack/stocktrack-backend/pkg/errors"
	"github.com/stocktrack/stocktrack-backend/pkg/httputil"
	"github.com/stocktrack/stocktrack-backend/pkg/logger"
)

// maxImageBytes caps uploaded barcode images
const maxImageBytes = 8 << 20

// ScanHandler drives the background scan coordinator over HTTP
type ScanHandler struct {
	coordinator *scan.Coordinator
	logger      *logger.Logger
}

// NewScanHandler creates a new scan handler
func NewScanHandler(coordinator *scan.Coordinator, log *logger.Logger) *ScanHandler {
	return &ScanHandler{
		coordinator: coordinator,
		logger:      log,
	}
}

// StartBarcode accepts an image in the request body and starts a decode.
// The request returns immediately; poll Status for the outcome.
func (h *ScanHandler) StartBarcode(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxImageBytes+1))
	if err != nil {
		httputil.Error(w, errors.InvalidInput("failed to read image body"))
		return
	}
	if len(body) == 0 {
		httputil.Error(w, errors.InvalidInput("image body is empty"))
		return
	}
	if len(body) > maxImageBytes {
		httputil.Error(w, errors.InvalidInput("image exceeds the upload limit"))
		return
	}

	if err := h.coordinator.StartBarcode(bytes.NewReader(body)); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusAccepted, map[string]string{
		"state": h.coordinator.State().String(),
	})
}

// StartRFID starts an RFID read
func (h *ScanHandler) StartRFID(w http.ResponseWriter, r *http.Request) {
	if err := h.coordinator.StartRFID(); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusAccepted, map[string]string{
		"state": h.coordinator.State().String(),
	})
}

// Status reports the coordinator state and the last delivered outcome
func (h *ScanHandler) Status(w http.ResponseWriter, r *http.Request) {
	last := h.coordinator.Last()

	payload := map[string]interface{}{
		"state": h.coordinator.State().String(),
	}
	if !last.At.IsZero() {
		lastView := map[string]interface{}{
			"state": last.State.String(),
			"tag":   last.Tag,
			"item":  last.Item,
			"at":    last.At,
		}
		if last.Err != nil {
			lastView["error"] = last.Err.Error()
		}
		payload["last"] = lastView
	}

	httputil.JSON(w, http.StatusOK, payload)
}

// Cancel abandons an in-flight scan
func (h *ScanHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.coordinator.Cancel()
	httputil.NoContent(w)
}
