package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/stocktrack/stocktrack-backend/internal/inventory/service"
	"github.com/stocktrack/stocktrack-backend/pkg/httputil"
	"github.com/stocktrack/stocktrack-backend/pkg/logger"
)

// TransferHandler handles CSV import and export endpoints
type TransferHandler struct {
	service *service.TransferService
	logger  *logger.Logger
}

// NewTransferHandler creates a new transfer handler
func NewTransferHandler(svc *service.TransferService, log *logger.Logger) *TransferHandler {
	return &TransferHandler{
		service: svc,
		logger:  log,
	}
}

// Import reads CSV from the request body and registers each row as an
// item. Rows fail independently; the response lists any skipped rows.
func (h *TransferHandler) Import(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Import(r.Context(), r.Body)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, result)
}

// Export streams the whole directory as a CSV attachment
func (h *TransferHandler) Export(w http.ResponseWriter, r *http.Request) {
	filename := fmt.Sprintf("inventory_%s.csv", time.Now().UTC().Format("20060102_150405"))

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := h.service.Export(r.Context(), w); err != nil {
		// Headers may already be out; log rather than double-write
		h.logger.Error().Err(err).Msg("CSV export failed mid-stream")
	}
}
