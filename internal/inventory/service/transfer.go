package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/stocktrack/stocktrack-backend/pkg/errors"
	"github.com/stocktrack/stocktrack-backend/pkg/logger"
)

// csvHeader is the import column order. Export prepends id and appends
// last_updated; import ignores those extra columns when present.
var csvHeader = []string{"item_name", "quantity", "price", "location", "condition", "barcode"}

// RowError records why one import row was skipped
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult reports how an import run went. A run with failed rows is
// not an error; the good rows are already committed.
type ImportResult struct {
	Imported int         `json:"imported"`
	Failed   int         `json:"failed"`
	Errors   []*RowError `json:"errors,omitempty"`
}

// TransferService moves inventory in and out of the system as CSV
type TransferService struct {
	inventory *InventoryService
	logger    *logger.Logger
}

// NewTransferService creates a new transfer service
func NewTransferService(inventory *InventoryService, log *logger.Logger) *TransferService {
	return &TransferService{
		inventory: inventory,
		logger:    log.WithComponent("transfer"),
	}
}

// Import reads items from CSV and registers each through the normal item
// pipeline, so every row gets the same validation, tag binding and opening
// receipt as a manual create. Rows fail independently: a bad quantity on
// row 7 does not block row 8.
func (t *TransferService) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.InvalidInput("malformed CSV: " + err.Error())
	}
	if len(records) == 0 {
		return nil, errors.InvalidInput("CSV is empty")
	}

	cols, err := headerIndex(records[0])
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}

	for i, record := range records[1:] {
		rowNum := i + 2

		in, err := parseImportRow(record, cols)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, &RowError{Row: rowNum, Message: err.Error()})
			continue
		}

		if _, err := t.inventory.CreateItem(ctx, in); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, &RowError{Row: rowNum, Message: err.Error()})
			continue
		}

		result.Imported++
	}

	t.logger.Info().
		Int("imported", result.Imported).
		Int("failed", result.Failed).
		Msg("CSV import complete")

	return result, nil
}

// headerIndex maps the expected columns to their positions, so imports
// survive reordered columns and the extra columns an export writes
func headerIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range csvHeader {
		if _, ok := cols[required]; !ok {
			return nil, errors.InvalidInput(fmt.Sprintf("CSV is missing column %q", required))
		}
	}
	return cols, nil
}

func parseImportRow(record []string, cols map[string]int) (CreateItemInput, error) {
	field := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var in CreateItemInput

	in.Name = field("item_name")
	if in.Name == "" {
		return in, fmt.Errorf("item_name is empty")
	}

	qty, err := strconv.ParseInt(field("quantity"), 10, 64)
	if err != nil {
		return in, fmt.Errorf("quantity %q is not an integer", field("quantity"))
	}
	if qty < 0 {
		return in, fmt.Errorf("quantity must not be negative")
	}
	in.OpeningQty = qty

	price, err := decimal.NewFromString(field("price"))
	if err != nil {
		return in, fmt.Errorf("price %q is not a number", field("price"))
	}
	if price.IsNegative() {
		return in, fmt.Errorf("price must not be negative")
	}
	in.UnitPrice = price

	in.Location = field("location")
	in.Condition = field("condition")
	in.Tag = field("barcode")

	return in, nil
}

// Export writes the whole directory as CSV. The layout is a superset of
// the import layout, so an export can be re-imported as-is.
func (t *TransferService) Export(ctx context.Context, w io.Writer) error {
	snapshots, err := t.inventory.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	writer := csv.NewWriter(w)

	header := append([]string{"id"}, csvHeader...)
	header = append(header, "last_updated")
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}

	for _, snap := range snapshots {
		record := []string{
			strconv.FormatInt(snap.ID, 10),
			snap.Name,
			strconv.FormatInt(snap.CurrentStock, 10),
			snap.UnitPrice.String(),
			snap.Location,
			snap.Condition,
			snap.Tag,
			snap.UpdatedAt.UTC().Format("2006-01-02 15:04:05"),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("export: write row for item %d: %w", snap.ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
