package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stocktrack/stocktrack-backend/internal/inventory/repository"
	"github.com/stocktrack/stocktrack-backend/pkg/logger"
)

// LocationStock summarizes one location's share of the inventory
type LocationStock struct {
	Location   string `json:"location"`
	ItemCount  int    `json:"item_count"`
	TotalStock int64  `json:"total_stock"`
}

// Summary is a point-in-time aggregate over the whole directory. Stock
// figures are folded from the ledger, never read from a cached column.
type Summary struct {
	TotalItems     int              `json:"total_items"`
	TotalStock     int64            `json:"total_stock"`
	TotalValuation decimal.Decimal  `json:"total_valuation"`
	Distribution   []*LocationStock `json:"distribution"`
	GeneratedAt    time.Time        `json:"generated_at"`
}

// ReportService computes read-only aggregates for dashboards and exports
type ReportService struct {
	itemRepo     *repository.ItemRepository
	movementRepo *repository.MovementRepository
	logger       *logger.Logger
}

// NewReportService creates a new report service
func NewReportService(
	itemRepo *repository.ItemRepository,
	movementRepo *repository.MovementRepository,
	log *logger.Logger,
) *ReportService {
	return &ReportService{
		itemRepo:     itemRepo,
		movementRepo: movementRepo,
		logger:       log,
	}
}

// Summarize builds the full aggregate: item count, ledger-derived total
// stock, valuation as Σ stock × unit price, and per-location distribution.
// Items with no movements count as zero stock, not as missing.
func (s *ReportService) Summarize(ctx context.Context) (*Summary, error) {
	items, err := s.itemRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("summarize: list items: %w", err)
	}

	totals, err := s.movementRepo.StockTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("summarize: stock totals: %w", err)
	}

	summary := &Summary{
		TotalItems:     len(items),
		TotalValuation: decimal.Zero,
		GeneratedAt:    time.Now().UTC(),
	}

	byLocation := make(map[string]*LocationStock)
	order := make([]string, 0)

	for _, item := range items {
		stock := totals[item.ID]
		summary.TotalStock += stock
		summary.TotalValuation = summary.TotalValuation.Add(
			item.UnitPrice.Mul(decimal.NewFromInt(stock)))

		loc := item.Location
		if loc == "" {
			loc = "unassigned"
		}
		bucket, ok := byLocation[loc]
		if !ok {
			bucket = &LocationStock{Location: loc}
			byLocation[loc] = bucket
			order = append(order, loc)
		}
		bucket.ItemCount++
		bucket.TotalStock += stock
	}

	summary.Distribution = make([]*LocationStock, 0, len(order))
	for _, loc := range order {
		summary.Distribution = append(summary.Distribution, byLocation[loc])
	}

	return summary, nil
}

// ItemStock pairs an item with its current stock, for charting consumers
type ItemStock struct {
	ItemName string `json:"item_name"`
	Stock    int64  `json:"stock"`
}

// Distribution returns per-item stock levels in name order
func (s *ReportService) Distribution(ctx context.Context) ([]*ItemStock, error) {
	items, err := s.itemRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("distribution: list items: %w", err)
	}

	totals, err := s.movementRepo.StockTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("distribution: stock totals: %w", err)
	}

	distribution := make([]*ItemStock, len(items))
	for i, item := range items {
		distribution[i] = &ItemStock{ItemName: item.Name, Stock: totals[item.ID]}
	}
	return distribution, nil
}

// TotalValuation returns just the inventory's ledger-derived worth
func (s *ReportService) TotalValuation(ctx context.Context) (decimal.Decimal, error) {
	summary, err := s.Summarize(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return summary.TotalValuation, nil
}
