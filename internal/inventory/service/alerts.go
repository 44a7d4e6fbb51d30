package service

import (
	"context"
	"fmt"
	"time"

	"github.com/stocktrack/stocktrack-backend/internal/inventory/notify"
	"github.com/stocktrack/stocktrack-backend/internal/inventory/repository"
	"github.com/stocktrack/stocktrack-backend/pkg/errors"
	"github.com/stocktrack/stocktrack-backend/pkg/logger"
)

// DefaultThreshold is used when a scan does not name its own threshold
const DefaultThreshold int64 = 5

// Alert flags an item whose ledger-derived stock sits below a threshold.
// Alerts are recomputed on every scan and never stored.
type Alert struct {
	ItemID       int64     `json:"item_id"`
	ItemName     string    `json:"item_name"`
	CurrentStock int64     `json:"current_stock"`
	Threshold    int64     `json:"threshold"`
	Severity     string    `json:"severity"`
	Message      string    `json:"message"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// AlertEngine scans the directory for items below a stock threshold and
// pushes each finding to the notification transport.
type AlertEngine struct {
	itemRepo     *repository.ItemRepository
	movementRepo *repository.MovementRepository
	transport    notify.Transport
	destination  string
	logger       *logger.Logger
}

// NewAlertEngine creates an alert engine
func NewAlertEngine(
	itemRepo *repository.ItemRepository,
	movementRepo *repository.MovementRepository,
	transport notify.Transport,
	destination string,
	log *logger.Logger,
) *AlertEngine {
	return &AlertEngine{
		itemRepo:     itemRepo,
		movementRepo: movementRepo,
		transport:    transport,
		destination:  destination,
		logger:       log.WithComponent("alerts"),
	}
}

// Scan evaluates every live item against the threshold. An item alerts
// when its stock is strictly below the threshold; an item exactly at the
// threshold does not. threshold <= 0 falls back to the default.
func (e *AlertEngine) Scan(ctx context.Context, threshold int64) ([]*Alert, error) {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	items, err := e.itemRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("alert scan: list items: %w", err)
	}

	totals, err := e.movementRepo.StockTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("alert scan: stock totals: %w", err)
	}

	now := time.Now().UTC()
	alerts := make([]*Alert, 0)

	for _, item := range items {
		stock := totals[item.ID]
		if stock >= threshold {
			continue
		}

		severity := "warning"
		message := fmt.Sprintf("%s is low on stock (%d/%d)", item.Name, stock, threshold)
		if stock == 0 {
			severity = "critical"
			message = fmt.Sprintf("%s is out of stock", item.Name)
		}

		alert := &Alert{
			ItemID:       item.ID,
			ItemName:     item.Name,
			CurrentStock: stock,
			Threshold:    threshold,
			Severity:     severity,
			Message:      message,
			GeneratedAt:  now,
		}
		alerts = append(alerts, alert)

		e.send(ctx, alert)
	}

	e.logger.Info().
		Int("alerts", len(alerts)).
		Int64("threshold", threshold).
		Msg("alert scan complete")

	return alerts, nil
}

// send delivers one alert. Delivery failures are logged and dropped; a
// failed send is never retried and never fails the scan.
func (e *AlertEngine) send(ctx context.Context, alert *Alert) {
	if e.transport == nil {
		return
	}
	if err := e.transport.Send(ctx, e.destination, alert.Message); err != nil {
		e.logger.Error().Err(err).
			Int64("item_id", alert.ItemID).
			Bool("transport_failure", errors.Is(err, errors.ErrTransport)).
			Msg("alert delivery failed")
	}
}
