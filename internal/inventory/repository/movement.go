package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/stocktrack/stocktrack-backend/pkg/database"
	"github.com/stocktrack/stocktrack-backend/pkg/errors"
)

// MovementKind classifies a stock movement
type MovementKind string

const (
	KindReceipt    MovementKind = "receipt"
	KindSale       MovementKind = "sale"
	KindAdjustment MovementKind = "adjustment"
	KindRemoval    MovementKind = "removal"
)

// Valid reports whether the kind is one of the known movement kinds
func (k MovementKind) Valid() bool {
	switch k {
	case KindReceipt, KindSale, KindAdjustment, KindRemoval:
		return true
	}
	return false
}

// StockMovement is one immutable ledger entry. Rows are never updated or
// deleted; corrections are compensating movements.
type StockMovement struct {
	ID         int64        `db:"id" json:"id"`
	ItemID     int64        `db:"item_id" json:"item_id"`
	Delta      int64        `db:"delta" json:"delta"`
	Kind       MovementKind `db:"kind" json:"kind"`
	Actor      string       `db:"actor" json:"actor,omitempty"`
	RecordedAt time.Time    `db:"recorded_at" json:"recorded_at"`
}

// MovementRepository is the append-only ledger and the single source of
// truth for current stock.
type MovementRepository struct {
	db *database.DB
}

// NewMovementRepository creates a new movement repository
func NewMovementRepository(db *database.DB) *MovementRepository {
	return &MovementRepository{db: db}
}

// Append records a movement. The whole check-and-insert runs in one
// transaction: the item must exist, and the running sum plus delta must not
// go negative. On rejection nothing is written.
func (r *MovementRepository) Append(ctx context.Context, itemID, delta int64, kind MovementKind, actorID string) (int64, error) {
	if !kind.Valid() {
		return 0, errors.InvalidInput("unknown movement kind: " + string(kind))
	}

	var movementID int64
	err := r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		var err error
		movementID, err = r.AppendTx(ctx, tx, itemID, delta, kind, actorID)
		return err
	})
	if err != nil {
		return 0, err
	}
	return movementID, nil
}

// AppendTx is Append running inside a caller-owned transaction
func (r *MovementRepository) AppendTx(ctx context.Context, tx *sqlx.Tx, itemID, delta int64, kind MovementKind, actorID string) (int64, error) {
	if !kind.Valid() {
		return 0, errors.InvalidInput("unknown movement kind: " + string(kind))
	}

	var live int
	err := tx.GetContext(ctx, &live,
		`SELECT COUNT(*) FROM items WHERE id = ? AND deleted_at IS NULL`, itemID)
	if err != nil {
		return 0, err
	}
	if live == 0 {
		return 0, errors.NotFound("item")
	}

	current, err := r.stockIn(ctx, tx, itemID)
	if err != nil {
		return 0, err
	}
	if current+delta < 0 {
		return 0, errors.InsufficientStock(itemID, current, delta)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO stock_movements (item_id, delta, kind, actor, recorded_at)
		VALUES (?, ?, ?, ?, ?)`,
		itemID, delta, kind, actorID, time.Now().UTC(),
	)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

// CurrentStock folds the ledger for one item
func (r *MovementRepository) CurrentStock(ctx context.Context, itemID int64) (int64, error) {
	return r.stockIn(ctx, r.db, itemID)
}

// CurrentStockIn is CurrentStock against a caller-supplied queryer, for use
// inside an open transaction
func (r *MovementRepository) CurrentStockIn(ctx context.Context, q sqlx.QueryerContext, itemID int64) (int64, error) {
	return r.stockIn(ctx, q, itemID)
}

func (r *MovementRepository) stockIn(ctx context.Context, q sqlx.QueryerContext, itemID int64) (int64, error) {
	var total int64
	err := sqlx.GetContext(ctx, q, &total,
		`SELECT COALESCE(SUM(delta), 0) FROM stock_movements WHERE item_id = ?`, itemID)
	return total, err
}

// StockTotals returns the folded stock for every item that has movements
func (r *MovementRepository) StockTotals(ctx context.Context) (map[int64]int64, error) {
	rows, err := r.db.QueryxContext(ctx,
		`SELECT item_id, COALESCE(SUM(delta), 0) AS total FROM stock_movements GROUP BY item_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[int64]int64)
	for rows.Next() {
		var itemID, total int64
		if err := rows.Scan(&itemID, &total); err != nil {
			return nil, err
		}
		totals[itemID] = total
	}
	return totals, rows.Err()
}

// ListByItem returns an item's movements oldest first
func (r *MovementRepository) ListByItem(ctx context.Context, itemID int64) ([]*StockMovement, error) {
	var movements []*StockMovement
	err := r.db.SelectContext(ctx, &movements, `
		SELECT id, item_id, delta, kind, actor, recorded_at
		FROM stock_movements WHERE item_id = ? ORDER BY id`, itemID)
	if err != nil {
		return nil, err
	}
	return movements, nil
}
