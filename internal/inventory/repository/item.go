package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/stocktrack/stocktrack-backend/pkg/database"
	"github.com/stocktrack/stocktrack-backend/pkg/errors"
)

// Item is a directory record. The stock field is deliberately absent: stock
// is derived from the movement ledger and never stored on the item row.
type Item struct {
	ID        int64           `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	UnitPrice decimal.Decimal `db:"unit_price" json:"unit_price"`
	Location  string          `db:"location" json:"location"`
	Condition string          `db:"condition" json:"condition"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"last_updated"`
	DeletedAt *time.Time      `db:"deleted_at" json:"-"`
}

// ItemRepository handles item persistence.
//
// Write methods take an sqlx.ExtContext so a service can run several
// repository calls inside one transaction; pass the DB itself for
// standalone calls.
type ItemRepository struct {
	db *database.DB
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *database.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// Create inserts a new item and fills in its assigned id
func (r *ItemRepository) Create(ctx context.Context, q sqlx.ExtContext, item *Item) error {
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	res, err := q.ExecContext(ctx, `
		INSERT INTO items (name, unit_price, location, condition, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		item.Name, item.UnitPrice, item.Location, item.Condition, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return err
	}

	item.ID, err = res.LastInsertId()
	return err
}

// GetByID gets a live item by id
func (r *ItemRepository) GetByID(ctx context.Context, id int64) (*Item, error) {
	var item Item
	err := r.db.GetContext(ctx, &item, `
		SELECT id, name, unit_price, location, condition, created_at, updated_at, deleted_at
		FROM items WHERE id = ? AND deleted_at IS NULL`, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("item")
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListAll lists all live items ordered by name
func (r *ItemRepository) ListAll(ctx context.Context) ([]*Item, error) {
	var items []*Item
	err := r.db.SelectContext(ctx, &items, `
		SELECT id, name, unit_price, location, condition, created_at, updated_at, deleted_at
		FROM items WHERE deleted_at IS NULL ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// MetadataUpdate carries the mutable non-stock fields. Nil fields are left
// untouched.
type MetadataUpdate struct {
	Name      *string          `json:"name,omitempty"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	Location  *string          `json:"location,omitempty"`
	Condition *string          `json:"condition,omitempty"`
}

// UpdateMetadata updates non-stock fields on a live item
func (r *ItemRepository) UpdateMetadata(ctx context.Context, q sqlx.ExtContext, id int64, upd MetadataUpdate) error {
	res, err := q.ExecContext(ctx, `
		UPDATE items SET
			name       = COALESCE(?, name),
			unit_price = COALESCE(?, unit_price),
			location   = COALESCE(?, location),
			condition  = COALESCE(?, condition),
			updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		upd.Name, upd.UnitPrice, upd.Location, upd.Condition, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return errors.NotFound("item")
	}
	return nil
}

// SoftDelete marks an item removed. Its movement history stays intact.
func (r *ItemRepository) SoftDelete(ctx context.Context, q sqlx.ExtContext, id int64) error {
	res, err := q.ExecContext(ctx,
		`UPDATE items SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return errors.NotFound("item")
	}
	return nil
}

// Exists reports whether a live item with the id exists
func (r *ItemRepository) Exists(ctx context.Context, q sqlx.QueryerContext, id int64) (bool, error) {
	var n int
	err := sqlx.GetContext(ctx, q, &n,
		`SELECT COUNT(*) FROM items WHERE id = ? AND deleted_at IS NULL`, id)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
