package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/stocktrack/stocktrack-backend/pkg/database"
	"github.com/stocktrack/stocktrack-backend/pkg/errors"
)

// TagBinding maps a barcode/RFID tag to an item. Comparison is exact and
// case-sensitive; no two live items share a tag.
type TagBinding struct {
	Tag     string    `db:"tag" json:"tag"`
	ItemID  int64     `db:"item_id" json:"item_id"`
	BoundAt time.Time `db:"bound_at" json:"bound_at"`
}

// TagRepository owns the tag↔item binding table
type TagRepository struct {
	db *database.DB
}

// NewTagRepository creates a new tag repository
func NewTagRepository(db *database.DB) *TagRepository {
	return &TagRepository{db: db}
}

// Resolve returns the item id a tag is bound to
func (r *TagRepository) Resolve(ctx context.Context, tag string) (int64, error) {
	return r.resolveIn(ctx, r.db, tag)
}

func (r *TagRepository) resolveIn(ctx context.Context, q sqlx.QueryerContext, tag string) (int64, error) {
	var itemID int64
	err := sqlx.GetContext(ctx, q, &itemID,
		`SELECT t.item_id FROM tags t
		 JOIN items i ON i.id = t.item_id
		 WHERE t.tag = ? AND i.deleted_at IS NULL`, tag)
	if err == sql.ErrNoRows {
		return 0, errors.NotFound("tag")
	}
	if err != nil {
		return 0, err
	}
	return itemID, nil
}

// Bind binds a tag to an item. Binding the same tag to the same item again
// is a no-op; binding it to a different live item is a conflict.
func (r *TagRepository) Bind(ctx context.Context, q sqlx.ExtContext, tag string, itemID int64) error {
	if tag == "" {
		return errors.InvalidInput("tag must not be empty")
	}

	existing, err := r.resolveIn(ctx, q, tag)
	switch {
	case err == nil:
		if existing == itemID {
			return nil
		}
		return errors.Conflict("tag already bound to another item")
	case errors.Is(err, errors.ErrNotFound):
		// free to bind; a stale row for a deleted item may still occupy
		// the slot, so clear it first
		if _, err := q.ExecContext(ctx, `DELETE FROM tags WHERE tag = ?`, tag); err != nil {
			return err
		}
	default:
		return err
	}

	_, err = q.ExecContext(ctx,
		`INSERT INTO tags (tag, item_id, bound_at) VALUES (?, ?, ?)`,
		tag, itemID, time.Now().UTC())
	return err
}

// Unbind releases a tag
func (r *TagRepository) Unbind(ctx context.Context, q sqlx.ExtContext, tag string) error {
	res, err := q.ExecContext(ctx, `DELETE FROM tags WHERE tag = ?`, tag)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return errors.NotFound("tag")
	}
	return nil
}

// TagForItem returns the tag bound to an item, or "" when none is
func (r *TagRepository) TagForItem(ctx context.Context, q sqlx.QueryerContext, itemID int64) (string, error) {
	var tag string
	err := sqlx.GetContext(ctx, q, &tag,
		`SELECT tag FROM tags WHERE item_id = ?`, itemID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return tag, nil
}

// TagsByItem returns every binding keyed by item id
func (r *TagRepository) TagsByItem(ctx context.Context) (map[int64]string, error) {
	var bindings []TagBinding
	err := r.db.SelectContext(ctx, &bindings, `SELECT tag, item_id, bound_at FROM tags`)
	if err != nil {
		return nil, err
	}

	byItem := make(map[int64]string, len(bindings))
	for _, b := range bindings {
		byItem[b.ItemID] = b.Tag
	}
	return byItem, nil
}
