package service

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/stocktrack/stocktrack-backend/internal/inventory/repository"
	"github.com/stocktrack/stocktrack-backend/pkg/actor"
	"github.com/stocktrack/stocktrack-backend/pkg/database"
	"github.com/stocktrack/stocktrack-backend/pkg/dispatch"
	"github.com/stocktrack/stocktrack-backend/pkg/errors"
	"github.com/stocktrack/stocktrack-backend/pkg/logger"
)

// InventoryService is the directory and ledger facade. Every mutation runs
// as a closure on the dispatch loop, so writes are applied one at a time in
// arrival order; reads go straight to the store.
type InventoryService struct {
	db           *database.DB
	loop         *dispatch.Loop
	itemRepo     *repository.ItemRepository
	tagRepo      *repository.TagRepository
	movementRepo *repository.MovementRepository
	logger       *logger.Logger
}

// NewInventoryService creates a new inventory service
func NewInventoryService(
	db *database.DB,
	loop *dispatch.Loop,
	itemRepo *repository.ItemRepository,
	tagRepo *repository.TagRepository,
	movementRepo *repository.MovementRepository,
	log *logger.Logger,
) *InventoryService {
	return &InventoryService{
		db:           db,
		loop:         loop,
		itemRepo:     itemRepo,
		tagRepo:      tagRepo,
		movementRepo: movementRepo,
		logger:       log,
	}
}

// ItemSnapshot is a point-in-time view of an item with its derived stock
type ItemSnapshot struct {
	*repository.Item
	Tag          string `json:"tag,omitempty"`
	CurrentStock int64  `json:"current_stock"`
}

// CreateItemInput carries everything needed to register a new item
type CreateItemInput struct {
	Name       string
	UnitPrice  decimal.Decimal
	Location   string
	Condition  string
	Tag        string
	OpeningQty int64
}

func (in *CreateItemInput) validate() error {
	if in.Name == "" {
		return errors.InvalidInput("item name must not be empty")
	}
	if in.UnitPrice.IsNegative() {
		return errors.InvalidInput("unit price must not be negative")
	}
	if in.OpeningQty < 0 {
		return errors.InvalidInput("opening quantity must not be negative")
	}
	return nil
}

// CreateItem registers an item, binds its tag and seeds the opening receipt
// movement, all in one transaction. A tag conflict rolls everything back.
func (s *InventoryService) CreateItem(ctx context.Context, in CreateItemInput) (*ItemSnapshot, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	item := &repository.Item{
		Name:      in.Name,
		UnitPrice: in.UnitPrice,
		Location:  in.Location,
		Condition: in.Condition,
	}

	err := s.loop.Do(ctx, func() error {
		return s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
			if err := s.itemRepo.Create(ctx, tx, item); err != nil {
				return err
			}
			if in.Tag != "" {
				if err := s.tagRepo.Bind(ctx, tx, in.Tag, item.ID); err != nil {
					return err
				}
			}
			if in.OpeningQty > 0 {
				_, err := s.movementRepo.AppendTx(ctx, tx, item.ID, in.OpeningQty,
					repository.KindReceipt, actor.FromContext(ctx).String())
				return err
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("item_id", item.ID).Str("name", item.Name).Msg("item created")

	return &ItemSnapshot{Item: item, Tag: in.Tag, CurrentStock: in.OpeningQty}, nil
}

// UpdateMetadata updates an item's non-stock fields. Stock cannot be set
// here; it only ever changes through AppendMovement.
func (s *InventoryService) UpdateMetadata(ctx context.Context, itemID int64, upd repository.MetadataUpdate) error {
	if upd.Name != nil && *upd.Name == "" {
		return errors.InvalidInput("item name must not be empty")
	}
	if upd.UnitPrice != nil && upd.UnitPrice.IsNegative() {
		return errors.InvalidInput("unit price must not be negative")
	}

	return s.loop.Do(ctx, func() error {
		return s.itemRepo.UpdateMetadata(ctx, s.db, itemID, upd)
	})
}

// RemoveItem retires an item: a removal movement zeroes its remaining stock,
// the tag is released and the directory row is soft-deleted. Movement
// history stays.
func (s *InventoryService) RemoveItem(ctx context.Context, itemID int64) error {
	return s.loop.Do(ctx, func() error {
		return s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
			stock, err := s.movementRepo.CurrentStockIn(ctx, tx, itemID)
			if err != nil {
				return err
			}

			if _, err := s.movementRepo.AppendTx(ctx, tx, itemID, -stock,
				repository.KindRemoval, actor.FromContext(ctx).String()); err != nil {
				return err
			}

			tag, err := s.tagRepo.TagForItem(ctx, tx, itemID)
			if err != nil {
				return err
			}
			if tag != "" {
				if err := s.tagRepo.Unbind(ctx, tx, tag); err != nil {
					return err
				}
			}

			return s.itemRepo.SoftDelete(ctx, tx, itemID)
		})
	})
}

// AppendMovement records a stock change through the ledger and returns the
// stock after the append
func (s *InventoryService) AppendMovement(ctx context.Context, itemID, delta int64, kind repository.MovementKind) (int64, error) {
	var stock int64
	err := s.loop.Do(ctx, func() error {
		if _, err := s.movementRepo.Append(ctx, itemID, delta, kind, actor.FromContext(ctx).String()); err != nil {
			return err
		}
		var err error
		stock, err = s.movementRepo.CurrentStock(ctx, itemID)
		return err
	})
	return stock, err
}

// CurrentStock folds the ledger for one item
func (s *InventoryService) CurrentStock(ctx context.Context, itemID int64) (int64, error) {
	if _, err := s.itemRepo.GetByID(ctx, itemID); err != nil {
		return 0, err
	}
	return s.movementRepo.CurrentStock(ctx, itemID)
}

// ListMovements returns an item's ledger entries oldest first
func (s *InventoryService) ListMovements(ctx context.Context, itemID int64) ([]*repository.StockMovement, error) {
	if _, err := s.itemRepo.GetByID(ctx, itemID); err != nil {
		return nil, err
	}
	return s.movementRepo.ListByItem(ctx, itemID)
}

// Get returns a snapshot of one item
func (s *InventoryService) Get(ctx context.Context, itemID int64) (*ItemSnapshot, error) {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	stock, err := s.movementRepo.CurrentStock(ctx, itemID)
	if err != nil {
		return nil, err
	}

	tag, err := s.tagRepo.TagForItem(ctx, s.db, itemID)
	if err != nil {
		return nil, err
	}

	return &ItemSnapshot{Item: item, Tag: tag, CurrentStock: stock}, nil
}

// ListAll returns snapshots of every live item
func (s *InventoryService) ListAll(ctx context.Context) ([]*ItemSnapshot, error) {
	items, err := s.itemRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	totals, err := s.movementRepo.StockTotals(ctx)
	if err != nil {
		return nil, err
	}

	tags, err := s.tagRepo.TagsByItem(ctx)
	if err != nil {
		return nil, err
	}

	snapshots := make([]*ItemSnapshot, len(items))
	for i, item := range items {
		snapshots[i] = &ItemSnapshot{
			Item:         item,
			Tag:          tags[item.ID],
			CurrentStock: totals[item.ID],
		}
	}
	return snapshots, nil
}

// Tag registry operations

// ResolveTag returns the item a tag is bound to
func (s *InventoryService) ResolveTag(ctx context.Context, tag string) (*ItemSnapshot, error) {
	itemID, err := s.tagRepo.Resolve(ctx, tag)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, itemID)
}

// BindTag binds a tag to an item; the binding is durable before return
func (s *InventoryService) BindTag(ctx context.Context, tag string, itemID int64) error {
	return s.loop.Do(ctx, func() error {
		if _, err := s.itemRepo.GetByID(ctx, itemID); err != nil {
			return err
		}
		return s.tagRepo.Bind(ctx, s.db, tag, itemID)
	})
}

// UnbindTag releases a tag
func (s *InventoryService) UnbindTag(ctx context.Context, tag string) error {
	return s.loop.Do(ctx, func() error {
		return s.tagRepo.Unbind(ctx, s.db, tag)
	})
}
