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

// Supplier is a bidder. The bidding price is the only field that drives
// contract selection.
type Supplier struct {
	ID           int64           `db:"id" json:"id"`
	Name         string          `db:"name" json:"name"`
	Contact      string          `db:"contact" json:"contact"`
	OrderHistory string          `db:"order_history" json:"order_history,omitempty"`
	Rating       int             `db:"rating" json:"rating"`
	BiddingPrice decimal.Decimal `db:"bidding_price" json:"bidding_price"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// ContractStatusApproved is the only status a contract is ever written with
const ContractStatusApproved = "approved"

// Contract is an immutable record of an approved supplier selection. A new
// bidding round creates a new contract; existing rows are never touched.
type Contract struct {
	ID           int64     `db:"id" json:"id"`
	SupplierID   int64     `db:"supplier_id" json:"supplier_id"`
	Status       string    `db:"status" json:"status"`
	Reference    string    `db:"reference" json:"reference"`
	ContractDate time.Time `db:"contract_date" json:"contract_date"`
}

// SupplierRepository owns supplier and contract records
type SupplierRepository struct {
	db *database.DB
}

// NewSupplierRepository creates a new supplier repository
func NewSupplierRepository(db *database.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

// Create inserts a supplier and fills in its assigned id
func (r *SupplierRepository) Create(ctx context.Context, q sqlx.ExtContext, s *Supplier) error {
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now

	res, err := q.ExecContext(ctx, `
		INSERT INTO suppliers (name, contact, order_history, rating, bidding_price, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.Name, s.Contact, s.OrderHistory, s.Rating, s.BiddingPrice, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return err
	}

	s.ID, err = res.LastInsertId()
	return err
}

// GetByID gets a supplier by id
func (r *SupplierRepository) GetByID(ctx context.Context, id int64) (*Supplier, error) {
	var s Supplier
	err := r.db.GetContext(ctx, &s, `
		SELECT id, name, contact, order_history, rating, bidding_price, created_at, updated_at
		FROM suppliers WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("supplier")
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListAll lists all suppliers ordered by id
func (r *SupplierRepository) ListAll(ctx context.Context) ([]*Supplier, error) {
	var suppliers []*Supplier
	err := r.db.SelectContext(ctx, &suppliers, `
		SELECT id, name, contact, order_history, rating, bidding_price, created_at, updated_at
		FROM suppliers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return suppliers, nil
}

// UpdateBid sets a supplier's current bidding price
func (r *SupplierRepository) UpdateBid(ctx context.Context, q sqlx.ExtContext, id int64, price decimal.Decimal) error {
	res, err := q.ExecContext(ctx,
		`UPDATE suppliers SET bidding_price = ?, updated_at = ? WHERE id = ?`,
		price, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return errors.NotFound("supplier")
	}
	return nil
}

// LowestBidder returns the supplier with the strictly lowest bidding price.
// Equal bids are broken by the lowest supplier id, so repeated rounds over
// the same bids select the same winner.
func (r *SupplierRepository) LowestBidder(ctx context.Context, q sqlx.QueryerContext) (*Supplier, error) {
	var suppliers []*Supplier
	err := sqlx.SelectContext(ctx, q, &suppliers, `
		SELECT id, name, contact, order_history, rating, bidding_price, created_at, updated_at
		FROM suppliers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	if len(suppliers) == 0 {
		return nil, errors.NotFound("supplier")
	}

	// Prices are stored as decimal text; compare numerically in Go rather
	// than trusting SQL text ordering.
	best := suppliers[0]
	for _, s := range suppliers[1:] {
		if s.BiddingPrice.LessThan(best.BiddingPrice) {
			best = s
		}
	}
	return best, nil
}

// CreateContract inserts an immutable contract row
func (r *SupplierRepository) CreateContract(ctx context.Context, q sqlx.ExtContext, c *Contract) error {
	if c.ContractDate.IsZero() {
		c.ContractDate = time.Now().UTC()
	}

	res, err := q.ExecContext(ctx, `
		INSERT INTO contracts (supplier_id, status, reference, contract_date)
		VALUES (?, ?, ?, ?)`,
		c.SupplierID, c.Status, c.Reference, c.ContractDate,
	)
	if err != nil {
		return err
	}

	c.ID, err = res.LastInsertId()
	return err
}

// ListContracts lists contracts newest first
func (r *SupplierRepository) ListContracts(ctx context.Context) ([]*Contract, error) {
	var contracts []*Contract
	err := r.db.SelectContext(ctx, &contracts, `
		SELECT id, supplier_id, status, reference, contract_date
		FROM contracts ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	return contracts, nil
}
