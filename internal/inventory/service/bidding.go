package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/stocktrack/stocktrack-backend/internal/inventory/repository"
	"github.com/stocktrack/stocktrack-backend/pkg/database"
	"github.com/stocktrack/stocktrack-backend/pkg/dispatch"
	"github.com/stocktrack/stocktrack-backend/pkg/errors"
	"github.com/stocktrack/stocktrack-backend/pkg/logger"
	"github.com/stocktrack/stocktrack-backend/pkg/messaging"
)

// BiddingService manages supplier records, their standing bids and the
// approve-best decision that turns the lowest bid into a contract.
type BiddingService struct {
	db           *database.DB
	loop         *dispatch.Loop
	supplierRepo *repository.SupplierRepository
	publisher    *messaging.Publisher
	logger       *logger.Logger
}

// NewBiddingService creates a new bidding service. publisher may be nil
// when no broker is configured.
func NewBiddingService(
	db *database.DB,
	loop *dispatch.Loop,
	supplierRepo *repository.SupplierRepository,
	publisher *messaging.Publisher,
	log *logger.Logger,
) *BiddingService {
	return &BiddingService{
		db:           db,
		loop:         loop,
		supplierRepo: supplierRepo,
		publisher:    publisher,
		logger:       log,
	}
}

// RegisterSupplierInput carries a new supplier's profile and opening bid
type RegisterSupplierInput struct {
	Name         string
	Contact      string
	OrderHistory string
	Rating       int
	BiddingPrice decimal.Decimal
}

func (in *RegisterSupplierInput) validate() error {
	if in.Name == "" {
		return errors.InvalidInput("supplier name must not be empty")
	}
	if in.Rating < 0 || in.Rating > 5 {
		return errors.InvalidInput("rating must be between 0 and 5")
	}
	if in.BiddingPrice.IsNegative() {
		return errors.InvalidInput("bidding price must not be negative")
	}
	return nil
}

// RegisterSupplier adds a supplier to the bidding pool
func (s *BiddingService) RegisterSupplier(ctx context.Context, in RegisterSupplierInput) (*repository.Supplier, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	supplier := &repository.Supplier{
		Name:         in.Name,
		Contact:      in.Contact,
		OrderHistory: in.OrderHistory,
		Rating:       in.Rating,
		BiddingPrice: in.BiddingPrice,
	}

	err := s.loop.Do(ctx, func() error {
		return s.supplierRepo.Create(ctx, s.db, supplier)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("supplier_id", supplier.ID).
		Str("name", supplier.Name).
		Msg("supplier registered")

	return supplier, nil
}

// Get returns one supplier
func (s *BiddingService) Get(ctx context.Context, id int64) (*repository.Supplier, error) {
	return s.supplierRepo.GetByID(ctx, id)
}

// ListAll returns every supplier in registration order
func (s *BiddingService) ListAll(ctx context.Context) ([]*repository.Supplier, error) {
	return s.supplierRepo.ListAll(ctx)
}

// UpdateBid replaces a supplier's standing bid
func (s *BiddingService) UpdateBid(ctx context.Context, id int64, price decimal.Decimal) error {
	if price.IsNegative() {
		return errors.InvalidInput("bidding price must not be negative")
	}
	return s.loop.Do(ctx, func() error {
		return s.supplierRepo.UpdateBid(ctx, s.db, id, price)
	})
}

// ApproveBest picks the supplier with the lowest standing bid and records
// an approved contract for it. When several suppliers share the lowest
// price, the one registered first wins. Selection and contract creation
// are one transaction, so a bid changed mid-decision cannot split them.
func (s *BiddingService) ApproveBest(ctx context.Context) (*repository.Contract, *repository.Supplier, error) {
	var (
		winner   *repository.Supplier
		contract *repository.Contract
	)

	err := s.loop.Do(ctx, func() error {
		return s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
			best, err := s.supplierRepo.LowestBidder(ctx, tx)
			if err != nil {
				return err
			}

			c := &repository.Contract{
				SupplierID: best.ID,
				Status:     repository.ContractStatusApproved,
				Reference:  uuid.New().String(),
			}
			if err := s.supplierRepo.CreateContract(ctx, tx, c); err != nil {
				return err
			}

			winner = best
			contract = c
			return nil
		})
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info().
		Int64("supplier_id", winner.ID).
		Int64("contract_id", contract.ID).
		Str("price", winner.BiddingPrice.String()).
		Msg("best bid approved")

	if s.publisher != nil {
		event := messaging.ContractApprovedEvent{
			ContractID:   contract.ID,
			SupplierID:   winner.ID,
			SupplierName: winner.Name,
			BiddingPrice: winner.BiddingPrice.String(),
		}
		if err := s.publisher.Publish(ctx, messaging.EventContractApproved, event); err != nil {
			s.logger.Error().Err(err).Msg("failed to publish contract approval")
		}
	}

	return contract, winner, nil
}

// ListContracts returns contracts newest first
func (s *BiddingService) ListContracts(ctx context.Context) ([]*repository.Contract, error) {
	return s.supplierRepo.ListContracts(ctx)
}
