package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocktrack/stocktrack-backend/internal/inventory/repository"
	"github.com/stocktrack/stocktrack-backend/internal/inventory/service"
	"github.com/stocktrack/stocktrack-backend/pkg/errors"
	"github.com/stocktrack/stocktrack-backend/pkg/logger"
	"github.com/stocktrack/stocktrack-backend/pkg/testutil"
)

func newBiddingService(t *testing.T) *service.BiddingService {
	t.Helper()

	db := testutil.OpenTestDB(t)
	loop := testutil.StartLoop(t)

	return service.NewBiddingService(db, loop,
		repository.NewSupplierRepository(db), nil, logger.Nop())
}

func registerSupplier(t *testing.T, svc *service.BiddingService, name, price string) *repository.Supplier {
	t.Helper()

	supplier, err := svc.RegisterSupplier(context.Background(), service.RegisterSupplierInput{
		Name:         name,
		Contact:      name + "@example.com",
		Rating:       3,
		BiddingPrice: decimal.RequireFromString(price),
	})
	require.NoError(t, err)
	return supplier
}

func TestBiddingService_RegisterValidation(t *testing.T) {
	svc := newBiddingService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   service.RegisterSupplierInput
	}{
		{"empty name", service.RegisterSupplierInput{Rating: 3}},
		{"rating too high", service.RegisterSupplierInput{Name: "x", Rating: 6}},
		{"negative price", service.RegisterSupplierInput{Name: "x", BiddingPrice: decimal.New(-1, 0)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.RegisterSupplier(ctx, tc.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidInput))
		})
	}
}

func TestBiddingService_ApproveBestPicksLowestThenEarliest(t *testing.T) {
	svc := newBiddingService(t)
	ctx := context.Background()

	registerSupplier(t, svc, "Pricey", "1200")
	expected := registerSupplier(t, svc, "Cheap A", "1000")
	registerSupplier(t, svc, "Cheap B", "1000")
	registerSupplier(t, svc, "Middle", "1100")

	contract, winner, err := svc.ApproveBest(ctx)
	require.NoError(t, err)

	assert.Equal(t, expected.ID, winner.ID)
	assert.True(t, winner.BiddingPrice.Equal(decimal.RequireFromString("1000")))

	assert.Equal(t, expected.ID, contract.SupplierID)
	assert.Equal(t, repository.ContractStatusApproved, contract.Status)
	assert.False(t, contract.ContractDate.IsZero())

	// the reference is a real UUID, not a placeholder
	_, err = uuid.Parse(contract.Reference)
	assert.NoError(t, err)
}

func TestBiddingService_ApproveBestNoSuppliers(t *testing.T) {
	svc := newBiddingService(t)

	_, _, err := svc.ApproveBest(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestBiddingService_UpdateBidChangesWinner(t *testing.T) {
	svc := newBiddingService(t)
	ctx := context.Background()

	a := registerSupplier(t, svc, "A", "500")
	b := registerSupplier(t, svc, "B", "600")

	_, winner, err := svc.ApproveBest(ctx)
	require.NoError(t, err)
	assert.Equal(t, a.ID, winner.ID)

	require.NoError(t, svc.UpdateBid(ctx, b.ID, decimal.RequireFromString("450")))

	_, winner, err = svc.ApproveBest(ctx)
	require.NoError(t, err)
	assert.Equal(t, b.ID, winner.ID)

	// each round appended its own contract
	contracts, err := svc.ListContracts(ctx)
	require.NoError(t, err)
	require.Len(t, contracts, 2)
	// newest first
	assert.Equal(t, b.ID, contracts[0].SupplierID)
	assert.Equal(t, a.ID, contracts[1].SupplierID)
}

func TestBiddingService_UpdateBidValidation(t *testing.T) {
	svc := newBiddingService(t)
	ctx := context.Background()

	supplier := registerSupplier(t, svc, "A", "500")

	err := svc.UpdateBid(ctx, supplier.ID, decimal.New(-1, 0))
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))

	err = svc.UpdateBid(ctx, 9999, decimal.New(1, 0))
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}
