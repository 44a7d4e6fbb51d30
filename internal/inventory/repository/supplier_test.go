package repository_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocktrack/stocktrack-backend/internal/inventory/repository"
	"github.com/stocktrack/stocktrack-backend/pkg/database"
	"github.com/stocktrack/stocktrack-backend/pkg/errors"
	"github.com/stocktrack/stocktrack-backend/pkg/testutil"
)

func seedSupplier(t *testing.T, db *database.DB, name, price string) *repository.Supplier {
	t.Helper()

	supplier := &repository.Supplier{
		Name:         name,
		Contact:      name + "@example.com",
		Rating:       4,
		BiddingPrice: decimal.RequireFromString(price),
	}
	require.NoError(t, repository.NewSupplierRepository(db).Create(context.Background(), db, supplier))
	require.NotZero(t, supplier.ID)
	return supplier
}

func TestSupplierRepository_CreateAndGet(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := repository.NewSupplierRepository(db)

	supplier := seedSupplier(t, db, "Acme", "100.00")

	got, err := repo.GetByID(context.Background(), supplier.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)
	assert.True(t, got.BiddingPrice.Equal(decimal.RequireFromString("100.00")))
}

func TestSupplierRepository_LowestBidder(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := repository.NewSupplierRepository(db)
	ctx := context.Background()

	seedSupplier(t, db, "Pricey", "1200")
	first1000 := seedSupplier(t, db, "Cheap A", "1000")
	seedSupplier(t, db, "Cheap B", "1000")
	seedSupplier(t, db, "Middle", "1100")

	// ties on price resolve to the supplier registered first
	best, err := repo.LowestBidder(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, first1000.ID, best.ID)
	assert.True(t, best.BiddingPrice.Equal(decimal.RequireFromString("1000")))
}

func TestSupplierRepository_LowestBidderNumericNotLexical(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := repository.NewSupplierRepository(db)

	seedSupplier(t, db, "Nine", "9")
	eighty := seedSupplier(t, db, "Eighty", "80")

	// "80" sorts before "9" as text; the comparison must be numeric
	best, err := repo.LowestBidder(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, "Nine", best.Name)
	_ = eighty
}

func TestSupplierRepository_LowestBidderEmpty(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := repository.NewSupplierRepository(db)

	_, err := repo.LowestBidder(context.Background(), db)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestSupplierRepository_UpdateBid(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := repository.NewSupplierRepository(db)
	ctx := context.Background()

	supplier := seedSupplier(t, db, "Acme", "100.00")

	require.NoError(t, repo.UpdateBid(ctx, db, supplier.ID, decimal.RequireFromString("90.50")))

	got, err := repo.GetByID(ctx, supplier.ID)
	require.NoError(t, err)
	assert.True(t, got.BiddingPrice.Equal(decimal.RequireFromString("90.50")))
}

func TestSupplierRepository_UpdateBidUnknown(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := repository.NewSupplierRepository(db)

	err := repo.UpdateBid(context.Background(), db, 404, decimal.RequireFromString("1"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestSupplierRepository_Contracts(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := repository.NewSupplierRepository(db)
	ctx := context.Background()

	supplier := seedSupplier(t, db, "Acme", "100.00")

	contract := &repository.Contract{
		SupplierID: supplier.ID,
		Status:     repository.ContractStatusApproved,
		Reference:  "ref-1",
	}
	require.NoError(t, repo.CreateContract(ctx, db, contract))
	require.NotZero(t, contract.ID)

	contracts, err := repo.ListContracts(ctx)
	require.NoError(t, err)
	require.Len(t, contracts, 1)
	assert.Equal(t, supplier.ID, contracts[0].SupplierID)
	assert.Equal(t, repository.ContractStatusApproved, contracts[0].Status)
}
