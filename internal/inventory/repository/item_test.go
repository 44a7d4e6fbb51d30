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

// seedItem creates a live item and returns it
func seedItem(t *testing.T, db *database.DB, name, price string) *repository.Item {
	t.Helper()

	item := &repository.Item{
		Name:      name,
		UnitPrice: decimal.RequireFromString(price),
		Location:  "warehouse-a",
		Condition: "new",
	}
	require.NoError(t, repository.NewItemRepository(db).Create(context.Background(), db, item))
	require.NotZero(t, item.ID)
	return item
}

func TestItemRepository_CreateAndGet(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := repository.NewItemRepository(db)
	ctx := context.Background()

	item := seedItem(t, db, "Laptop", "999.99")

	got, err := repo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Laptop", got.Name)
	assert.True(t, got.UnitPrice.Equal(decimal.RequireFromString("999.99")))
	assert.Equal(t, "warehouse-a", got.Location)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestItemRepository_GetUnknown(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := repository.NewItemRepository(db)

	_, err := repo.GetByID(context.Background(), 9999)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestItemRepository_UpdateMetadataPartial(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := repository.NewItemRepository(db)
	ctx := context.Background()

	item := seedItem(t, db, "Monitor", "150.00")

	newLocation := "warehouse-b"
	err := repo.UpdateMetadata(ctx, db, item.ID, repository.MetadataUpdate{
		Location: &newLocation,
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "warehouse-b", got.Location)
	// untouched fields survive
	assert.Equal(t, "Monitor", got.Name)
	assert.True(t, got.UnitPrice.Equal(decimal.RequireFromString("150.00")))
}

func TestItemRepository_UpdateUnknown(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := repository.NewItemRepository(db)

	name := "Ghost"
	err := repo.UpdateMetadata(context.Background(), db, 404, repository.MetadataUpdate{Name: &name})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestItemRepository_SoftDeleteHidesItem(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := repository.NewItemRepository(db)
	ctx := context.Background()

	item := seedItem(t, db, "Keyboard", "45.00")

	require.NoError(t, repo.SoftDelete(ctx, db, item.ID))

	_, err := repo.GetByID(ctx, item.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	items, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	exists, err := repo.Exists(ctx, db, item.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestItemRepository_ListAllOrdersByName(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := repository.NewItemRepository(db)

	seedItem(t, db, "Zebra cable", "5.00")
	seedItem(t, db, "Adapter", "9.00")

	items, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Adapter", items[0].Name)
	assert.Equal(t, "Zebra cable", items[1].Name)
}
