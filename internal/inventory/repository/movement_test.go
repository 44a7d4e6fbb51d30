package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocktrack/stocktrack-backend/internal/inventory/repository"
	"github.com/stocktrack/stocktrack-backend/pkg/errors"
	"github.com/stocktrack/stocktrack-backend/pkg/testutil"
)

func TestMovementRepository_RunningSum(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := repository.NewMovementRepository(db)
	ctx := context.Background()

	item := seedItem(t, db, "Widget", "2.50")

	steps := []struct {
		delta int64
		kind  repository.MovementKind
		want  int64
	}{
		{10, repository.KindReceipt, 10},
		{-3, repository.KindSale, 7},
		{5, repository.KindReceipt, 12},
		{-2, repository.KindAdjustment, 10},
		{-10, repository.KindSale, 0},
	}

	// stock after every append equals the sum of all deltas so far
	for _, step := range steps {
		_, err := repo.Append(ctx, item.ID, step.delta, step.kind, "tester")
		require.NoError(t, err)

		stock, err := repo.CurrentStock(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, step.want, stock)
	}

	movements, err := repo.ListByItem(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, movements, len(steps))
	for i, m := range movements {
		assert.Equal(t, steps[i].delta, m.Delta)
		assert.Equal(t, steps[i].kind, m.Kind)
		assert.Equal(t, "tester", m.Actor)
	}
}

func TestMovementRepository_RejectsNegativeStock(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := repository.NewMovementRepository(db)
	ctx := context.Background()

	item := seedItem(t, db, "Widget", "2.50")

	_, err := repo.Append(ctx, item.ID, 4, repository.KindReceipt, "tester")
	require.NoError(t, err)

	_, err = repo.Append(ctx, item.ID, -5, repository.KindSale, "tester")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInsufficientStock))

	// the rejected movement left no trace
	stock, err := repo.CurrentStock(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stock)

	movements, err := repo.ListByItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Len(t, movements, 1)
}

func TestMovementRepository_UnknownItem(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := repository.NewMovementRepository(db)

	_, err := repo.Append(context.Background(), 777, 1, repository.KindReceipt, "tester")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestMovementRepository_DeletedItemRejectsAppends(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := repository.NewMovementRepository(db)
	ctx := context.Background()

	item := seedItem(t, db, "Widget", "2.50")
	require.NoError(t, repository.NewItemRepository(db).SoftDelete(ctx, db, item.ID))

	_, err := repo.Append(ctx, item.ID, 1, repository.KindReceipt, "tester")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestMovementRepository_InvalidKind(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := repository.NewMovementRepository(db)

	item := seedItem(t, db, "Widget", "2.50")

	_, err := repo.Append(context.Background(), item.ID, 1, "teleport", "tester")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestMovementRepository_StockTotals(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := repository.NewMovementRepository(db)
	ctx := context.Background()

	a := seedItem(t, db, "Alpha", "1.00")
	b := seedItem(t, db, "Beta", "2.00")
	seedItem(t, db, "Gamma", "3.00") // no movements

	_, err := repo.Append(ctx, a.ID, 7, repository.KindReceipt, "tester")
	require.NoError(t, err)
	_, err = repo.Append(ctx, b.ID, 3, repository.KindReceipt, "tester")
	require.NoError(t, err)
	_, err = repo.Append(ctx, b.ID, -1, repository.KindSale, "tester")
	require.NoError(t, err)

	totals, err := repo.StockTotals(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), totals[a.ID])
	assert.Equal(t, int64(2), totals[b.ID])
	// items without movements simply have no entry
	assert.Len(t, totals, 2)
}
