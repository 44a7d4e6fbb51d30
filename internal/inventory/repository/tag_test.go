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

func TestTagRepository_BindAndResolve(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := repository.NewTagRepository(db)
	ctx := context.Background()

	item := seedItem(t, db, "Scanner", "80.00")

	require.NoError(t, repo.Bind(ctx, db, "BC-0001", item.ID))

	got, err := repo.Resolve(ctx, "BC-0001")
	require.NoError(t, err)
	assert.Equal(t, item.ID, got)
}

func TestTagRepository_ResolveUnknown(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := repository.NewTagRepository(db)

	_, err := repo.Resolve(context.Background(), "BC-MISSING")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestTagRepository_RebindSameItemIsNoop(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := repository.NewTagRepository(db)
	ctx := context.Background()

	item := seedItem(t, db, "Scanner", "80.00")

	require.NoError(t, repo.Bind(ctx, db, "BC-0001", item.ID))
	require.NoError(t, repo.Bind(ctx, db, "BC-0001", item.ID))

	got, err := repo.Resolve(ctx, "BC-0001")
	require.NoError(t, err)
	assert.Equal(t, item.ID, got)
}

func TestTagRepository_BindConflict(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := repository.NewTagRepository(db)
	ctx := context.Background()

	first := seedItem(t, db, "Scanner", "80.00")
	second := seedItem(t, db, "Printer", "120.00")

	require.NoError(t, repo.Bind(ctx, db, "BC-0001", first.ID))

	err := repo.Bind(ctx, db, "BC-0001", second.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConflict))

	// the original binding is untouched
	got, err := repo.Resolve(ctx, "BC-0001")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got)
}

func TestTagRepository_EmptyTag(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := repository.NewTagRepository(db)

	item := seedItem(t, db, "Scanner", "80.00")

	err := repo.Bind(context.Background(), db, "", item.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestTagRepository_UnbindThenRebind(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := repository.NewTagRepository(db)
	ctx := context.Background()

	first := seedItem(t, db, "Scanner", "80.00")
	second := seedItem(t, db, "Printer", "120.00")

	require.NoError(t, repo.Bind(ctx, db, "BC-0001", first.ID))
	require.NoError(t, repo.Unbind(ctx, db, "BC-0001"))

	_, err := repo.Resolve(ctx, "BC-0001")
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	// a released tag is free for another item
	require.NoError(t, repo.Bind(ctx, db, "BC-0001", second.ID))

	got, err := repo.Resolve(ctx, "BC-0001")
	require.NoError(t, err)
	assert.Equal(t, second.ID, got)
}

func TestTagRepository_UnbindUnknown(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := repository.NewTagRepository(db)

	err := repo.Unbind(context.Background(), db, "BC-MISSING")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestTagRepository_DeletedItemFreesTag(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := repository.NewTagRepository(db)
	ctx := context.Background()

	first := seedItem(t, db, "Scanner", "80.00")
	second := seedItem(t, db, "Printer", "120.00")

	require.NoError(t, repo.Bind(ctx, db, "BC-0001", first.ID))
	require.NoError(t, repository.NewItemRepository(db).SoftDelete(ctx, db, first.ID))

	// resolving through a deleted item fails, and the tag can be reused
	_, err := repo.Resolve(ctx, "BC-0001")
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	require.NoError(t, repo.Bind(ctx, db, "BC-0001", second.ID))

	got, err := repo.Resolve(ctx, "BC-0001")
	require.NoError(t, err)
	assert.Equal(t, second.ID, got)
}

func TestTagRepository_TagForItem(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := repository.NewTagRepository(db)
	ctx := context.Background()

	item := seedItem(t, db, "Scanner", "80.00")

	tag, err := repo.TagForItem(ctx, db, item.ID)
	require.NoError(t, err)
	assert.Empty(t, tag)

	require.NoError(t, repo.Bind(ctx, db, "BC-0001", item.ID))

	tag, err = repo.TagForItem(ctx, db, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "BC-0001", tag)
}
