package service_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocktrack/stocktrack-backend/internal/inventory/repository"
	"github.com/stocktrack/stocktrack-backend/internal/inventory/service"
	"github.com/stocktrack/stocktrack-backend/pkg/logger"
	"github.com/stocktrack/stocktrack-backend/pkg/testutil"
)

func newTransferService(t *testing.T) (*service.TransferService, *service.InventoryService) {
	t.Helper()

	db := testutil.OpenTestDB(t)
	loop := testutil.StartLoop(t)

	inventory := service.NewInventoryService(db, loop,
		repository.NewItemRepository(db),
		repository.NewTagRepository(db),
		repository.NewMovementRepository(db),
		logger.Nop())

	return service.NewTransferService(inventory, logger.Nop()), inventory
}

func TestTransferService_Import(t *testing.T) {
	transfer, inventory := newTransferService(t)
	ctx := context.Background()

	csvData := strings.Join([]string{
		"item_name,quantity,price,location,condition,barcode",
		"Laptop,5,999.99,warehouse-a,new,BC-100",
		"Mouse,20,15.50,warehouse-b,used,",
	}, "\n")

	result, err := transfer.Import(ctx, strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Zero(t, result.Failed)

	items, err := inventory.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)

	byName := map[string]*service.ItemSnapshot{}
	for _, item := range items {
		byName[item.Name] = item
	}
	assert.Equal(t, int64(5), byName["Laptop"].CurrentStock)
	assert.Equal(t, "BC-100", byName["Laptop"].Tag)
	assert.True(t, byName["Mouse"].UnitPrice.Equal(decimal.RequireFromString("15.50")))
	assert.Empty(t, byName["Mouse"].Tag)
}

func TestTransferService_ImportRowsFailIndependently(t *testing.T) {
	transfer, inventory := newTransferService(t)
	ctx := context.Background()

	csvData := strings.Join([]string{
		"item_name,quantity,price,location,condition,barcode",
		"Good,3,1.00,a,new,",
		"BadQty,many,1.00,a,new,",
		",2,1.00,a,new,",
		"BadPrice,2,free,a,new,",
		"AlsoGood,1,2.00,b,used,BC-1",
		"DupTag,1,2.00,b,used,BC-1",
	}, "\n")

	result, err := transfer.Import(ctx, strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 4, result.Failed)
	require.Len(t, result.Errors, 4)

	// row numbers point at the CSV lines that were skipped
	rows := make([]int, 0, len(result.Errors))
	for _, rowErr := range result.Errors {
		rows = append(rows, rowErr.Row)
	}
	assert.ElementsMatch(t, []int{3, 4, 5, 7}, rows)

	items, err := inventory.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestTransferService_ImportMissingColumn(t *testing.T) {
	transfer, _ := newTransferService(t)

	csvData := "item_name,quantity\nWidget,3\n"
	_, err := transfer.Import(context.Background(), strings.NewReader(csvData))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "price")
}

func TestTransferService_ExportRoundTrip(t *testing.T) {
	transfer, inventory := newTransferService(t)
	ctx := context.Background()

	_, err := inventory.CreateItem(ctx, service.CreateItemInput{
		Name:       "Laptop",
		UnitPrice:  decimal.RequireFromString("999.99"),
		Location:   "warehouse-a",
		Condition:  "new",
		Tag:        "BC-100",
		OpeningQty: 5,
	})
	require.NoError(t, err)
	_, err = inventory.CreateItem(ctx, service.CreateItemInput{
		Name:       "Mouse",
		UnitPrice:  decimal.RequireFromString("15.5"),
		Location:   "warehouse-b",
		Condition:  "used",
		OpeningQty: 20,
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, transfer.Export(ctx, &buf))

	exported := buf.String()
	assert.Contains(t, exported, "id,item_name,quantity,price,location,condition,barcode,last_updated")
	assert.Contains(t, exported, "Laptop,5,999.99,warehouse-a,new,BC-100")

	// an export feeds straight back into import on a fresh system
	second, secondInventory := newTransferService(t)
	result, err := second.Import(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Zero(t, result.Failed)

	items, err := secondInventory.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)

	byName := map[string]*service.ItemSnapshot{}
	for _, item := range items {
		byName[item.Name] = item
	}
	assert.Equal(t, int64(5), byName["Laptop"].CurrentStock)
	assert.Equal(t, "BC-100", byName["Laptop"].Tag)
	assert.Equal(t, int64(20), byName["Mouse"].CurrentStock)
	assert.True(t, byName["Mouse"].UnitPrice.Equal(decimal.RequireFromString("15.5")))
}
