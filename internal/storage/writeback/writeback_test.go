package writeback

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leengari/sheetsql/internal/domain/schema"
	"github.com/leengari/sheetsql/internal/testutil"
)

func TestPushWritesHeaderAndRows(t *testing.T) {
	sheet := testutil.NewFakeSheet("employees", []interface{}{"stale"})
	table := testutil.CreateTable("employees", []string{"id", "name", "dept"},
		[]interface{}{"1", "Alice", nil},
	)

	require.NoError(t, New(nil).Push(context.Background(), sheet, table))

	assert.Equal(t, 1, sheet.Clears)
	assert.Equal(t, 1, sheet.Updates)
	assert.Equal(t, [][]string{
		{"id", "name", "dept"},
		{"1", "Alice", ""},
	}, sheet.Strings())
}

func TestPushEmptyTableClears(t *testing.T) {
	sheet := testutil.NewFakeSheet("employees",
		[]interface{}{"id"},
		[]interface{}{"1"},
	)
	table := schema.NewTable("employees", []string{"id"})

	require.NoError(t, New(nil).Push(context.Background(), sheet, table))

	assert.Equal(t, 1, sheet.Clears)
	assert.Equal(t, 0, sheet.Updates)
	assert.Empty(t, sheet.Grid)
}

func TestPushErrors(t *testing.T) {
	boom := errors.New("quota exceeded")
	table := testutil.CreateEmployeesTable()

	sheet := testutil.NewFakeSheet("employees")
	sheet.ClearErr = boom
	err := New(nil).Push(context.Background(), sheet, table)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, sheet.Updates)

	sheet = testutil.NewFakeSheet("employees")
	sheet.UpdateErr = boom
	err = New(nil).Push(context.Background(), sheet, table)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failed to write sheet employees, external copy left cleared")
	assert.Empty(t, sheet.Grid)
}

func TestPushThenLoadRoundTrips(t *testing.T) {
	sheet := testutil.NewFakeSheet("orders")
	table := testutil.CreateOrdersTable()
	sync := New(nil)

	require.NoError(t, sync.Push(context.Background(), sheet, table))
	back, err := sync.Load(context.Background(), sheet)
	require.NoError(t, err)

	assert.Equal(t, "orders", back.Name)
	assert.Equal(t, table.Columns, back.Columns)
	assert.Equal(t, testutil.Records(table), testutil.Records(back))
}

func TestLoadFetchError(t *testing.T) {
	sheet := testutil.NewFakeSheet("orders")
	sheet.FetchErr = errors.New("permission denied")

	_, err := New(nil).Load(context.Background(), sheet)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}
