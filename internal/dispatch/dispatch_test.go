package dispatch

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leengari/sheetsql/internal/domain/errors"
	"github.com/leengari/sheetsql/internal/domain/schema"
	"github.com/leengari/sheetsql/internal/testutil"
)

func okRelational(calls *int) RelationalFunc {
	return func(ctx context.Context, statement string) (*schema.Table, error) {
		*calls++
		return schema.AffectedRows(7), nil
	}
}

func failingRelational(calls *int) RelationalFunc {
	return func(ctx context.Context, statement string) (*schema.Table, error) {
		*calls++
		return nil, fmt.Errorf("Error 1146 (42S02): Table 'db.employees' doesn't exist")
	}
}

func request(mode Mode, rel RelationalExecutor, statement string) Request {
	return Request{
		Mode:       mode,
		Relational: rel,
		Tables:     testutil.CreateTableSet(testutil.CreateEmployeesTable()),
		Statement:  statement,
	}
}

func TestRelationalOnly(t *testing.T) {
	calls := 0
	req := request(ModeRelational, okRelational(&calls), "UPDATE employees SET dept = 'x' WHERE id = 1")

	out, err := New(nil, nil).Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, RouteRelational, out.Route)
	assert.Equal(t, 1, calls)
	testutil.AssertCell(t, out.Table, 0, "affected_rows", "7", "relational result")

	// the tabular table is untouched
	table, _ := req.Tables.Get("employees")
	testutil.AssertCell(t, table, 0, "dept", "HR", "tabular untouched")
}

func TestRelationalOnlyNotConnected(t *testing.T) {
	out, err := New(nil, nil).Execute(context.Background(), request(ModeRelational, nil, "SELECT 1"))
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.StoreUnavailable))
	assert.Equal(t, RouteRelational, out.Route)
}

func TestRelationalErrorNotRetried(t *testing.T) {
	calls := 0
	out, err := New(nil, nil).Execute(context.Background(), request(ModeRelational, failingRelational(&calls), "SELECT * FROM employees"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "doesn't exist")
	assert.Nil(t, out.Table)
	assert.False(t, out.Fallback())
}

func TestTabularOnly(t *testing.T) {
	calls := 0
	req := request(ModeTabular, okRelational(&calls), "UPDATE employees SET dept = 'Sales' WHERE id = 1")

	out, err := New(nil, nil).Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 0, calls)
	assert.Equal(t, RouteTabular, out.Route)
	testutil.AssertCell(t, out.Table, 0, "affected_rows", "1", "tabular result")
}

func TestTabularOnlyWithoutTables(t *testing.T) {
	req := Request{Mode: ModeTabular, Statement: "SELECT 1"}
	_, err := New(nil, nil).Execute(context.Background(), req)
	assert.True(t, errors.IsKind(err, errors.StoreUnavailable))
}

func TestBothPrefersRelational(t *testing.T) {
	calls := 0
	req := request(ModeBoth, okRelational(&calls), "DELETE FROM employees WHERE id = 1")

	out, err := New(nil, nil).Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, RouteRelational, out.Route)
	assert.Nil(t, out.RelationalErr)

	table, _ := req.Tables.Get("employees")
	assert.Equal(t, 1, table.Len())
}

func TestBothFallsBackWithTabularResult(t *testing.T) {
	calls := 0
	req := request(ModeBoth, failingRelational(&calls), "UPDATE employees SET dept='Sales' WHERE id=1")

	out, err := New(nil, nil).Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, RouteTabular, out.Route)
	assert.True(t, out.Fallback())
	assert.Contains(t, out.RelationalErr.Error(), "doesn't exist")
	testutil.AssertCell(t, out.Table, 0, "affected_rows", "1", "fallback result")
}

func TestBothFallbackReturnsTabularErrorVerbatim(t *testing.T) {
	calls := 0
	req := request(ModeBoth, failingRelational(&calls), "DELETE FROM payroll WHERE id = 1")

	out, err := New(nil, nil).Execute(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.UnknownTable))
	assert.Equal(t, RouteTabular, out.Route)
	assert.NotNil(t, out.RelationalErr)
}

func TestBothWithoutRelationalFallsBack(t *testing.T) {
	out, err := New(nil, nil).Execute(context.Background(), request(ModeBoth, nil, "SELECT name FROM employees"))
	require.NoError(t, err)
	assert.Equal(t, RouteTabular, out.Route)
	assert.True(t, errors.IsKind(out.RelationalErr, errors.StoreUnavailable))
	testutil.AssertCell(t, out.Table, 0, "name", "Alice", "select")
}

func TestInvalidMode(t *testing.T) {
	out, err := New(nil, nil).Execute(context.Background(), request(Mode("postgres"), nil, "SELECT 1"))
	require.Error(t, err)
	assert.Nil(t, out)
	assert.True(t, errors.IsKind(err, errors.InvalidSourceMode))
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		input string
		want  Mode
	}{
		{"mysql", ModeRelational},
		{"Relational", ModeRelational},
		{" sheets ", ModeTabular},
		{"tabular", ModeTabular},
		{"BOTH", ModeBoth},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}

	_, err := ParseMode("excel")
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.InvalidSourceMode))
}
