package crud

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leengari/sheetsql/internal/domain/errors"
	"github.com/leengari/sheetsql/internal/parser"
	"github.com/leengari/sheetsql/internal/parser/ast"
	"github.com/leengari/sheetsql/internal/testutil"
)

func mustMutation(t *testing.T, sql string) ast.Mutation {
	t.Helper()
	stmt, err := parser.Parse(sql)
	require.NoError(t, err)
	m, ok := stmt.(ast.Mutation)
	require.True(t, ok, "expected a mutation, got %T", stmt)
	return m
}

func TestEmployeesScenario(t *testing.T) {
	table := testutil.CreateEmployeesTable()

	next, affected, err := Apply(table, mustMutation(t, "UPDATE employees SET dept='Sales' WHERE id=1"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.Equal(t, []map[string]string{{"id": "1", "name": "Alice", "dept": "Sales"}}, testutil.Records(next))

	next, affected, err = Apply(next, mustMutation(t, "DELETE FROM employees WHERE id=1"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.Equal(t, 0, next.Len())
	assert.Equal(t, []string{"id", "name", "dept"}, next.Columns)

	next, affected, err = Apply(next, mustMutation(t, "INSERT INTO employees (id,name,dept) VALUES (2,'Bob','IT')"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.Equal(t, []map[string]string{{"id": "2", "name": "Bob", "dept": "IT"}}, testutil.Records(next))

	// the original table is untouched
	assert.Equal(t, []map[string]string{{"id": "1", "name": "Alice", "dept": "HR"}}, testutil.Records(table))
}

func TestInsertFillsMissingColumnsWithNil(t *testing.T) {
	table := testutil.CreateUsersTable()

	next, affected, err := Apply(table, mustMutation(t, "INSERT INTO users (username) VALUES ('dave')"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	require.Equal(t, 4, next.Len())

	last := next.Rows[3]
	assert.Equal(t, "dave", last.Data["username"])
	v, ok := last.Get("email")
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestInsertExtendsSchema(t *testing.T) {
	table := testutil.CreateUsersTable()

	next, _, err := Apply(table, mustMutation(t, "INSERT INTO users (id, nickname) VALUES (4, 'dd')"))
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "username", "email", "nickname"}, next.Columns)
	assert.Nil(t, next.Rows[0].Data["nickname"])
	assert.Equal(t, "dd", next.Rows[3].Data["nickname"])
	assert.Equal(t, []string{"id", "username", "email"}, table.Columns)
}

func TestUpdateMatchesByStringForm(t *testing.T) {
	table := testutil.CreateOrdersTable()

	// user_id is int64 in memory, the literal is text
	next, affected, err := Apply(table, mustMutation(t, "UPDATE orders SET product = 'Gift' WHERE user_id = 1"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)
	testutil.AssertCell(t, next, 0, "product", "Gift", "row 0")
	testutil.AssertCell(t, next, 1, "product", "Gift", "row 1")
	testutil.AssertCell(t, next, 2, "product", "Keyboard", "row 2")

	// 75.00 stringifies as 75
	_, affected, err = Apply(table, mustMutation(t, "UPDATE orders SET product = 'x' WHERE amount = 75"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
}

func TestUpdateNoMatch(t *testing.T) {
	table := testutil.CreateUsersTable()

	next, affected, err := Apply(table, mustMutation(t, "UPDATE users SET role = 'admin' WHERE id = 99"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
	assert.Equal(t, testutil.Records(table), testutil.Records(next))
	assert.False(t, next.HasColumn("role"))
}

func TestUpdateAddsAssignedColumnOnMatch(t *testing.T) {
	table := testutil.CreateUsersTable()

	next, affected, err := Apply(table, mustMutation(t, "UPDATE users SET role = 'admin' WHERE username = 'bob'"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.True(t, next.HasColumn("role"))
	assert.Nil(t, next.Rows[0].Data["role"])
	assert.Equal(t, "admin", next.Rows[1].Data["role"])
}

func TestUpdateIsIdempotent(t *testing.T) {
	table := testutil.CreateUsersTable()
	stmt := mustMutation(t, "UPDATE users SET email = NULL WHERE id = 2")

	once, a1, err := Apply(table, stmt)
	require.NoError(t, err)
	twice, a2, err := Apply(once, stmt)
	require.NoError(t, err)

	assert.Equal(t, a1, a2)
	assert.Equal(t, testutil.Records(once), testutil.Records(twice))
	assert.Nil(t, twice.Rows[1].Data["email"])
}

func TestDeletePreservesOrder(t *testing.T) {
	table := testutil.CreateUsersTable()

	next, affected, err := Apply(table, mustMutation(t, "DELETE FROM users WHERE username = 'bob'"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	require.Equal(t, 2, next.Len())
	testutil.AssertCell(t, next, 0, "username", "alice", "first")
	testutil.AssertCell(t, next, 1, "username", "charlie", "second")
}

func TestDeleteNoMatch(t *testing.T) {
	table := testutil.CreateUsersTable()

	next, affected, err := Apply(table, mustMutation(t, "DELETE FROM users WHERE id = 42"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
	assert.Equal(t, 3, next.Len())
}

func TestUnknownPredicateColumn(t *testing.T) {
	table := testutil.CreateUsersTable()

	for _, sql := range []string{
		"DELETE FROM users WHERE age = 3",
		"UPDATE users SET email = 'x' WHERE age = 3",
	} {
		_, _, err := Apply(table, mustMutation(t, sql))
		require.Error(t, err, sql)
		assert.True(t, errors.IsKind(err, errors.UnknownColumn), "got %v", err)
	}
	assert.Equal(t, 3, table.Len())
}

func TestNullMatchesEmptyString(t *testing.T) {
	table := testutil.CreateTable("t", []string{"id", "note"},
		[]interface{}{"1", nil},
		[]interface{}{"2", "x"},
	)

	next, affected, err := Apply(table, mustMutation(t, "DELETE FROM t WHERE note = ''"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	testutil.AssertCell(t, next, 0, "id", "2", "remaining row")
}

func TestInsertCountMismatch(t *testing.T) {
	table := testutil.CreateEmployeesTable()

	_, _, err := Apply(table, mustMutation(t, "INSERT INTO employees (id, name) VALUES (2)"))
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.ColumnValueCountMismatch), "got %v", err)
	assert.Equal(t, 1, table.Len())
}
