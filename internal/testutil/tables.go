package testutil

import (
	"github.com/leengari/sheetsql/internal/domain/data"
	"github.com/leengari/sheetsql/internal/domain/schema"
)

// CreateTable builds a table from a column order and rows given as values
// in that order
func CreateTable(name string, columns []string, rows ...[]interface{}) *schema.Table {
	table := schema.NewTable(name, columns)
	for _, values := range rows {
		row := data.NewRow(make(map[string]interface{}, len(columns)))
		for i, c := range columns {
			if i < len(values) {
				row.Set(c, values[i])
			} else {
				row.Set(c, nil)
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// CreateEmployeesTable creates the single-row employees table
func CreateEmployeesTable() *schema.Table {
	return CreateTable("employees", []string{"id", "name", "dept"},
		[]interface{}{"1", "Alice", "HR"},
	)
}

// CreateUsersTable creates a users table with sample data for testing
func CreateUsersTable() *schema.Table {
	return CreateTable("users", []string{"id", "username", "email"},
		[]interface{}{int64(1), "alice", "alice@example.com"},
		[]interface{}{int64(2), "bob", "bob@example.com"},
		[]interface{}{int64(3), "charlie", "charlie@example.com"},
	)
}

// CreateOrdersTable creates an orders table with sample data for testing
func CreateOrdersTable() *schema.Table {
	return CreateTable("orders", []string{"id", "user_id", "product", "amount"},
		[]interface{}{int64(1), int64(1), "Laptop", 999.99},
		[]interface{}{int64(2), int64(1), "Mouse", 25.50},
		[]interface{}{int64(3), int64(2), "Keyboard", 75.00},
		// Note: user_id 3 (charlie) has no orders
	)
}

// CreateTableSet registers each table under its own name
func CreateTableSet(tables ...*schema.Table) *schema.TableSet {
	set := schema.NewTableSet()
	for _, t := range tables {
		if err := set.Register(t); err != nil {
			panic(err)
		}
	}
	return set
}
