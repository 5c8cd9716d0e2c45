package relational

import (
	"context"
	"database/sql"
	"fmt"
)

// Column is one column of a relational table
type Column struct {
	Name string
	Type string
}

// TableSchema describes one relational table
type TableSchema struct {
	Name    string
	Columns []Column
}

// Schema lists every user table with its column names and declared types
func (d *DB) Schema(ctx context.Context) ([]TableSchema, error) {
	var listQuery string
	switch d.driver {
	case DriverMySQL:
		listQuery = "SHOW TABLES"
	default:
		listQuery = "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name"
	}

	names, err := d.tableNames(ctx, listQuery)
	if err != nil {
		return nil, err
	}

	out := make([]TableSchema, 0, len(names))
	for _, name := range names {
		cols, err := d.columns(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to describe table %s: %w", name, err)
		}
		out = append(out, TableSchema{Name: name, Columns: cols})
	}
	return out, nil
}

func (d *DB) tableNames(ctx context.Context, query string) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// columns reads DESCRIBE (MySQL: Field, Type, ...) or PRAGMA table_info
// (SQLite: cid, name, type, ...) output
func (d *DB) columns(ctx context.Context, table string) ([]Column, error) {
	var query string
	nameIdx, typeIdx := 0, 1
	switch d.driver {
	case DriverMySQL:
		query = "DESCRIBE " + quoteIdent(d.driver, table)
	default:
		query = "PRAGMA table_info(" + quoteIdent(d.driver, table) + ")"
		nameIdx, typeIdx = 1, 2
	}

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var cols []Column
	for rows.Next() {
		values := make([]sql.NullString, len(fields))
		ptrs := make([]interface{}, len(fields))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		cols = append(cols, Column{Name: values[nameIdx].String, Type: values[typeIdx].String})
	}
	return cols, rows.Err()
}
