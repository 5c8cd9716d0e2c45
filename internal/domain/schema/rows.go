package schema

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/leengari/sheetsql/internal/domain/data"
)

// FromRows drains a database/sql result set into a Table named name.
// Byte slices are converted to strings; other driver values are kept.
// Repeated result column names get a numeric suffix: id, id_2, id_3.
func FromRows(name string, rows *sql.Rows) (*Table, error) {
	raw, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}
	columns := UniqueNames(raw)

	t := NewTable(name, columns)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row %d: %w", t.Len(), err)
		}

		row := data.NewRow(make(map[string]interface{}, len(columns)))
		for i, c := range columns {
			if b, ok := values[i].([]byte); ok {
				row.Set(c, string(b))
				continue
			}
			row.Set(c, values[i])
		}
		t.Rows = append(t.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate result rows: %w", err)
	}
	return t, nil
}

// UniqueNames returns names with every repeat renamed to name_N, where N
// is the first suffix from 2 that is not already taken
func UniqueNames(names []string) []string {
	taken := make(map[string]bool, len(names))
	for _, n := range names {
		taken[n] = true
	}

	seen := make(map[string]bool, len(names))
	out := make([]string, len(names))
	for i, n := range names {
		if !seen[n] {
			seen[n] = true
			out[i] = n
			continue
		}
		for k := 2; ; k++ {
			candidate := n + "_" + strconv.Itoa(k)
			if !taken[candidate] && !seen[candidate] {
				seen[candidate] = true
				out[i] = candidate
				break
			}
		}
	}
	return out
}
