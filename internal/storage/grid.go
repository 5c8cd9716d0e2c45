package storage

import (
	"fmt"
	"strings"

	"github.com/leengari/sheetsql/internal/domain/data"
	"github.com/leengari/sheetsql/internal/domain/schema"
)

// FromGrid builds a table from a fetched grid. The first row is the header;
// blank header cells are dropped along with their column, short rows are
// padded with "" and whole numbers are normalized to int64.
func FromGrid(name string, grid [][]interface{}) (*schema.Table, error) {
	if len(grid) == 0 {
		return schema.NewTable(name, nil), nil
	}

	type col struct {
		name string
		pos  int
	}
	var cols []col
	seen := make(map[string]bool)
	for i, h := range grid[0] {
		header := strings.TrimSpace(data.Stringify(h))
		if header == "" {
			continue
		}
		if seen[header] {
			return nil, fmt.Errorf("sheet %q has duplicate header %q", name, header)
		}
		seen[header] = true
		cols = append(cols, col{name: header, pos: i})
	}

	columns := make([]string, len(cols))
	for i, c := range cols {
		columns[i] = c.name
	}
	table := schema.NewTable(name, columns)

	for _, cells := range grid[1:] {
		row := data.NewRow(make(map[string]interface{}, len(cols)))
		for _, c := range cols {
			var v interface{} = ""
			if c.pos < len(cells) && cells[c.pos] != nil {
				v = data.Normalize(cells[c.pos])
			}
			row.Set(c.name, v)
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// ToGrid renders a table as a header row followed by one string row per
// record. nil cells become "".
func ToGrid(table *schema.Table) [][]string {
	grid := make([][]string, 0, table.Len()+1)
	header := make([]string, len(table.Columns))
	copy(header, table.Columns)
	grid = append(grid, header)

	for _, r := range table.Rows {
		row := make([]string, len(table.Columns))
		for i, c := range table.Columns {
			row[i] = data.Stringify(r.Data[c])
		}
		grid = append(grid, row)
	}
	return grid
}
