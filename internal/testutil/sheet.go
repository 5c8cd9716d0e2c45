package testutil

import (
	"context"
	"fmt"
	"sync"
)

// FakeSheet is an in-memory external sheet. It records clears and updates
// and can be told to fail either call.
type FakeSheet struct {
	mu sync.Mutex

	SheetName string
	Grid      [][]interface{}

	ClearErr  error
	UpdateErr error
	FetchErr  error

	Clears  int
	Updates int
}

// NewFakeSheet creates a sheet whose first grid row is the header
func NewFakeSheet(name string, grid ...[]interface{}) *FakeSheet {
	return &FakeSheet{SheetName: name, Grid: grid}
}

func (f *FakeSheet) Name() string {
	return f.SheetName
}

func (f *FakeSheet) Fetch(ctx context.Context) ([][]interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FetchErr != nil {
		return nil, f.FetchErr
	}
	out := make([][]interface{}, len(f.Grid))
	for i, r := range f.Grid {
		out[i] = append([]interface{}(nil), r...)
	}
	return out, nil
}

func (f *FakeSheet) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Clears++
	if f.ClearErr != nil {
		return f.ClearErr
	}
	f.Grid = nil
	return nil
}

func (f *FakeSheet) Update(ctx context.Context, grid [][]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Updates++
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	f.Grid = make([][]interface{}, len(grid))
	for i, r := range grid {
		row := make([]interface{}, len(r))
		for j, v := range r {
			row[j] = v
		}
		f.Grid[i] = row
	}
	return nil
}

// Strings returns the grid with every cell formatted by %v
func (f *FakeSheet) Strings() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]string, len(f.Grid))
	for i, r := range f.Grid {
		row := make([]string, len(r))
		for j, v := range r {
			row[j] = fmt.Sprint(v)
		}
		out[i] = row
	}
	return out
}
