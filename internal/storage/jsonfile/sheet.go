// Package jsonfile stores sheets on local disk, one directory per sheet
// holding meta.json (column order) and data.json (row objects).
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/leengari/sheetsql/internal/storage"
)

var _ storage.Handle = (*Sheet)(nil)

// Sheet is a local sheet directory
type Sheet struct {
	name   string
	path   string
	logger *slog.Logger
}

// Open returns a handle for the sheet stored in path. The sheet name is
// read from meta.json when present, otherwise the directory name is used.
func Open(path string, logger *slog.Logger) *Sheet {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Sheet{name: filepath.Base(path), path: path, logger: logger}
	if meta, err := s.readMeta(); err == nil && meta.Name != "" {
		s.name = meta.Name
	}
	return s
}

// Create makes a new empty sheet directory under baseDir
func Create(baseDir, name string, logger *slog.Logger) (*Sheet, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	path := filepath.Join(baseDir, name)

	// Check if exists
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil, fmt.Errorf("sheet '%s' already exists", name)
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sheet directory: %w", err)
	}

	s := Open(path, logger)
	s.name = name
	if err := s.save(SheetMeta{Name: name, Columns: []string{}}, []map[string]interface{}{}); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Sheet) Name() string {
	return s.name
}

// Path returns the sheet directory
func (s *Sheet) Path() string {
	return s.path
}

// Fetch returns the header row followed by each stored row in column order
func (s *Sheet) Fetch(ctx context.Context) ([][]interface{}, error) {
	meta, err := s.readMeta()
	if err != nil {
		return nil, err
	}

	rows := []map[string]interface{}{}
	dataPath := filepath.Join(s.path, "data.json")
	if _, err := os.Stat(dataPath); err == nil {
		dataBytes, err := os.ReadFile(dataPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read data for sheet %s: %w", s.name, err)
		}
		if err := json.Unmarshal(dataBytes, &rows); err != nil {
			return nil, fmt.Errorf("failed to parse data for sheet %s: %w", s.name, err)
		}
	}

	if len(meta.Columns) == 0 {
		return nil, nil
	}

	grid := make([][]interface{}, 0, len(rows)+1)
	header := make([]interface{}, len(meta.Columns))
	for i, c := range meta.Columns {
		header[i] = c
	}
	grid = append(grid, header)

	for _, r := range rows {
		cells := make([]interface{}, len(meta.Columns))
		for i, c := range meta.Columns {
			cells[i] = r[c]
		}
		grid = append(grid, cells)
	}

	s.logger.Debug("sheet read",
		slog.String("sheet", s.name),
		slog.Int("rows", len(rows)),
	)
	return grid, nil
}

func (s *Sheet) Clear(ctx context.Context) error {
	return s.save(SheetMeta{Name: s.name, Columns: []string{}}, []map[string]interface{}{})
}

// Update replaces the stored sheet with grid. The first row is the header.
func (s *Sheet) Update(ctx context.Context, grid [][]string) error {
	if len(grid) == 0 {
		return s.Clear(ctx)
	}

	columns := append([]string{}, grid[0]...)
	rows := make([]map[string]interface{}, 0, len(grid)-1)
	for _, cells := range grid[1:] {
		r := make(map[string]interface{}, len(columns))
		for i, c := range columns {
			if i < len(cells) {
				r[c] = cells[i]
			} else {
				r[c] = ""
			}
		}
		rows = append(rows, r)
	}

	return s.save(SheetMeta{Name: s.name, Columns: columns, RowCount: int64(len(rows))}, rows)
}

func (s *Sheet) readMeta() (SheetMeta, error) {
	var meta SheetMeta
	metaBytes, err := os.ReadFile(filepath.Join(s.path, "meta.json"))
	if err != nil {
		return meta, fmt.Errorf("failed to read meta for sheet %s: %w", s.name, err)
	}
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		return meta, fmt.Errorf("failed to parse meta for sheet %s: %w", s.name, err)
	}
	return meta, nil
}

// save persists both meta.json and data.json atomically
func (s *Sheet) save(meta SheetMeta, rows []map[string]interface{}) error {
	metaBytes, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal sheet meta for %s: %w", s.name, err)
	}
	dataBytes, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal rows for %s: %w", s.name, err)
	}

	// Write both files using temp + atomic rename
	files := []struct {
		path string
		data []byte
		name string
	}{
		{filepath.Join(s.path, "meta.json"), metaBytes, "meta.json"},
		{filepath.Join(s.path, "data.json"), dataBytes, "data.json"},
	}

	for _, f := range files {
		if err := writeAtomic(f.path, f.data); err != nil {
			return fmt.Errorf("failed to write %s for sheet %s: %w", f.name, s.name, err)
		}
	}

	s.logger.Info("sheet saved",
		slog.String("sheet", s.name),
		slog.String("path", s.path),
		slog.Int64("row_count", meta.RowCount),
	)
	return nil
}

func writeAtomic(path string, data []byte) error {
	tmpPath := path + ".tmp"

	// Write to temp
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}

	// Atomic replace
	return os.Rename(tmpPath, path)
}

func validName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("sheet name is empty")
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("sheet name %q is not a valid directory name", name)
	}
	return nil
}
