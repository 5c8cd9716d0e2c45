package jsonfile

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// Discover opens every sheet directory under dir. When names is not
// empty only those sheets are opened, and missing ones are created.
func Discover(dir string, names []string, logger *slog.Logger) ([]*Sheet, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sheet directory: %w", err)
	}

	var sheets []*Sheet
	if len(names) > 0 {
		for _, name := range names {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(filepath.Join(path, "meta.json")); err == nil {
				sheets = append(sheets, Open(path, logger))
				continue
			}
			s, err := Create(dir, name, logger)
			if err != nil {
				return nil, fmt.Errorf("failed to create sheet %s: %w", name, err)
			}
			sheets = append(sheets, s)
		}
	} else {
		// Read all entries in the directory
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet directory: %w", err)
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if _, err := os.Stat(filepath.Join(path, "meta.json")); err != nil {
				continue
			}
			sheets = append(sheets, Open(path, logger))
		}
	}

	if err := writeBookMeta(dir, sheets); err != nil {
		return nil, err
	}

	logger.Info("local sheets discovered",
		slog.String("path", dir),
		slog.Int("sheet_count", len(sheets)),
	)
	return sheets, nil
}

// writeBookMeta records the sheet list in dir/meta.json
func writeBookMeta(dir string, sheets []*Sheet) error {
	names := make([]string, 0, len(sheets))
	for _, s := range sheets {
		names = append(names, s.Name())
	}
	sort.Strings(names)

	meta := BookMeta{
		Name:    filepath.Base(dir),
		Version: 1,
		Sheets:  names,
	}
	metaBytes, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal book meta: %w", err)
	}
	if err := writeAtomic(filepath.Join(dir, "meta.json"), metaBytes); err != nil {
		return fmt.Errorf("failed to write book meta: %w", err)
	}
	return nil
}
