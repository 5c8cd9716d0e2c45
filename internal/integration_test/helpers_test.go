package integration

import (
	"context"
	"testing"

	"github.com/leengari/sheetsql/internal/dispatch"
	"github.com/leengari/sheetsql/internal/engine"
	"github.com/leengari/sheetsql/internal/storage"
	"github.com/leengari/sheetsql/internal/storage/jsonfile"
)

// MockObserver is a test observer that records events
type MockObserver struct {
	Events []engine.Event
}

func (m *MockObserver) OnEvent(event engine.Event) {
	m.Events = append(m.Events, event)
}

var seed = map[string][][]string{
	"users": {
		{"id", "username", "email"},
		{"1", "admin", "admin@example.com"},
		{"2", "guest", "guest@example.com"},
		{"3", "carol", "carol@example.com"},
	},
	"orders": {
		{"id", "user_id", "product", "amount"},
		{"1", "1", "Laptop", "999.99"},
		{"2", "1", "Mouse", "25.5"},
		{"3", "2", "Keyboard", "75"},
	},
	"Q1 Sales": {
		{"region", "total"},
		{"north", "10"},
		{"south", "20"},
	},
}

// setupTestBook writes the seed sheets to a fresh directory
func setupTestBook(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for name, grid := range seed {
		sheet, err := jsonfile.Create(dir, name, nil)
		if err != nil {
			t.Fatalf("failed to create sheet %s: %v", name, err)
		}
		if err := sheet.Update(context.Background(), grid); err != nil {
			t.Fatalf("failed to seed sheet %s: %v", name, err)
		}
	}
	return dir
}

// openBook attaches every sheet under dir to a new engine
func openBook(t *testing.T, dir string, mode dispatch.Mode) *engine.Engine {
	t.Helper()
	sheets, err := jsonfile.Discover(dir, nil, nil)
	if err != nil {
		t.Fatalf("failed to discover sheets: %v", err)
	}
	handles := make([]storage.Handle, len(sheets))
	for i, s := range sheets {
		handles[i] = s
	}

	eng := engine.New(engine.Options{Mode: mode})
	if err := eng.AttachAll(context.Background(), handles); err != nil {
		t.Fatalf("failed to attach sheets: %v", err)
	}
	return eng
}

func mustExecute(t *testing.T, eng *engine.Engine, sql string) *dispatch.Outcome {
	t.Helper()
	out, err := eng.Execute(context.Background(), sql)
	if err != nil {
		t.Fatalf("%s: %v", sql, err)
	}
	return out
}
