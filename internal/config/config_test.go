package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leengari/sheetsql/internal/dispatch"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sheetsql.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, dispatch.ModeTabular, cfg.Mode())
	assert.Equal(t, "RAW", cfg.Sheets.ValueInputOption)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.False(t, cfg.HasRelational())
	assert.False(t, cfg.HasGenerator())
	assert.Equal(t, time.Minute, cfg.Generator.Timeout)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
source: both
log:
  level: debug
relational:
  driver: sqlite3
  dsn: file:test.db
local:
  dir: ./sheets
  tables: [employees, "Sales 2024"]
server:
  addr: 127.0.0.1:9000
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, dispatch.ModeBoth, cfg.Mode())
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, "sqlite3", cfg.Relational.Driver)
	assert.True(t, cfg.HasRelational())
	assert.Equal(t, []string{"employees", "Sales 2024"}, cfg.Local.Tables)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SHEETSQL_SOURCE", "Google Sheets")
	t.Setenv("SHEETSQL_SPREADSHEET_ID", "sheet-id")
	t.Setenv("GSHEET_SERVICE_ACCOUNT_FILE", "/etc/sa.json")
	t.Setenv("SHEETSQL_WORKSHEETS", "employees, orders,")
	t.Setenv("SHEETSQL_WRITES_PER_SECOND", "0.5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load(writeConfig(t, "source: relational\n"))
	require.NoError(t, err)
	assert.Equal(t, dispatch.ModeTabular, cfg.Mode())
	assert.Equal(t, "/etc/sa.json", cfg.Sheets.CredentialsFile)
	assert.Equal(t, []string{"employees", "orders"}, cfg.Sheets.Worksheets)
	assert.Equal(t, 0.5, cfg.Sheets.WritesPerSecond)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
	}{
		{name: "bad yaml", body: "source: [unterminated"},
		{name: "bad source", body: "source: excel"},
		{name: "bad driver", body: "relational:\n  driver: postgres"},
		{name: "bad value input", body: "sheets:\n  value_input_option: FORMULA"},
		{name: "spreadsheet without credentials", body: "sheets:\n  spreadsheet_id: abc"},
		{name: "negative rate", body: "sheets:\n  writes_per_second: -1"},
		{name: "both sheet stores", body: "sheets:\n  spreadsheet_id: abc\n  credentials_file: sa.json\nlocal:\n  dir: ./sheets"},
		{name: "negative retries", body: "generator:\n  max_retries: -1"},
		{name: "bad rate env", body: "", env: map[string]string{"SHEETSQL_WRITES_PER_SECOND": "fast"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadGenerator(t *testing.T) {
	path := writeConfig(t, `
generator:
  command: ./ask-model
  args: [--model, small]
  timeout: 30s
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.HasGenerator())
	assert.Equal(t, []string{"--model", "small"}, cfg.Generator.Args)
	assert.Equal(t, 30*time.Second, cfg.Generator.Timeout)
	assert.Equal(t, 2, cfg.Generator.MaxRetries)

	t.Setenv("SHEETSQL_GENERATOR_COMMAND", "/usr/local/bin/llm-sql")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/usr/local/bin/llm-sql", cfg.Generator.Command)
}
