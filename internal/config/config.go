// Package config loads session settings from a YAML file and the
// environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/leengari/sheetsql/internal/dispatch"
	"github.com/leengari/sheetsql/internal/relational"
	"github.com/leengari/sheetsql/internal/storage/gsheets"
)

// Config is the full set of session settings
type Config struct {
	Source     string           `yaml:"source"`
	Log        LogConfig        `yaml:"log"`
	Relational RelationalConfig `yaml:"relational"`
	Sheets     SheetsConfig     `yaml:"sheets"`
	Local      LocalConfig      `yaml:"local"`
	Server     ServerConfig     `yaml:"server"`
	Generator  GeneratorConfig  `yaml:"generator"`
}

// LogConfig controls the console level and the optional Seq sink
type LogConfig struct {
	Level  string `yaml:"level"`
	SeqURL string `yaml:"seq_url,omitempty"`
}

// RelationalConfig names the database to connect to. An empty DSN means
// no database.
type RelationalConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn,omitempty"`
}

// SheetsConfig selects a Google spreadsheet and its worksheets. An empty
// SpreadsheetID disables Google Sheets.
type SheetsConfig struct {
	CredentialsFile  string   `yaml:"credentials_file,omitempty"`
	SpreadsheetID    string   `yaml:"spreadsheet_id,omitempty"`
	Worksheets       []string `yaml:"worksheets,omitempty"` // empty means every worksheet
	ValueInputOption string   `yaml:"value_input_option"`
	WritesPerSecond  float64  `yaml:"writes_per_second"`
	Refresh          string   `yaml:"refresh,omitempty"` // cron spec for scheduled reload
}

// LocalConfig points at a directory of JSON-backed sheets. An empty Dir
// disables local sheets.
type LocalConfig struct {
	Dir    string   `yaml:"dir,omitempty"`
	Tables []string `yaml:"tables,omitempty"` // created when missing; empty means discover
}

// ServerConfig configures the HTTP server
type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins,omitempty"`
}

// GeneratorConfig names the external program that turns questions into
// SQL. An empty Command disables the ask command.
type GeneratorConfig struct {
	Command      string        `yaml:"command,omitempty"`
	Args         []string      `yaml:"args,omitempty"`
	SystemPrompt string        `yaml:"system_prompt,omitempty"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   int           `yaml:"max_retries"`
}

// Default returns the settings used when nothing is configured
func Default() *Config {
	return &Config{
		Source: string(dispatch.ModeTabular),
		Log:    LogConfig{Level: "info"},
		Relational: RelationalConfig{
			Driver: relational.DriverMySQL,
		},
		Sheets: SheetsConfig{
			ValueInputOption: gsheets.ValueInputRaw,
			WritesPerSecond:  1,
		},
		Server: ServerConfig{
			Addr:        ":8080",
			CORSOrigins: []string{"*"},
		},
		Generator: GeneratorConfig{
			Timeout:    time.Minute,
			MaxRetries: 2,
		},
	}
}

// Load reads path over the defaults, then applies environment overrides
// and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays every set environment variable onto cfg
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"SHEETSQL_SOURCE":             &c.Source,
		"SHEETSQL_RELATIONAL_DRIVER":  &c.Relational.Driver,
		"SHEETSQL_RELATIONAL_DSN":     &c.Relational.DSN,
		"GSHEET_SERVICE_ACCOUNT_FILE": &c.Sheets.CredentialsFile,
		"SHEETSQL_SPREADSHEET_ID":     &c.Sheets.SpreadsheetID,
		"SHEETSQL_LOCAL_DIR":          &c.Local.Dir,
		"LOG_LEVEL":                   &c.Log.Level,
		"SEQ_URL":                     &c.Log.SeqURL,
		"LISTEN_ADDR":                 &c.Server.Addr,
		"SHEETSQL_GENERATOR_COMMAND":  &c.Generator.Command,
	}
	for key, dst := range str {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup("SHEETSQL_WORKSHEETS"); ok && v != "" {
		c.Sheets.Worksheets = splitList(v)
	}
	if v, ok := lookup("CORS_ALLOWED_ORIGINS"); ok && v != "" {
		c.Server.CORSOrigins = splitList(v)
	}
	if v, ok := lookup("SHEETSQL_WRITES_PER_SECOND"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("SHEETSQL_WRITES_PER_SECOND: %w", err)
		}
		c.Sheets.WritesPerSecond = f
	}
	return nil
}

// Validate checks that the configuration is internally consistent
func (c *Config) Validate() error {
	if _, err := dispatch.ParseMode(c.Source); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	switch c.Relational.Driver {
	case relational.DriverMySQL, relational.DriverSQLite:
	default:
		return fmt.Errorf("relational.driver: unsupported driver %q", c.Relational.Driver)
	}
	switch c.Sheets.ValueInputOption {
	case gsheets.ValueInputRaw, gsheets.ValueInputUserEntered:
	default:
		return fmt.Errorf("sheets.value_input_option: must be %s or %s, got %q",
			gsheets.ValueInputRaw, gsheets.ValueInputUserEntered, c.Sheets.ValueInputOption)
	}
	if c.Sheets.SpreadsheetID != "" && c.Sheets.CredentialsFile == "" {
		return fmt.Errorf("sheets.credentials_file is required when sheets.spreadsheet_id is set")
	}
	if c.Sheets.WritesPerSecond < 0 {
		return fmt.Errorf("sheets.writes_per_second must not be negative")
	}
	if c.Generator.Timeout < 0 || c.Generator.MaxRetries < 0 {
		return fmt.Errorf("generator.timeout and generator.max_retries must not be negative")
	}
	if c.Sheets.SpreadsheetID != "" && c.Local.Dir != "" {
		return fmt.Errorf("configure either sheets.spreadsheet_id or local.dir, not both")
	}
	return nil
}

// Mode returns the parsed source mode. Call Validate first.
func (c *Config) Mode() dispatch.Mode {
	m, _ := dispatch.ParseMode(c.Source)
	return m
}

// SlogLevel maps the log level string to an slog.Level
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// HasRelational reports whether a database is configured
func (c *Config) HasRelational() bool {
	return c.Relational.DSN != ""
}

// HasGenerator reports whether a SQL generator is configured
func (c *Config) HasGenerator() bool {
	return c.Generator.Command != ""
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
