package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/leengari/sheetsql/internal/config"
	"github.com/leengari/sheetsql/internal/dispatch"
	"github.com/leengari/sheetsql/internal/engine"
	"github.com/leengari/sheetsql/internal/logging"
	"github.com/leengari/sheetsql/internal/relational"
	"github.com/leengari/sheetsql/internal/sqlgen"
	"github.com/leengari/sheetsql/internal/storage"
	"github.com/leengari/sheetsql/internal/storage/gsheets"
	"github.com/leengari/sheetsql/internal/storage/jsonfile"
)

// session is everything a command needs, opened from config
type session struct {
	cfg     *config.Config
	engine  *engine.Engine
	logger  *slog.Logger
	closers []func()
}

func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// openSession loads config, connects the database and attaches sheets
func openSession(ctx context.Context, opts *RootOptions, logOut io.Writer) (*session, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Source != "" {
		cfg.Source = opts.Source
	}
	if cfg.Mode() == dispatch.ModeRelational && !cfg.HasRelational() {
		return nil, NewExitError(ExitCommandError, "relational source selected but relational.dsn is empty")
	}

	level := cfg.SlogLevel()
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger, closeLog := logging.SetupLogger(logging.Options{
		Level:  level,
		SeqURL: cfg.Log.SeqURL,
		Writer: logOut,
	})
	slog.SetDefault(logger)

	s := &session{cfg: cfg, logger: logger, closers: []func(){closeLog}}
	mode := cfg.Mode()

	engOpts := engine.Options{Mode: mode, Logger: logger}
	if cfg.HasRelational() && mode != dispatch.ModeTabular {
		db, err := relational.Open(cfg.Relational.Driver, cfg.Relational.DSN, logger)
		switch {
		case err == nil:
			engOpts.Relational = db
			s.closers = append(s.closers, func() { _ = db.Close() })
		case mode == dispatch.ModeRelational:
			s.Close()
			return nil, WrapExitError(ExitCommandError, "failed to connect to database", err)
		default:
			logger.Warn("database unavailable, using sheets only", "driver", cfg.Relational.Driver, "error", err)
		}
	}

	s.engine = engine.New(engOpts)
	s.engine.AddObserver(engine.NewLoggingObserver(logger))

	if mode == dispatch.ModeRelational {
		return s, nil
	}

	handles, err := sheetHandles(ctx, cfg, logger)
	if err != nil {
		s.Close()
		return nil, WrapExitError(ExitCommandError, "failed to open sheets", err)
	}
	if err := s.engine.AttachAll(ctx, handles); err != nil {
		s.Close()
		return nil, WrapExitError(ExitCommandError, "failed to load sheets", err)
	}
	logger.Info("session ready", "source", mode, "sheets", len(handles))
	return s, nil
}

// sheetHandles opens the configured Google worksheets or local sheets
func sheetHandles(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]storage.Handle, error) {
	var handles []storage.Handle

	switch {
	case cfg.Sheets.SpreadsheetID != "":
		client, err := gsheets.New(ctx, gsheets.Options{
			CredentialsFile:  cfg.Sheets.CredentialsFile,
			SpreadsheetID:    cfg.Sheets.SpreadsheetID,
			ValueInputOption: cfg.Sheets.ValueInputOption,
			WritesPerSecond:  cfg.Sheets.WritesPerSecond,
		}, logger)
		if err != nil {
			return nil, err
		}
		titles := cfg.Sheets.Worksheets
		if len(titles) == 0 {
			if titles, err = client.Worksheets(ctx); err != nil {
				return nil, err
			}
		}
		for _, title := range titles {
			handles = append(handles, client.Worksheet(title))
		}

	case cfg.Local.Dir != "":
		sheets, err := jsonfile.Discover(cfg.Local.Dir, cfg.Local.Tables, logger)
		if err != nil {
			return nil, err
		}
		for _, s := range sheets {
			handles = append(handles, s)
		}
	}
	return handles, nil
}

// generator builds the configured SQL generator with retries
func (s *session) generator() (sqlgen.Generator, error) {
	if !s.cfg.HasGenerator() {
		return nil, NewExitError(ExitCommandError, "no SQL generator configured (set generator.command or SHEETSQL_GENERATOR_COMMAND)")
	}
	g := s.cfg.Generator
	r := sqlgen.NewRetrying(&sqlgen.Command{
		Path:         g.Command,
		Args:         g.Args,
		SystemPrompt: g.SystemPrompt,
		Timeout:      g.Timeout,
	}, s.logger)
	r.MaxRetries = g.MaxRetries
	return r, nil
}
