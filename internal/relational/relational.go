// Package relational executes statements against a SQL database through
// database/sql. MySQL and SQLite drivers are registered.
package relational

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"github.com/leengari/sheetsql/internal/domain/schema"
	"github.com/leengari/sheetsql/internal/parser"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"
)

// DB is a relational database handle
type DB struct {
	db     *sql.DB
	driver string
	logger *slog.Logger
}

// Open connects to the database identified by driver and dsn and
// verifies the connection.
func Open(driver, dsn string, logger *slog.Logger) (*DB, error) {
	switch driver {
	case DriverMySQL, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported relational driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection works
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == DriverSQLite {
		// SQLite only supports one writer at a time, so limit connections
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	return New(db, driver, logger), nil
}

// New wraps an already open *sql.DB
func New(db *sql.DB, driver string, logger *slog.Logger) *DB {
	if logger == nil {
		logger = slog.Default()
	}
	return &DB{db: db, driver: driver, logger: logger}
}

// Driver returns the driver name the handle was opened with
func (d *DB) Driver() string {
	return d.driver
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

// Execute runs one statement. A statement starting with SELECT returns its
// result set; anything else runs in a transaction and returns the
// affected_rows table. Failures roll back and carry the driver message.
func (d *DB) Execute(ctx context.Context, statement string) (*schema.Table, error) {
	q := parser.Normalize(statement)

	if parser.IsSelect(q) {
		rows, err := d.db.QueryContext(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("relational query failed: %w", err)
		}
		defer rows.Close()

		table, err := schema.FromRows("result", rows)
		if err != nil {
			return nil, fmt.Errorf("relational query failed: %w", err)
		}
		return table, nil
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	res, err := tx.ExecContext(ctx, q)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			d.logger.Error("rollback failed", slog.Any("error", rbErr))
		}
		return nil, fmt.Errorf("relational statement failed: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to read affected rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	d.logger.Debug("relational statement committed",
		slog.String("driver", d.driver),
		slog.Int64("affected", affected),
	)
	return schema.AffectedRows(affected), nil
}

// Ping checks that the database is reachable
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func quoteIdent(driver, name string) string {
	if driver == DriverMySQL {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
