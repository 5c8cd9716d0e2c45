// Package gsheets exposes Google Sheets worksheets as storage handles.
package gsheets

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	// ValueInputRaw stores written text as-is
	ValueInputRaw = "RAW"
	// ValueInputUserEntered parses written text as if typed into the UI
	ValueInputUserEntered = "USER_ENTERED"
)

// Options configures a Client
type Options struct {
	CredentialsFile  string  // service account key file
	SpreadsheetID    string  // target spreadsheet
	ValueInputOption string  // RAW (default) or USER_ENTERED
	WritesPerSecond  float64 // <= 0 disables write throttling
	Burst            int

	// ClientOptions are appended to the API client options
	ClientOptions []option.ClientOption
}

// Client talks to one spreadsheet
type Client struct {
	svc           *sheets.Service
	spreadsheetID string
	valueInput    string
	limiter       *rate.Limiter
	logger        *slog.Logger
}

// New creates a client for opts.SpreadsheetID
func New(ctx context.Context, opts Options, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.SpreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}

	valueInput := strings.ToUpper(opts.ValueInputOption)
	switch valueInput {
	case "":
		valueInput = ValueInputRaw
	case ValueInputRaw, ValueInputUserEntered:
	default:
		return nil, fmt.Errorf("invalid value input option %q", opts.ValueInputOption)
	}

	var clientOpts []option.ClientOption
	if opts.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithAuthCredentialsFile(option.ServiceAccount, opts.CredentialsFile))
	}
	clientOpts = append(clientOpts, opts.ClientOptions...)

	svc, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}

	limit := rate.Inf
	if opts.WritesPerSecond > 0 {
		limit = rate.Limit(opts.WritesPerSecond)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		svc:           svc,
		spreadsheetID: opts.SpreadsheetID,
		valueInput:    valueInput,
		limiter:       rate.NewLimiter(limit, burst),
		logger:        logger,
	}, nil
}

// Worksheets lists the worksheet titles in sheet order
func (c *Client) Worksheets(ctx context.Context) ([]string, error) {
	resp, err := c.svc.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list worksheets of %s: %w", c.spreadsheetID, err)
	}

	titles := make([]string, 0, len(resp.Sheets))
	for _, s := range resp.Sheets {
		if s.Properties != nil {
			titles = append(titles, s.Properties.Title)
		}
	}
	return titles, nil
}

// Worksheet returns a handle for the worksheet titled title
func (c *Client) Worksheet(title string) *Worksheet {
	return &Worksheet{client: c, title: title}
}

// wait blocks until the write limiter admits one call
func (c *Client) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("write throttled: %w", err)
	}
	return nil
}

// sheetRange quotes a worksheet title for A1 notation
func sheetRange(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}
