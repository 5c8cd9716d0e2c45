package gsheets

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/api/sheets/v4"

	"github.com/leengari/sheetsql/internal/storage"
)

var _ storage.Handle = (*Worksheet)(nil)

// Worksheet is one tab of a spreadsheet
type Worksheet struct {
	client *Client
	title  string
}

func (w *Worksheet) Name() string {
	return w.title
}

// Fetch reads every populated cell. Numbers and booleans come back typed;
// dates and times come back as their displayed text so a write-back keeps them.
func (w *Worksheet) Fetch(ctx context.Context) ([][]interface{}, error) {
	resp, err := w.client.svc.Spreadsheets.Values.
		Get(w.client.spreadsheetID, sheetRange(w.title)).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("read worksheet %q: %w", w.title, err)
	}
	return resp.Values, nil
}

func (w *Worksheet) Clear(ctx context.Context) error {
	if err := w.client.wait(ctx); err != nil {
		return err
	}
	_, err := w.client.svc.Spreadsheets.Values.
		Clear(w.client.spreadsheetID, sheetRange(w.title), &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("clear worksheet %q: %w", w.title, err)
	}
	return nil
}

// Update writes grid starting at A1
func (w *Worksheet) Update(ctx context.Context, grid [][]string) error {
	if err := w.client.wait(ctx); err != nil {
		return err
	}

	rng := sheetRange(w.title) + "!A1"
	values := make([][]interface{}, len(grid))
	for i, row := range grid {
		values[i] = make([]interface{}, len(row))
		for j, v := range row {
			values[i][j] = v
		}
	}

	resp, err := w.client.svc.Spreadsheets.Values.
		Update(w.client.spreadsheetID, rng, &sheets.ValueRange{Range: rng, Values: values}).
		ValueInputOption(w.client.valueInput).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("write worksheet %q: %w", w.title, err)
	}

	w.client.logger.Debug("worksheet updated",
		slog.String("worksheet", w.title),
		slog.Int64("cells", resp.UpdatedCells),
	)
	return nil
}
