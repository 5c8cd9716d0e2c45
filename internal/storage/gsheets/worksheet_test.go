package gsheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/leengari/sheetsql/internal/storage/writeback"
	"github.com/leengari/sheetsql/internal/testutil"
)

const spreadsheetID = "sheet-id"

// fakeSheetsAPI serves the handful of Sheets v4 endpoints the client uses
type fakeSheetsAPI struct {
	mu     sync.Mutex
	order  []string
	tabs   map[string][][]interface{}
	calls   []string
	inputs  []string
	renders []string
}

func newFakeSheetsAPI() *fakeSheetsAPI {
	return &fakeSheetsAPI{tabs: make(map[string][][]interface{})}
}

func (f *fakeSheetsAPI) addTab(title string, grid ...[]interface{}) {
	f.order = append(f.order, title)
	f.tabs[title] = grid
}

func (f *fakeSheetsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	prefix := "/v4/spreadsheets/" + spreadsheetID
	if !strings.HasPrefix(r.URL.Path, prefix) {
		http.NotFound(w, r)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, prefix)

	if rest == "" && r.Method == http.MethodGet {
		f.calls = append(f.calls, "list")
		var sheets []map[string]interface{}
		for _, title := range f.order {
			sheets = append(sheets, map[string]interface{}{"properties": map[string]interface{}{"title": title}})
		}
		writeJSON(w, map[string]interface{}{"sheets": sheets})
		return
	}

	rng, ok := strings.CutPrefix(rest, "/values/")
	if !ok {
		http.NotFound(w, r)
		return
	}
	rng, clear := strings.CutSuffix(rng, ":clear")
	title := unquoteTitle(strings.TrimSuffix(rng, "!A1"))
	if _, exists := f.tabs[title]; !exists {
		w.WriteHeader(http.StatusBadRequest)
		writeJSON(w, map[string]interface{}{"error": map[string]interface{}{"code": 400, "message": "Unable to parse range: " + rng}})
		return
	}

	switch {
	case r.Method == http.MethodPost && clear:
		f.calls = append(f.calls, "clear "+title)
		f.tabs[title] = nil
		writeJSON(w, map[string]interface{}{"spreadsheetId": spreadsheetID})
	case r.Method == http.MethodGet:
		f.calls = append(f.calls, "get "+title)
		q := r.URL.Query()
		f.renders = append(f.renders, q.Get("valueRenderOption")+" "+q.Get("dateTimeRenderOption"))
		writeJSON(w, map[string]interface{}{"range": rng, "majorDimension": "ROWS", "values": f.tabs[title]})
	case r.Method == http.MethodPut:
		f.calls = append(f.calls, "update "+title)
		f.inputs = append(f.inputs, r.URL.Query().Get("valueInputOption"))
		var body struct {
			Values [][]interface{} `json:"values"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.tabs[title] = body.Values
		cells := 0
		for _, row := range body.Values {
			cells += len(row)
		}
		writeJSON(w, map[string]interface{}{"updatedCells": cells})
	default:
		http.Error(w, "unexpected call", http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func unquoteTitle(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		s = strings.ReplaceAll(s[1:len(s)-1], "''", "'")
	}
	return s
}

func newTestClient(t *testing.T, api *fakeSheetsAPI, opts Options) *Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	opts.SpreadsheetID = spreadsheetID
	opts.ClientOptions = append(opts.ClientOptions,
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	client, err := New(context.Background(), opts, nil)
	require.NoError(t, err)
	return client
}

func TestWorksheets(t *testing.T) {
	api := newFakeSheetsAPI()
	api.addTab("Employees")
	api.addTab("Sales 2024")

	client := newTestClient(t, api, Options{})
	titles, err := client.Worksheets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Employees", "Sales 2024"}, titles)
}

func TestFetchReturnsTypedCells(t *testing.T) {
	api := newFakeSheetsAPI()
	api.addTab("Employees",
		[]interface{}{"id", "name", "active"},
		[]interface{}{1, "Alice", true},
	)

	ws := newTestClient(t, api, Options{}).Worksheet("Employees")
	grid, err := ws.Fetch(context.Background())
	require.NoError(t, err)

	require.Len(t, grid, 2)
	assert.Equal(t, []interface{}{"id", "name", "active"}, grid[0])
	assert.Equal(t, []interface{}{float64(1), "Alice", true}, grid[1])
}

func TestFetchKeepsDatesAsDisplayedText(t *testing.T) {
	api := newFakeSheetsAPI()
	api.addTab("Shifts",
		[]interface{}{"day", "hours"},
		[]interface{}{"2024-01-01", 8},
	)

	ws := newTestClient(t, api, Options{}).Worksheet("Shifts")
	grid, err := ws.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"UNFORMATTED_VALUE FORMATTED_STRING"}, api.renders)
	assert.Equal(t, []interface{}{"2024-01-01", float64(8)}, grid[1])
}

func TestPushAndLoadThroughAPI(t *testing.T) {
	api := newFakeSheetsAPI()
	api.addTab("Bob's Sheet", []interface{}{"old"})

	ws := newTestClient(t, api, Options{}).Worksheet("Bob's Sheet")
	syncer := writeback.New(nil)
	table := testutil.CreateUsersTable()

	require.NoError(t, syncer.Push(context.Background(), ws, table))
	assert.Equal(t, []string{"clear Bob's Sheet", "update Bob's Sheet"}, api.calls)
	assert.Equal(t, []string{ValueInputRaw}, api.inputs)

	back, err := syncer.Load(context.Background(), ws)
	require.NoError(t, err)
	assert.Equal(t, "Bob's Sheet", back.Name)
	assert.Equal(t, table.Columns, back.Columns)
	assert.Equal(t, testutil.Records(table), testutil.Records(back))
}

func TestUserEnteredInput(t *testing.T) {
	api := newFakeSheetsAPI()
	api.addTab("t")

	ws := newTestClient(t, api, Options{ValueInputOption: "user_entered"}).Worksheet("t")
	require.NoError(t, ws.Update(context.Background(), [][]string{{"a"}, {"1"}}))
	assert.Equal(t, []string{ValueInputUserEntered}, api.inputs)
}

func TestAPIErrorSurfaces(t *testing.T) {
	api := newFakeSheetsAPI()

	ws := newTestClient(t, api, Options{}).Worksheet("missing")
	_, err := ws.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `read worksheet "missing"`)
	assert.Contains(t, err.Error(), "Unable to parse range")
}

func TestWriteLimiterHonoursContext(t *testing.T) {
	api := newFakeSheetsAPI()
	api.addTab("t")

	ws := newTestClient(t, api, Options{WritesPerSecond: 0.001, Burst: 1}).Worksheet("t")
	require.NoError(t, ws.Clear(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := ws.Clear(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write throttled")
	assert.Equal(t, []string{"clear t"}, api.calls)
}

func TestNewValidatesOptions(t *testing.T) {
	_, err := New(context.Background(), Options{}, nil)
	require.Error(t, err)

	_, err = New(context.Background(), Options{SpreadsheetID: "x", ValueInputOption: "FORMULA"}, nil)
	require.Error(t, err)
}

func TestSheetRange(t *testing.T) {
	assert.Equal(t, "'Employees'", sheetRange("Employees"))
	assert.Equal(t, "'Bob''s Sheet'", sheetRange("Bob's Sheet"))
}
