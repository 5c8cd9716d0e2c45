package jsonfile

// BookMeta describes a directory of sheets
type BookMeta struct {
	Name    string   `json:"name"`
	Version int      `json:"version"`
	Sheets  []string `json:"sheets,omitempty"`
}

// SheetMeta describes one sheet directory
type SheetMeta struct {
	Name     string   `json:"name"`
	Columns  []string `json:"columns"`
	RowCount int64    `json:"row_count,omitempty"`
}
