package data

import (
	"encoding/json"
)

// Row represents a single table row
// Key = column name, Value = cell value (string, int64, float64, bool or nil)
type Row struct {
	Data map[string]interface{}
}

// NewRow creates a new Row with the given data
func NewRow(data map[string]interface{}) Row {
	if data == nil {
		data = make(map[string]interface{})
	}
	return Row{Data: data}
}

// Copy creates a copy of the row to prevent mutation
func (r Row) Copy() Row {
	copy := make(map[string]interface{}, len(r.Data))
	for k, v := range r.Data {
		copy[k] = v
	}
	return Row{Data: copy}
}

// Get returns the value stored under column and whether the column is present
func (r Row) Get(column string) (interface{}, bool) {
	v, ok := r.Data[column]
	return v, ok
}

// Set stores value under column
func (r Row) Set(column string, value interface{}) {
	r.Data[column] = value
}

// UnmarshalJSON implements json.Unmarshaler interface
// This allows Row to be unmarshaled from JSON as a map
func (r *Row) UnmarshalJSON(data []byte) error {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	r.Data = m
	return nil
}

// MarshalJSON implements json.Marshaler interface
// This allows Row to be marshaled to JSON as a map
func (r Row) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Data)
}
