package data

import (
	"fmt"
	"math"
	"strconv"
)

// Stringify returns the string form of a cell value.
// nil becomes the empty string; floats use the shortest decimal that
// round-trips, so 5.0 and 5 both render as "5".
func Stringify(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// Normalize converts decoded cell values into the scalar set a Row holds.
// Whole floats become int64 so that 1 read back from a sheet or a JSON
// file compares equal to the literal "1".
func Normalize(v interface{}) interface{} {
	switch val := v.(type) {
	case float64:
		if val == math.Trunc(val) && !math.IsInf(val, 0) && math.Abs(val) < 1<<53 {
			return int64(val)
		}
		return val
	case int:
		return int64(val)
	case int32:
		return int64(val)
	case []byte:
		return string(val)
	default:
		return val
	}
}

// TypeName reports a coarse type label for schema descriptions.
func TypeName(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case int, int32, int64:
		return "int64"
	case float32, float64:
		return "float64"
	case bool:
		return "bool"
	default:
		return "string"
	}
}
