package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ToString converts a cell value to its display string. Floats that hold
// whole numbers render without a decimal point so that values imported as
// numbers round-trip cleanly through CSV and change details.
func ToString(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case bool:
		return strconv.FormatBool(v)
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return ToString(float64(v))
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ToFloat converts a cell value to a float64, reporting whether the
// conversion succeeded. Strings are parsed; booleans are not numbers.
func ToFloat(val any) (float64, bool) {
	switch v := val.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case []byte:
		return ToFloat(string(v))
	default:
		return 0, false
	}
}

// ToBool converts a cell value to bool. Numeric 1 and the strings "1" and
// "true" (case-insensitive) are true; everything else is false.
func ToBool(val any) bool {
	switch v := val.(type) {
	case bool:
		return v
	case int, int32, int64:
		f, _ := ToFloat(v)
		return f == 1
	case string:
		return v == "1" || strings.EqualFold(v, "true")
	default:
		return false
	}
}

// InferCell parses a raw text cell (as read from CSV or Excel) into a
// typed value: empty text becomes nil, numbers become float64, "true" and
// "false" become bool, and anything else stays a string.
func InferCell(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return f
	}
	if strings.EqualFold(trimmed, "true") {
		return true
	}
	if strings.EqualFold(trimmed, "false") {
		return false
	}
	return raw
}
