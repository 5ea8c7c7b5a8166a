package parsers

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

func ParseFloat(val string) *float64 {
	val = strings.TrimSpace(val)
	if val == "" {
		return nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return nil
	}
	return &f
}

// Float reads a JSON number or numeric string. Missing, null and
// non-numeric values yield nil.
func Float(v gjson.Result) *float64 {
	switch v.Type {
	case gjson.Number:
		f := v.Float()
		return &f
	case gjson.String:
		return ParseFloat(v.String())
	default:
		return nil
	}
}

// PositiveInt reads v as a positive integer, flooring fractional values.
// Non-finite, non-numeric and non-positive values report false so callers
// can fall through to the next source.
func PositiveInt(v gjson.Result) (int, bool) {
	f := Float(v)
	if f == nil || math.IsNaN(*f) || math.IsInf(*f, 0) {
		return 0, false
	}
	n := math.Floor(*f)
	if n < 1 || n > math.MaxInt32 {
		return 0, false
	}
	return int(n), true
}

// FirstPositiveInt returns the first source that holds a positive integer.
func FirstPositiveInt(sources ...gjson.Result) (int, bool) {
	for _, src := range sources {
		if n, ok := PositiveInt(src); ok {
			return n, true
		}
	}
	return 0, false
}

func ParseResetTime(val string) *time.Time {
	val = strings.TrimSpace(val)
	if val == "" {
		return nil
	}

	if ts, err := strconv.ParseFloat(val, 64); err == nil && ts > 1_000_000_000 {
		// Millisecond epochs are common in JS-originated payloads.
		if ts > 1_000_000_000_000 {
			t := time.UnixMilli(int64(ts))
			return &t
		}
		t := time.Unix(int64(ts), 0)
		return &t
	}

	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return &t
	}

	if t, err := time.ParseInLocation("2006-01-02", val, time.Local); err == nil {
		return &t
	}

	if d, err := time.ParseDuration(val); err == nil {
		t := time.Now().Add(d)
		return &t
	}

	return nil
}

func RedactHeaders(headers http.Header, sensitiveKeys ...string) map[string]string {
	sensitive := map[string]bool{
		"authorization": true,
		"x-api-key":     true,
		"cookie":        true,
	}
	for _, k := range sensitiveKeys {
		sensitive[strings.ToLower(k)] = true
	}

	out := make(map[string]string)
	for k, vals := range headers {
		key := strings.ToLower(k)
		val := strings.Join(vals, ", ")
		if sensitive[key] {
			if len(val) > 8 {
				val = val[:4] + "..." + val[len(val)-4:]
			} else {
				val = "****"
			}
		}
		out[k] = val
	}
	return out
}
