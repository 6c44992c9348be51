// Package normalize turns raw tourism backend payloads into view-models.
//
// Every function here is total: a missing, null, mistyped or malformed
// payload yields a fully defaulted value, never an error or a panic.
// Payloads are walked with gjson rather than decoded into maps so that
// object key order, which drives chart ordering, is preserved.
package normalize

import (
	"math"
	"strings"

	"github.com/spf13/cast"
	"github.com/tidwall/gjson"
)

// root parses raw, returning an empty result for invalid JSON.
func root(raw []byte) gjson.Result {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return gjson.Result{}
	}
	return gjson.ParseBytes(raw)
}

// field returns the first non-null member of obj among keys.
// Keys are matched literally so state names with spaces or commas are safe.
func field(obj gjson.Result, keys ...string) gjson.Result {
	if !obj.IsObject() {
		return gjson.Result{}
	}
	for _, k := range keys {
		var found gjson.Result
		obj.ForEach(func(key, value gjson.Result) bool {
			if key.String() == k {
				found = value
				return false
			}
			return true
		})
		if found.Exists() && found.Type != gjson.Null {
			return found
		}
	}
	return gjson.Result{}
}

// fieldFold is field with a case-insensitive fallback.
func fieldFold(obj gjson.Result, key string) gjson.Result {
	if v := field(obj, key); v.Exists() {
		return v
	}
	var found gjson.Result
	obj.ForEach(func(k, value gjson.Result) bool {
		if strings.EqualFold(strings.TrimSpace(k.String()), strings.TrimSpace(key)) {
			found = value
			return false
		}
		return true
	})
	if found.Type == gjson.Null {
		return gjson.Result{}
	}
	return found
}

// isNaNText reports the pandas-style missing marker.
func isNaNText(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "nan")
}

// number coerces r to a finite float. Numeric strings are accepted.
func number(r gjson.Result) (float64, bool) {
	switch r.Type {
	case gjson.Number:
		if math.IsNaN(r.Num) || math.IsInf(r.Num, 0) {
			return 0, false
		}
		return r.Num, true
	case gjson.String:
		s := strings.TrimSpace(r.Str)
		if s == "" || isNaNText(s) {
			return 0, false
		}
		f, err := cast.ToFloat64E(s)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func numberOr(r gjson.Result, def float64) float64 {
	if f, ok := number(r); ok {
		return f
	}
	return def
}

func optNumber(r gjson.Result) *float64 {
	if f, ok := number(r); ok {
		return &f
	}
	return nil
}

// count coerces r to a non-negative integer count.
func count(r gjson.Result) int64 {
	f, ok := number(r)
	if !ok || f < 0 {
		return 0
	}
	return int64(f)
}

// text renders scalars as trimmed strings and arrays of scalars as a
// comma separated list. Missing markers become "".
func text(r gjson.Result) string {
	switch r.Type {
	case gjson.String:
		s := strings.TrimSpace(r.Str)
		if isNaNText(s) {
			return ""
		}
		return s
	case gjson.Number:
		return cast.ToString(r.Num)
	case gjson.True, gjson.False:
		return cast.ToString(r.Bool())
	case gjson.JSON:
		if !r.IsArray() {
			return ""
		}
		var parts []string
		for _, item := range r.Array() {
			if s := text(item); s != "" && !item.IsArray() {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

func textOr(r gjson.Result, def string) string {
	if s := text(r); s != "" {
		return s
	}
	return def
}

// stringList collects the non-empty scalar members of an array.
func stringList(r gjson.Result) []string {
	out := []string{}
	if !r.IsArray() {
		return out
	}
	for _, item := range r.Array() {
		if item.IsObject() || item.IsArray() {
			continue
		}
		if s := text(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
