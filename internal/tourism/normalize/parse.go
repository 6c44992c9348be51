package normalize

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/i474232898/tourism-dashboard/internal/tourism/view"
)

var (
	attractionNameRe = regexp.MustCompile(`(?i)name['"]?\s*:\s*['"]([^'"}]+)`)
	attractionDescRe = regexp.MustCompile(`(?i)description['"]?\s*:\s*['"]([^'"}]+)`)
	singleQuotedRe   = regexp.MustCompile(`'([^']+)'`)
)

// ParseAttractions parses a top_attractions field given as raw JSON: an
// array, an object, or a string holding one of the loosely quoted forms
// handled by ParseAttractionsText.
func ParseAttractions(value json.RawMessage) view.AttractionList {
	return attractionsOf(root(value))
}

func attractionsOf(r gjson.Result) view.AttractionList {
	switch {
	case r.IsArray():
		return view.AttractionList{Kind: view.ParseStructured, Entries: attractionEntries(r)}
	case r.IsObject():
		return view.AttractionList{Kind: view.ParseStructured, Entries: attractionEntries(wrap(r))}
	case r.Type == gjson.String:
		return ParseAttractionsText(r.Str)
	default:
		return view.AttractionList{Kind: view.ParseEmpty, Entries: []view.AttractionEntry{}}
	}
}

// ParseAttractionsText parses an attractions string that may be JSON,
// CSV-escaped JSON (doubled double quotes) or single-quoted pseudo-JSON.
// When no structure can be recovered it tries to pull a name/description
// pair out with a regex, and otherwise returns an empty list carrying the
// raw text for verbatim display.
func ParseAttractionsText(s string) view.AttractionList {
	empty := view.AttractionList{Kind: view.ParseEmpty, Entries: []view.AttractionEntry{}, Raw: s}

	candidate := strings.TrimSpace(s)
	if candidate == "" || isNaNText(candidate) {
		return empty
	}
	if len(candidate) >= 2 && candidate[0] == '\'' && candidate[len(candidate)-1] == '\'' {
		candidate = candidate[1 : len(candidate)-1]
	}
	candidate = strings.ReplaceAll(candidate, `""`, `"`)

	parsed, ok := parseLoose(candidate)
	if ok {
		switch {
		case parsed.IsArray():
			return view.AttractionList{Kind: view.ParseStructured, Entries: attractionEntries(parsed), Raw: s}
		case parsed.IsObject():
			return view.AttractionList{Kind: view.ParseStructured, Entries: attractionEntries(wrap(parsed)), Raw: s}
		default:
			// Valid JSON scalar: nothing list-like to show.
			return empty
		}
	}

	if m := attractionNameRe.FindStringSubmatch(candidate); m != nil {
		entry := view.AttractionEntry{Name: strings.TrimSpace(m[1])}
		if d := attractionDescRe.FindStringSubmatch(candidate); d != nil {
			entry.Description = strings.TrimSpace(d[1])
		}
		return view.AttractionList{Kind: view.ParseExtracted, Entries: []view.AttractionEntry{entry}, Raw: s}
	}
	return empty
}

// parseLoose accepts strict JSON first, then single-quoted pseudo-JSON.
func parseLoose(s string) (gjson.Result, bool) {
	if gjson.Valid(s) {
		return gjson.Parse(s), true
	}
	if swapped := strings.ReplaceAll(s, "'", `"`); gjson.Valid(swapped) {
		return gjson.Parse(swapped), true
	}
	return gjson.Result{}, false
}

func wrap(obj gjson.Result) gjson.Result {
	return gjson.Parse("[" + obj.Raw + "]")
}

func attractionEntries(arr gjson.Result) []view.AttractionEntry {
	entries := []view.AttractionEntry{}
	for _, item := range arr.Array() {
		var e view.AttractionEntry
		if item.IsObject() {
			e.Name = text(field(item, "name", "title"))
			e.Description = text(field(item, "description", "desc"))
		} else {
			e.Name = text(item)
		}
		if e.Name == "" && e.Description == "" {
			continue
		}
		entries = append(entries, e)
	}
	return entries
}

// ParseArrayLike turns a string such as "['Beach', 'Heritage']" into its
// members. It falls back to regex extraction of single-quoted substrings
// and finally to the raw string as the only member.
func ParseArrayLike(s string) []string {
	trimmed := strings.TrimSpace(s)
	swapped := strings.ReplaceAll(trimmed, "'", `"`)
	if trimmed != "" && gjson.Valid(swapped) {
		r := gjson.Parse(swapped)
		if r.IsArray() {
			return stringList(r)
		}
		if t := text(r); t != "" {
			return []string{t}
		}
	}
	if matches := singleQuotedRe.FindAllStringSubmatch(trimmed, -1); len(matches) > 0 {
		out := make([]string, 0, len(matches))
		for _, m := range matches {
			out = append(out, m[1])
		}
		return out
	}
	return []string{s}
}

// arrayLikeOf applies ParseArrayLike to string fields and passes real
// arrays through.
func arrayLikeOf(r gjson.Result) []string {
	switch {
	case r.IsArray():
		return stringList(r)
	case r.Type == gjson.String:
		return ParseArrayLike(r.Str)
	case r.Exists() && r.Type != gjson.Null:
		if t := text(r); t != "" {
			return []string{t}
		}
	}
	return nil
}

// firstOf returns the first non-empty member of an array-like field.
func firstOf(r gjson.Result, def string) string {
	for _, s := range arrayLikeOf(r) {
		if s = strings.TrimSpace(s); s != "" && !isNaNText(s) {
			return s
		}
	}
	return def
}
