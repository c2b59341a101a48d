// Package extract pulls tokens and restored values out of protect/reveal
// response bodies without knowing which backend variant produced them.
//
// Observed server implementations disagree on response shape, so each
// extractor is an ordered list of strategies applied first-match-wins. The
// order is part of the contract: when a body erroneously carries more than
// one candidate key, the earlier strategy decides which one wins. All
// extractors are pure functions of the body and never fail on a shape
// mismatch; they return the zero result instead.
package extract

import (
	"fmt"
	"sort"
)

// tokenKeys is the key priority for a single-item protect response.
var tokenKeys = []string{"protected_data", "protected", "token"}

// restoredKeys is the key priority for a single-item reveal response.
var restoredKeys = []string{"data", "original", "plain", "revealed", "unprotected_data", "unprotected", "decrypted"}

// Token extracts the token from a single-item protect response body. The
// second return is false when the body is not an object or carries none of
// the known keys.
func Token(body any) (string, bool) {
	return firstKey(body, tokenKeys)
}

// Restored extracts the original value from a single-item reveal response
// body.
func Restored(body any) (string, bool) {
	return firstKey(body, restoredKeys)
}

func firstKey(body any, keys []string) (string, bool) {
	m, ok := body.(map[string]any)
	if !ok {
		return "", false
	}
	for _, key := range keys {
		if v, present := m[key]; present {
			return stringify(v), true
		}
	}
	return "", false
}

// listStrategy is one candidate shape for a bulk response body: Match
// reports whether the shape applies, Extract pulls the values out. Extract
// is only called when Match returned true.
type listStrategy struct {
	name    string
	match   func(body any) bool
	extract func(body any) []string
}

// apply runs strategies in order and returns the first match's extraction.
// No match yields an empty (non-nil) slice.
func apply(body any, strategies []listStrategy) []string {
	for _, s := range strategies {
		if s.match(body) {
			return s.extract(body)
		}
	}
	return []string{}
}

// bulkTokenStrategies covers the known protect-bulk response shapes, in
// priority order.
var bulkTokenStrategies = []listStrategy{
	{
		name:    "bare list",
		match:   isList,
		extract: stringifyList,
	},
	{
		name:  "protected_data list",
		match: hasListKey("protected_data"),
		extract: func(body any) []string {
			return stringifyList(body.(map[string]any)["protected_data"])
		},
	},
	{
		name:  "protected_data_array of objects",
		match: hasListKey("protected_data_array"),
		extract: func(body any) []string {
			return fieldFromObjects(body.(map[string]any)["protected_data_array"], "protected_data")
		},
	},
	{
		name:  "results of objects",
		match: hasListKey("results"),
		extract: func(body any) []string {
			return fieldFromObjects(body.(map[string]any)["results"], "protected_data")
		},
	},
}

// BulkTokens extracts the token list from a protect-bulk response body.
func BulkTokens(body any) []string {
	return apply(body, bulkTokenStrategies)
}

// bulkRestoredStrategies covers the known reveal-bulk response shapes, in
// priority order. The final strategy is a last resort: scrape every scalar
// out of the top-level object.
var bulkRestoredStrategies = []listStrategy{
	{
		name:    "bare list",
		match:   isList,
		extract: stringifyList,
	},
	{
		name:  "keyed list",
		match: hasAnyListKey("data", "restored", "results", "items"),
		extract: func(body any) []string {
			m := body.(map[string]any)
			for _, key := range []string{"data", "restored", "results", "items"} {
				list, ok := m[key].([]any)
				if !ok {
					continue
				}
				if key == "results" {
					return resultObjectsOrScalars(list)
				}
				return stringifyList(list)
			}
			return []string{}
		},
	},
	{
		name:  "data_array of objects",
		match: hasListKey("data_array"),
		extract: func(body any) []string {
			return fieldFromObjects(body.(map[string]any)["data_array"], "data")
		},
	},
	{
		name: "top-level scalars",
		match: func(body any) bool {
			_, ok := body.(map[string]any)
			return ok
		},
		extract: topLevelScalars,
	},
}

// BulkRestored extracts the restored-value list from a reveal-bulk response
// body.
func BulkRestored(body any) []string {
	return apply(body, bulkRestoredStrategies)
}

func isList(body any) bool {
	_, ok := body.([]any)
	return ok
}

// hasListKey matches an object body whose key holds a list.
func hasListKey(key string) func(body any) bool {
	return func(body any) bool {
		m, ok := body.(map[string]any)
		if !ok {
			return false
		}
		_, ok = m[key].([]any)
		return ok
	}
}

func hasAnyListKey(keys ...string) func(body any) bool {
	return func(body any) bool {
		m, ok := body.(map[string]any)
		if !ok {
			return false
		}
		for _, key := range keys {
			if _, ok := m[key].([]any); ok {
				return true
			}
		}
		return false
	}
}

func stringifyList(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		out = append(out, stringify(item))
	}
	return out
}

// fieldFromObjects collects field from each object element of a list,
// skipping elements that are not objects or lack the field.
func fieldFromObjects(v any, field string) []string {
	list, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if val, present := m[field]; present {
			out = append(out, stringify(val))
		}
	}
	return out
}

// resultObjectsOrScalars handles a "results" list whose elements may be
// objects (take data/restored/value, first present key wins) or plain
// scalars.
func resultObjectsOrScalars(list []any) []string {
	out := make([]string, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			out = append(out, stringify(item))
			continue
		}
		for _, key := range []string{"data", "restored", "value"} {
			if val, present := m[key]; present {
				out = append(out, stringify(val))
				break
			}
		}
	}
	return out
}

// topLevelScalars scrapes every string or numeric value out of an object
// body. Keys are visited in sorted order so the result is deterministic;
// decoded JSON objects carry no insertion order to preserve. It exists so a
// completely unknown reveal-bulk shape still yields something comparable.
func topLevelScalars(body any) []string {
	m := body.(map[string]any)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := []string{}
	for _, k := range keys {
		switch m[k].(type) {
		case string, float64, int, int64:
			out = append(out, stringify(m[k]))
		}
	}
	return out
}

// stringify renders a JSON leaf value the way the wire carried it. JSON
// numbers decode as float64; integral ones are printed without an exponent
// or trailing zeros so "123" round-trips as "123".
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}
