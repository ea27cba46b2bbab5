package parser

import "time"

// Result is a parsed response: tag name to int64, string, bool, time.Time,
// or []any for list wrappers (elements are Result for record items).
type Result map[string]any

// Int returns the integer stored under key.
func (r Result) Int(key string) (int64, bool) {
	v, ok := r[key].(int64)
	return v, ok
}

// String returns the string stored under key.
func (r Result) String(key string) (string, bool) {
	v, ok := r[key].(string)
	return v, ok
}

// Bool returns the boolean stored under key.
func (r Result) Bool(key string) (bool, bool) {
	v, ok := r[key].(bool)
	return v, ok
}

// Time returns the timestamp stored under key.
func (r Result) Time(key string) (time.Time, bool) {
	v, ok := r[key].(time.Time)
	return v, ok
}

// List returns the items collected under key.
func (r Result) List(key string) ([]any, bool) {
	v, ok := r[key].([]any)
	return v, ok
}

// Records returns the record items collected under key, skipping scalars.
func (r Result) Records(key string) []Result {
	items, _ := r.List(key)
	out := make([]Result, 0, len(items))
	for _, item := range items {
		if rec, ok := item.(Result); ok {
			out = append(out, rec)
		}
	}
	return out
}
