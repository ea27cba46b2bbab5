package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind is the coercion rule applied to a tag's text.
type Kind int

const (
	// String stores the text verbatim.
	String Kind = iota + 1
	// Integer converts the text to int64. Empty text is 0.
	Integer
	// Bool accepts true/false/1/0. Empty text is false.
	Bool
	// Time parses an RFC 3339 timestamp. Empty text is the zero time.
	Time
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Integer:
		return "integer"
	case Bool:
		return "bool"
	case Time:
		return "time"
	default:
		return "unknown"
	}
}

// Schema declares the shape of one record in a response.
type Schema struct {
	// Fields maps a tag to the coercion applied to its text.
	Fields map[string]Kind
	// Lists maps a wrapper tag to the repeated children it collects.
	Lists map[string]List
}

// List describes a wrapper element whose repeated children are collected in
// document order.
type List struct {
	// Item is the tag of each repeated child.
	Item string
	// Schema describes record items. When nil, items are scalars of Kind.
	Schema *Schema
	// Kind is the coercion for scalar items. Defaults to String.
	Kind Kind
}

func coerce(kind Kind, tag, value string) (any, error) {
	switch kind {
	case Integer:
		v := strings.TrimSpace(value)
		if v == "" {
			return int64(0), nil
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("tag %q: %q is not an integer", tag, value)
		}
		return n, nil
	case Bool:
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true", "1":
			return true, nil
		case "", "false", "0":
			return false, nil
		}
		return nil, fmt.Errorf("tag %q: %q is not a boolean", tag, value)
	case Time:
		v := strings.TrimSpace(value)
		if v == "" {
			return time.Time{}, nil
		}
		ts, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return nil, fmt.Errorf("tag %q: %q is not a timestamp", tag, value)
		}
		return ts, nil
	default:
		return value, nil
	}
}
