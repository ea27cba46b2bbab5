package signer

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/kbukum/cloudkit/errors"
)

const upperhex = "0123456789ABCDEF"

// Escape percent-encodes s per RFC 3986: the unreserved characters
// A-Z a-z 0-9 - _ . ~ pass through, every other byte becomes %XX.
func Escape(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if !unreserved(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '_', c == '.', c == '~':
		return true
	}
	return false
}

// FormatValue renders a scalar parameter value as its wire string. Anything
// that is not a scalar is a caller error reported against key.
func FormatValue(key string, v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", errors.InvalidInput(key, "nil value")
	case string:
		return x, nil
	case time.Time:
		return x.UTC().Format(TimestampFormat), nil
	case fmt.Stringer:
		return x.String(), nil
	}

	rv := reflect.ValueOf(v)
	var basic any
	switch rv.Kind() {
	case reflect.String:
		basic = rv.String()
	case reflect.Bool:
		basic = rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		basic = rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		basic = rv.Uint()
	case reflect.Float32:
		basic = float32(rv.Float())
	case reflect.Float64:
		basic = rv.Float()
	default:
		return "", errors.InvalidInput(key, fmt.Sprintf("non-scalar value of type %T", v))
	}

	s, err := cast.ToStringE(basic)
	if err != nil {
		return "", errors.InvalidInput(key, err.Error())
	}
	return s, nil
}
