package classifier

import (
	"bytes"
	"html"
	"strings"

	"github.com/kbukum/cloudkit/errors"
)

// DefaultMaxBody is the number of body bytes kept on unextractable failures.
const DefaultMaxBody = 512

// Table maps the last segment of a provider error code to an error kind.
// Mapping a code to errors.KindTransport marks it as transient (throttling,
// temporary unavailability) and therefore retryable for idempotent requests.
type Table map[string]errors.Kind

// Merge returns a new table with the entries of t overlaid by other.
func (t Table) Merge(other Table) Table {
	out := make(Table, len(t)+len(other))
	for k, v := range t {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Classifier converts failed responses of one service into *errors.Error.
type Classifier struct {
	service string
	table   Table
	maxBody int
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithMaxBody sets how many body bytes are kept on unextractable failures.
func WithMaxBody(n int) Option {
	return func(c *Classifier) { c.maxBody = n }
}

// New creates a classifier for service using table.
func New(service string, table Table, opts ...Option) *Classifier {
	c := &Classifier{
		service: service,
		table:   table,
		maxBody: DefaultMaxBody,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Service returns the service name errors are tagged with.
func (c *Classifier) Service() string {
	return c.service
}

// Classify converts a failure response into a classified error. It never
// returns nil.
func (c *Classifier) Classify(statusCode int, body []byte) *errors.Error {
	code, message, ok := Extract(body)
	if !ok {
		return errors.UnexpectedResponse(statusCode, c.truncate(body)).WithService(c.service)
	}

	kind, mapped := c.table[Segment(code)]
	if !mapped {
		kind = errors.KindUnclassified
	}

	e := errors.Service(kind, code, message, statusCode).WithService(c.service)
	e.Retryable = kind == errors.KindTransport
	return e
}

func (c *Classifier) truncate(body []byte) []byte {
	if c.maxBody > 0 && len(body) > c.maxBody {
		body = body[:c.maxBody]
	}
	return append([]byte(nil), body...)
}

// Segment returns the last dot-separated segment of a provider code,
// e.g. "Client.InvalidParameterValue" -> "InvalidParameterValue".
func Segment(code string) string {
	if i := strings.LastIndexByte(code, '.'); i >= 0 {
		return code[i+1:]
	}
	return code
}

// Extract scans body for the first <Code> and <Message> elements. ok is
// false when no non-empty code is present. The message may be empty.
func Extract(body []byte) (code, message string, ok bool) {
	code = strings.TrimSpace(element(body, "Code"))
	if code == "" {
		return "", "", false
	}
	return html.UnescapeString(code), html.UnescapeString(element(body, "Message")), true
}

// element returns the text between the first <tag> and the following </tag>.
func element(body []byte, tag string) string {
	open := []byte("<" + tag + ">")
	closing := []byte("</" + tag + ">")

	start := bytes.Index(body, open)
	if start < 0 {
		return ""
	}
	rest := body[start+len(open):]
	end := bytes.Index(rest, closing)
	if end < 0 {
		return ""
	}
	return string(rest[:end])
}
