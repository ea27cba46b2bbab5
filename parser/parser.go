package parser

import (
	"bytes"
	"encoding/xml"
	"io"

	"github.com/kbukum/cloudkit/errors"
)

// Handler consumes markup events and accumulates a Result.
type Handler interface {
	// Reset clears accumulated state so the handler can be reused.
	Reset()
	// StartElement observes an opening tag.
	StartElement(name string)
	// Characters observes character data; it may be called several times
	// for one element.
	Characters(data []byte)
	// EndElement observes a closing tag and applies the coercion for name.
	EndElement(name string) error
	// Result returns the accumulated mapping. Only valid once the event
	// stream has reached end of document.
	Result() Result
}

// frame is one open record or list on the parse stack.
type frame struct {
	depth  int
	tag    string
	schema *Schema // record frame
	record Result
	list   *List // list frame
	items  []any
}

func (f *frame) isList() bool { return f.list != nil }

// Parser is the schema-driven Handler.
type Parser struct {
	schema *Schema
	stack  []*frame
	depth  int
	text   bytes.Buffer
}

var _ Handler = (*Parser)(nil)

// New creates a Parser for responses shaped like schema.
func New(schema Schema) *Parser {
	p := &Parser{schema: &schema}
	p.Reset()
	return p
}

// Reset implements Handler.
func (p *Parser) Reset() {
	p.stack = []*frame{{schema: p.schema, record: Result{}}}
	p.depth = 0
	p.text.Reset()
}

// StartElement implements Handler.
func (p *Parser) StartElement(name string) {
	p.depth++
	p.text.Reset()

	top := p.top()
	switch {
	case !top.isList():
		if l, ok := top.schema.Lists[name]; ok {
			p.stack = append(p.stack, &frame{depth: p.depth, tag: name, list: &l, items: []any{}})
		}
	case name == top.list.Item && top.list.Schema != nil && p.depth == top.depth+1:
		p.stack = append(p.stack, &frame{depth: p.depth, tag: name, schema: top.list.Schema, record: Result{}})
	}
}

// Characters implements Handler.
func (p *Parser) Characters(data []byte) {
	p.text.Write(data)
}

// EndElement implements Handler.
func (p *Parser) EndElement(name string) error {
	defer func() {
		p.depth--
		p.text.Reset()
	}()

	top := p.top()
	switch {
	case top.depth == p.depth && top.tag == name && len(p.stack) > 1:
		p.stack = p.stack[:len(p.stack)-1]
		parent := p.top()
		if top.isList() {
			parent.record[name] = top.items
		} else {
			parent.items = append(parent.items, top.record)
		}

	case top.isList():
		if name != top.list.Item || top.list.Schema != nil || p.depth != top.depth+1 {
			return nil
		}
		kind := top.list.Kind
		if kind == 0 {
			kind = String
		}
		v, err := coerce(kind, name, p.text.String())
		if err != nil {
			return err
		}
		top.items = append(top.items, v)

	default:
		kind, ok := top.schema.Fields[name]
		if !ok {
			return nil
		}
		v, err := coerce(kind, name, p.text.String())
		if err != nil {
			return err
		}
		top.record[name] = v
	}
	return nil
}

// Result implements Handler.
func (p *Parser) Result() Result {
	return p.stack[0].record
}

func (p *Parser) top() *frame {
	return p.stack[len(p.stack)-1]
}

// Decode resets h and feeds it the XML token stream read from r. Malformed
// markup and coercion failures are returned as parse errors.
func Decode(r io.Reader, h Handler) (Result, error) {
	h.Reset()

	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Parse(err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			h.StartElement(t.Name.Local)
		case xml.CharData:
			h.Characters(t)
		case xml.EndElement:
			if err := h.EndElement(t.Name.Local); err != nil {
				return nil, errors.Parse(err)
			}
		}
	}
	return h.Result(), nil
}
