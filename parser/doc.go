// Package parser turns tag-structured (XML) response bodies into typed
// result mappings in a single streaming pass.
//
// A Handler observes element start/end and character events. Parser is the
// schema-driven Handler used by every service: each response shape is a
// Schema value (data, not code) naming which tags become integers, strings,
// booleans or timestamps, and which wrappers collect repeated children into
// ordered lists. Tags outside the schema are ignored, so providers can add
// fields without breaking clients.
//
//	var zone = parser.Schema{
//	    Fields: map[string]parser.Kind{"id": parser.Integer, "domain": parser.String},
//	    Lists:  map[string]parser.List{"hosts": {Item: "host", Schema: &hostSchema}},
//	}
//
//	result, err := parser.Decode(body, parser.New(zone))
//
// Decode never builds a document tree: memory use is bounded by the nesting
// depth of the response, not its size.
package parser
