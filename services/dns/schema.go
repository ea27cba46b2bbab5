package dns

import "github.com/kbukum/cloudkit/parser"

// HostSchema describes one host record of a zone.
var HostSchema = parser.Schema{
	Fields: map[string]parser.Kind{
		"id":         parser.Integer,
		"zone-id":    parser.Integer,
		"ttl":        parser.Integer,
		"priority":   parser.Integer,
		"hostname":   parser.String,
		"fqdn":       parser.String,
		"host-type":  parser.String,
		"data":       parser.String,
		"notes":      parser.String,
		"created-at": parser.String,
		"updated-at": parser.String,
	},
}

// ZoneSchema describes a zone document.
var ZoneSchema = parser.Schema{
	Fields: map[string]parser.Kind{
		"default-ttl": parser.Integer,
		"id":          parser.Integer,
		"nx-ttl":      parser.Integer,
		"hosts-count": parser.Integer,

		"created-at":         parser.String,
		"custom-nameservers": parser.String,
		"custom-ns":          parser.String,
		"domain":             parser.String,
		"hostmaster":         parser.String,
		"notes":              parser.String,
		"ns1":                parser.String,
		"ns-type":            parser.String,
		"slave-nameservers":  parser.String,
		"tag-list":           parser.String,
		"updated-at":         parser.String,
	},
	Lists: map[string]parser.List{
		"hosts": {Item: "host", Schema: &HostSchema},
	},
}

// zoneListSchema collects every zone of a listing.
var zoneListSchema = parser.Schema{
	Lists: map[string]parser.List{
		"zones": {Item: "zone", Schema: &ZoneSchema},
	},
}
