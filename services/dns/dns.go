package dns

import (
	"context"
	"net/http"

	"github.com/kbukum/cloudkit/classifier"
	"github.com/kbukum/cloudkit/errors"
	"github.com/kbukum/cloudkit/parser"
	"github.com/kbukum/cloudkit/service"
	"github.com/kbukum/cloudkit/signer"
)

const (
	Name          = "dns"
	APIVersion    = "1.1"
	DefaultRegion = "global"
)

// Regions maps the single global region to the API host.
var Regions = map[string]string{
	DefaultRegion: "ns.zerigo.com",
}

// Errors maps DNS error codes to error kinds.
var Errors = classifier.Table{
	"ZoneNotFound":       errors.KindNotFound,
	"HostNotFound":       errors.KindNotFound,
	"DomainTaken":        errors.KindIdentifierTaken,
	"RateLimited":        errors.KindTransport,
	"ServiceUnavailable": errors.KindTransport,
}

// Definition describes the DNS API.
var Definition = service.Definition{
	Name:          Name,
	APIVersion:    APIVersion,
	DefaultRegion: DefaultRegion,
	Regions:       Regions,
	Errors:        Errors,
	Path:          "/api/1.1/",
}

// Zone operations. CreateZone answers 201 Created.
var (
	CreateZone = service.Operation{Action: "CreateZone", Schema: &ZoneSchema, Expects: []int{http.StatusCreated}}
	GetZone    = service.Operation{Action: "GetZone", Schema: &ZoneSchema, Idempotent: true}
	ListZones  = service.Operation{Action: "ListZones", Schema: &zoneListSchema, Idempotent: true}
	DeleteZone = service.Operation{Action: "DeleteZone"}
)

// Client issues DNS operations.
type Client struct {
	*service.Client
}

// New builds a DNS client.
func New(ctx context.Context, cfg service.Config, opts ...service.Option) (*Client, error) {
	c, err := service.New(ctx, Definition, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{Client: c}, nil
}

// ZoneInput describes a zone to create.
type ZoneInput struct {
	Domain     string
	NSType     string
	DefaultTTL int
	NXTTL      int
	Hostmaster string
	Notes      string
}

func (in ZoneInput) params() signer.Params {
	p := signer.Params{"domain": in.Domain}
	nsType := in.NSType
	if nsType == "" {
		nsType = "pri_sec"
	}
	p["ns-type"] = nsType
	if in.DefaultTTL > 0 {
		p["default-ttl"] = in.DefaultTTL
	}
	if in.NXTTL > 0 {
		p["nx-ttl"] = in.NXTTL
	}
	if in.Hostmaster != "" {
		p["hostmaster"] = in.Hostmaster
	}
	if in.Notes != "" {
		p["notes"] = in.Notes
	}
	return p
}

// CreateZone creates a zone. A domain already hosted fails with
// errors.IsIdentifierTaken.
func (c *Client) CreateZone(ctx context.Context, in ZoneInput) (parser.Result, error) {
	if in.Domain == "" {
		return nil, errors.InvalidInput("domain", "must not be empty")
	}
	return c.Call(ctx, CreateZone, in.params())
}

// GetZone returns the zone with id, including its hosts.
func (c *Client) GetZone(ctx context.Context, id int64) (parser.Result, error) {
	if id <= 0 {
		return nil, errors.InvalidInput("id", "must be positive")
	}
	return c.Call(ctx, GetZone, signer.Params{"id": id})
}

// ListZones returns one page of zones. A page of 0 asks for the first page.
func (c *Client) ListZones(ctx context.Context, page, perPage int) (parser.Result, error) {
	p := signer.Params{}
	if page > 0 {
		p["page"] = page
	}
	if perPage > 0 {
		p["per_page"] = perPage
	}
	return c.Call(ctx, ListZones, p)
}

// DeleteZone deletes the zone with id.
func (c *Client) DeleteZone(ctx context.Context, id int64) error {
	if id <= 0 {
		return errors.InvalidInput("id", "must be positive")
	}
	_, err := c.Call(ctx, DeleteZone, signer.Params{"id": id})
	return err
}
