package compute

import (
	"context"
	"strconv"

	"github.com/kbukum/cloudkit/classifier"
	"github.com/kbukum/cloudkit/errors"
	"github.com/kbukum/cloudkit/parser"
	"github.com/kbukum/cloudkit/service"
	"github.com/kbukum/cloudkit/signer"
)

const (
	Name          = "compute"
	APIVersion    = "2011-05-15"
	DefaultRegion = "us-east-1"
)

// Regions maps each supported region to its endpoint host.
var Regions = map[string]string{
	"ap-northeast-1": "ec2.ap-northeast-1.amazonaws.com",
	"ap-southeast-1": "ec2.ap-southeast-1.amazonaws.com",
	"eu-west-1":      "ec2.eu-west-1.amazonaws.com",
	"us-east-1":      "ec2.us-east-1.amazonaws.com",
	"us-west-1":      "ec2.us-west-1.amazonaws.com",
}

// Errors maps the last segment of compute error codes to error kinds.
var Errors = classifier.Table{
	"NotFound":             errors.KindNotFound,
	"Duplicate":            errors.KindIdentifierTaken,
	"InUse":                errors.KindIdentifierTaken,
	"RequestLimitExceeded": errors.KindTransport,
	"Unavailable":          errors.KindTransport,
}

// Definition describes the compute query API.
var Definition = service.Definition{
	Name:          Name,
	APIVersion:    APIVersion,
	DefaultRegion: DefaultRegion,
	Regions:       Regions,
	Errors:        Errors,
}

var (
	regionInfoSchema = &parser.Schema{
		Fields: map[string]parser.Kind{
			"regionName":     parser.String,
			"regionEndpoint": parser.String,
		},
	}

	// DescribeRegions lists the regions available to the account.
	DescribeRegions = service.Operation{
		Action:     "DescribeRegions",
		Idempotent: true,
		Schema: &parser.Schema{
			Fields: map[string]parser.Kind{"requestId": parser.String},
			Lists: map[string]parser.List{
				"regionInfo": {Item: "item", Schema: regionInfoSchema},
			},
		},
	}

	// CreateKeyPair generates a key pair; the private key is only ever
	// returned by this call.
	CreateKeyPair = service.Operation{
		Action: "CreateKeyPair",
		Schema: &parser.Schema{
			Fields: map[string]parser.Kind{
				"requestId":      parser.String,
				"keyName":        parser.String,
				"keyFingerprint": parser.String,
				"keyMaterial":    parser.String,
			},
		},
	}

	// DeleteKeyPair succeeds even when the key pair is already gone.
	DeleteKeyPair = service.Operation{
		Action:     "DeleteKeyPair",
		Idempotent: true,
		Schema: &parser.Schema{
			Fields: map[string]parser.Kind{
				"requestId": parser.String,
				"return":    parser.Bool,
			},
		},
	}
)

// Client issues compute operations.
type Client struct {
	*service.Client
}

// New builds a compute client.
func New(ctx context.Context, cfg service.Config, opts ...service.Option) (*Client, error) {
	c, err := service.New(ctx, Definition, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{Client: c}, nil
}

// DescribeRegions lists regions, optionally restricted to names.
func (c *Client) DescribeRegions(ctx context.Context, names ...string) (parser.Result, error) {
	return c.Call(ctx, DescribeRegions, indexed("RegionName", names))
}

// CreateKeyPair creates a key pair named name.
func (c *Client) CreateKeyPair(ctx context.Context, name string) (parser.Result, error) {
	if name == "" {
		return nil, errors.InvalidInput("KeyName", "must not be empty")
	}
	return c.Call(ctx, CreateKeyPair, signer.Params{"KeyName": name})
}

// DeleteKeyPair deletes the key pair named name.
func (c *Client) DeleteKeyPair(ctx context.Context, name string) (parser.Result, error) {
	if name == "" {
		return nil, errors.InvalidInput("KeyName", "must not be empty")
	}
	return c.Call(ctx, DeleteKeyPair, signer.Params{"KeyName": name})
}

// indexed expands values into key.1, key.2, ... parameters.
func indexed(key string, values []string) signer.Params {
	p := make(signer.Params, len(values))
	for i, v := range values {
		p[key+"."+strconv.Itoa(i+1)] = v
	}
	return p
}
