package rds

import (
	"context"

	"github.com/kbukum/cloudkit/classifier"
	"github.com/kbukum/cloudkit/errors"
	"github.com/kbukum/cloudkit/service"
)

const (
	// Name tags logs, spans and errors.
	Name = "rds"
	// APIVersion is the query API version every request is signed with.
	APIVersion = "2010-07-28"
	// DefaultRegion is used when no region is configured.
	DefaultRegion = "us-east-1"
)

// Regions maps each supported region to its endpoint host.
var Regions = map[string]string{
	"ap-northeast-1": "rds.ap-northeast-1.amazonaws.com",
	"ap-southeast-1": "rds.ap-southeast-1.amazonaws.com",
	"eu-west-1":      "rds.eu-west-1.amazonaws.com",
	"us-east-1":      "rds.us-east-1.amazonaws.com",
	"us-west-1":      "rds.us-west-1.amazonaws.com",
}

// Errors maps RDS error codes to error kinds.
var Errors = classifier.Table{
	"DBInstanceNotFound":       errors.KindNotFound,
	"DBParameterGroupNotFound": errors.KindNotFound,
	"DBSnapshotNotFound":       errors.KindNotFound,
	"DBSecurityGroupNotFound":  errors.KindNotFound,

	"DBInstanceAlreadyExists":       errors.KindIdentifierTaken,
	"DBParameterGroupAlreadyExists": errors.KindIdentifierTaken,
	"DBSnapshotAlreadyExists":       errors.KindIdentifierTaken,
	"DBSecurityGroupAlreadyExists":  errors.KindIdentifierTaken,

	"Throttling": errors.KindTransport,
}

// Definition describes the RDS query API.
var Definition = service.Definition{
	Name:          Name,
	APIVersion:    APIVersion,
	DefaultRegion: DefaultRegion,
	Regions:       Regions,
	Errors:        Errors,
	Path:          "/",
}

// Client issues RDS operations.
type Client struct {
	*service.Client
}

// New builds an RDS client.
func New(ctx context.Context, cfg service.Config, opts ...service.Option) (*Client, error) {
	c, err := service.New(ctx, Definition, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{Client: c}, nil
}

// NewComponent wraps an RDS client in a lifecycle component.
func NewComponent(cfg service.Config, opts ...service.Option) *service.Component {
	return service.NewComponent(Definition, cfg, opts...)
}
