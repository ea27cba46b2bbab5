package rds

import (
	"context"

	"github.com/kbukum/cloudkit/errors"
	"github.com/kbukum/cloudkit/parser"
	"github.com/kbukum/cloudkit/service"
	"github.com/kbukum/cloudkit/signer"
)

// Operations supported by the client.
var (
	DescribeDBInstances = service.Operation{
		Action:     "DescribeDBInstances",
		Schema:     describeDBInstancesSchema,
		Idempotent: true,
	}
	DeleteDBInstance = service.Operation{
		Action: "DeleteDBInstance",
		Schema: singleInstanceSchema,
	}
	RebootDBInstance = service.Operation{
		Action: "RebootDBInstance",
		Schema: singleInstanceSchema,
	}
	CreateDBParameterGroup = service.Operation{
		Action: "CreateDBParameterGroup",
		Schema: parameterGroupSchema,
	}
	DeleteDBParameterGroup = service.Operation{
		Action: "DeleteDBParameterGroup",
		Schema: metadataSchema,
	}
)

// DescribeDBInstancesInput filters DescribeDBInstances. The zero value
// lists every instance.
type DescribeDBInstancesInput struct {
	DBInstanceIdentifier string
	Marker               string
	MaxRecords           int
}

func (in DescribeDBInstancesInput) params() signer.Params {
	p := signer.Params{}
	if in.DBInstanceIdentifier != "" {
		p["DBInstanceIdentifier"] = in.DBInstanceIdentifier
	}
	if in.Marker != "" {
		p["Marker"] = in.Marker
	}
	if in.MaxRecords > 0 {
		p["MaxRecords"] = in.MaxRecords
	}
	return p
}

// DescribeDBInstances lists instances. Retried on transient failures.
func (c *Client) DescribeDBInstances(ctx context.Context, in DescribeDBInstancesInput) (parser.Result, error) {
	return c.Call(ctx, DescribeDBInstances, in.params())
}

// DeleteDBInstanceInput names the instance to delete. Without a final
// snapshot identifier the final snapshot is skipped.
type DeleteDBInstanceInput struct {
	DBInstanceIdentifier      string
	FinalDBSnapshotIdentifier string
}

// DeleteDBInstance deletes an instance.
func (c *Client) DeleteDBInstance(ctx context.Context, in DeleteDBInstanceInput) (parser.Result, error) {
	if in.DBInstanceIdentifier == "" {
		return nil, errors.InvalidInput("DBInstanceIdentifier", "must not be empty")
	}

	p := signer.Params{"DBInstanceIdentifier": in.DBInstanceIdentifier}
	if in.FinalDBSnapshotIdentifier != "" {
		p["FinalDBSnapshotIdentifier"] = in.FinalDBSnapshotIdentifier
	} else {
		p["SkipFinalSnapshot"] = true
	}
	return c.Call(ctx, DeleteDBInstance, p)
}

// RebootDBInstance reboots an instance.
func (c *Client) RebootDBInstance(ctx context.Context, identifier string) (parser.Result, error) {
	if identifier == "" {
		return nil, errors.InvalidInput("DBInstanceIdentifier", "must not be empty")
	}
	return c.Call(ctx, RebootDBInstance, signer.Params{"DBInstanceIdentifier": identifier})
}

// CreateDBParameterGroupInput describes a new parameter group.
type CreateDBParameterGroupInput struct {
	DBParameterGroupName   string
	DBParameterGroupFamily string
	Description            string
}

// CreateDBParameterGroup creates a parameter group. A taken name fails with
// errors.IsIdentifierTaken.
func (c *Client) CreateDBParameterGroup(ctx context.Context, in CreateDBParameterGroupInput) (parser.Result, error) {
	switch {
	case in.DBParameterGroupName == "":
		return nil, errors.InvalidInput("DBParameterGroupName", "must not be empty")
	case in.DBParameterGroupFamily == "":
		return nil, errors.InvalidInput("DBParameterGroupFamily", "must not be empty")
	case in.Description == "":
		return nil, errors.InvalidInput("Description", "must not be empty")
	}

	return c.Call(ctx, CreateDBParameterGroup, signer.Params{
		"DBParameterGroupName":   in.DBParameterGroupName,
		"DBParameterGroupFamily": in.DBParameterGroupFamily,
		"Description":            in.Description,
	})
}

// DeleteDBParameterGroup deletes a parameter group.
func (c *Client) DeleteDBParameterGroup(ctx context.Context, name string) (parser.Result, error) {
	if name == "" {
		return nil, errors.InvalidInput("DBParameterGroupName", "must not be empty")
	}
	return c.Call(ctx, DeleteDBParameterGroup, signer.Params{"DBParameterGroupName": name})
}
