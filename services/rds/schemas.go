package rds

import "github.com/kbukum/cloudkit/parser"

var responseMetadata = map[string]parser.Kind{
	"RequestId": parser.String,
}

func withMetadata(fields map[string]parser.Kind) map[string]parser.Kind {
	out := make(map[string]parser.Kind, len(fields)+len(responseMetadata))
	for k, v := range fields {
		out[k] = v
	}
	for k, v := range responseMetadata {
		out[k] = v
	}
	return out
}

// instanceFields are the DBInstance tags kept in results. Endpoint/Address
// and Endpoint/Port are flattened into the instance record.
var instanceFields = map[string]parser.Kind{
	"DBInstanceIdentifier":       parser.String,
	"DBInstanceClass":            parser.String,
	"DBInstanceStatus":           parser.String,
	"DBName":                     parser.String,
	"Engine":                     parser.String,
	"EngineVersion":              parser.String,
	"MasterUsername":             parser.String,
	"AllocatedStorage":           parser.Integer,
	"AvailabilityZone":           parser.String,
	"MultiAZ":                    parser.Bool,
	"AutoMinorVersionUpgrade":    parser.Bool,
	"InstanceCreateTime":         parser.Time,
	"LatestRestorableTime":       parser.Time,
	"BackupRetentionPeriod":      parser.Integer,
	"PreferredBackupWindow":      parser.String,
	"PreferredMaintenanceWindow": parser.String,
	"Address":                    parser.String,
	"Port":                       parser.Integer,
}

var parameterGroupStatusSchema = &parser.Schema{
	Fields: map[string]parser.Kind{
		"DBParameterGroupName": parser.String,
		"ParameterApplyStatus": parser.String,
	},
}

var securityGroupMembershipSchema = &parser.Schema{
	Fields: map[string]parser.Kind{
		"DBSecurityGroupName": parser.String,
		"Status":              parser.String,
	},
}

var instanceLists = map[string]parser.List{
	"DBParameterGroups": {Item: "DBParameterGroup", Schema: parameterGroupStatusSchema},
	"DBSecurityGroups":  {Item: "DBSecurityGroup", Schema: securityGroupMembershipSchema},
}

var instanceSchema = &parser.Schema{
	Fields: instanceFields,
	Lists:  instanceLists,
}

// describeDBInstancesSchema collects DBInstances and the paging marker.
var describeDBInstancesSchema = &parser.Schema{
	Fields: withMetadata(map[string]parser.Kind{"Marker": parser.String}),
	Lists: map[string]parser.List{
		"DBInstances": {Item: "DBInstance", Schema: instanceSchema},
	},
}

// singleInstanceSchema flattens the one DBInstance of a delete or reboot
// response into the result.
var singleInstanceSchema = &parser.Schema{
	Fields: withMetadata(instanceFields),
	Lists:  instanceLists,
}

var parameterGroupSchema = &parser.Schema{
	Fields: withMetadata(map[string]parser.Kind{
		"DBParameterGroupName":   parser.String,
		"DBParameterGroupFamily": parser.String,
		"Description":            parser.String,
	}),
}

var metadataSchema = &parser.Schema{
	Fields: withMetadata(nil),
}
