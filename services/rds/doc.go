// Package rds is the relational database service client.
//
//	client, err := rds.New(ctx, service.Config{
//		AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
//		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
//		Region:          "eu-west-1",
//	})
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	result, err := client.DescribeDBInstances(ctx, rds.DescribeDBInstancesInput{})
//	for _, db := range result.Records("DBInstances") {
//		id, _ := db.String("DBInstanceIdentifier")
//	}
//
// Missing instances, parameter groups, snapshots and security groups fail
// with errors.IsNotFound; names already in use fail with
// errors.IsIdentifierTaken.
package rds
