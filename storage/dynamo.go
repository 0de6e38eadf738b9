package storage

import (
	"context"
	"errors"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// NewDynamoClient loads the default AWS config. A non-empty endpoint points the client at a local
// DynamoDB such as localstack.
func NewDynamoClient(ctx context.Context, region, endpoint string) (*dynamodb.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

// votingRoomCheck guards a vote write on the room item still being in voting status.
func votingRoomCheck(roomsTable, roomID string) *types.ConditionCheck {
	return &types.ConditionCheck{
		TableName:                aws.String(roomsTable),
		Key:                      map[string]types.AttributeValue{"PK": &types.AttributeValueMemberS{Value: roomID}},
		ConditionExpression:      aws.String("attribute_exists(PK) AND #status = :voting"),
		ExpressionAttributeNames: map[string]string{"#status": "Status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":voting": &types.AttributeValueMemberS{Value: string(StatusVoting)},
		},
	}
}

// failedCondition returns the index and reason of the first transaction item whose condition failed.
func failedCondition(err error) (int, types.CancellationReason, bool) {
	var canceled *types.TransactionCanceledException
	if !errors.As(err, &canceled) {
		return 0, types.CancellationReason{}, false
	}
	for i, reason := range canceled.CancellationReasons {
		if aws.ToString(reason.Code) == "ConditionalCheckFailed" {
			return i, reason, true
		}
	}
	return 0, types.CancellationReason{}, false
}

// conditionError maps a cancelled transaction to the sentinel of the item that failed, in item order.
func conditionError(err error, sentinels ...error) error {
	i, _, ok := failedCondition(err)
	if !ok || i >= len(sentinels) {
		return err
	}
	return sentinels[i]
}
