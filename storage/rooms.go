package storage

import (
	"context"
	"errors"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/daehan00/omechoo/logging"
	"time"
)

type RoomStorage interface {
	Create(ctx context.Context, room *Room) error
	Get(ctx context.Context, id string) (*Room, error)
	// TransitionStatus moves a room from one status to another. It fails with ErrStatusConflict
	// when the stored status is no longer from.
	TransitionStatus(ctx context.Context, id string, from, to RoomStatus) (*Room, error)
}

type DynamoRoomStorage struct {
	Client    *dynamodb.Client
	TableName string
}

func (s *DynamoRoomStorage) Create(ctx context.Context, room *Room) error {
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now().UTC()
	}
	item, err := attributevalue.MarshalMap(room)
	if err != nil {
		logging.Log.Errorf("ROOM: failed to marshal room: %v", err)
		return err
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           &s.TableName,
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		logging.Log.Errorf("ROOM: failed to create room %s: %v", room.ID, err)
		return err
	}
	return nil
}

func (s *DynamoRoomStorage) Get(ctx context.Context, id string) (*Room, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"PK": id})
	if err != nil {
		logging.Log.Errorf("ROOM: failed to marshal key: %v", err)
		return nil, err
	}

	out, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      &s.TableName,
		Key:            key,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		logging.Log.Errorf("ROOM: get failed: %v", err)
		return nil, err
	}
	if out.Item == nil {
		return nil, ErrRoomNotFound
	}

	var room Room
	if err := attributevalue.UnmarshalMap(out.Item, &room); err != nil {
		logging.Log.Errorf("ROOM: failed to unmarshal room %s: %v", id, err)
		return nil, err
	}
	return &room, nil
}

func (s *DynamoRoomStorage) TransitionStatus(ctx context.Context, id string, from, to RoomStatus) (*Room, error) {
	out, err := s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.TableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression:    aws.String("SET #status = :to"),
		ConditionExpression: aws.String("attribute_exists(PK) AND #status = :from"),
		// Status is a DynamoDB reserved word
		ExpressionAttributeNames: map[string]string{"#status": "Status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":from": &types.AttributeValueMemberS{Value: string(from)},
			":to":   &types.AttributeValueMemberS{Value: string(to)},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			if _, getErr := s.Get(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, ErrStatusConflict
		}
		logging.Log.Errorf("ROOM: failed to move room %s from %s to %s: %v", id, from, to, err)
		return nil, err
	}

	var room Room
	if err := attributevalue.UnmarshalMap(out.Attributes, &room); err != nil {
		logging.Log.Errorf("ROOM: failed to unmarshal updated room %s: %v", id, err)
		return nil, err
	}
	return &room, nil
}
