package storage

import (
	"context"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/daehan00/omechoo/logging"
	"time"
)

// VoteStorage writes only while the room is in voting status, checked in the same write.
// Otherwise Cast, Change and Delete fail with ErrRoomNotVoting.
type VoteStorage interface {
	// Cast records a first vote. A participant that already voted yields ErrAlreadyVoted.
	Cast(ctx context.Context, vote *Vote) error
	Get(ctx context.Context, roomID, participantID string) (*Vote, error)
	// Change points an existing vote at another candidate.
	Change(ctx context.Context, roomID, participantID, candidateID string) error
	Delete(ctx context.Context, roomID, participantID string) error
	GetByRoom(ctx context.Context, roomID string) ([]*Vote, error)
}

type DynamoVoteStorage struct {
	Client    *dynamodb.Client
	TableName string
	// RoomsTableName is read in the same transaction as every vote write.
	RoomsTableName string
}

func (s *DynamoVoteStorage) key(roomID, participantID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: roomID},
		"SK": &types.AttributeValueMemberS{Value: participantID},
	}
}

func (s *DynamoVoteStorage) Cast(ctx context.Context, vote *Vote) error {
	if vote.VotedAt.IsZero() {
		vote.VotedAt = time.Now().UTC()
	}
	item, err := attributevalue.MarshalMap(vote)
	if err != nil {
		logging.Log.Errorf("VOTE: failed to marshal vote: %v", err)
		return err
	}
	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{ConditionCheck: votingRoomCheck(s.RoomsTableName, vote.RoomID)},
			{Put: &types.Put{
				TableName:           &s.TableName,
				Item:                item,
				ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
			}},
		},
	})
	if err != nil {
		if _, _, ok := failedCondition(err); ok {
			return conditionError(err, ErrRoomNotVoting, ErrAlreadyVoted)
		}
		logging.Log.Errorf("VOTE: failed to create vote: %v", err)
		return err
	}
	return nil
}

func (s *DynamoVoteStorage) Get(ctx context.Context, roomID, participantID string) (*Vote, error) {
	out, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      &s.TableName,
		Key:            s.key(roomID, participantID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		logging.Log.Errorf("VOTE: get failed: %v", err)
		return nil, err
	}
	if out.Item == nil {
		return nil, ErrVoteNotFound
	}

	var vote Vote
	if err := attributevalue.UnmarshalMap(out.Item, &vote); err != nil {
		logging.Log.Errorf("VOTE: failed to unmarshal vote: %v", err)
		return nil, err
	}
	return &vote, nil
}

func (s *DynamoVoteStorage) Change(ctx context.Context, roomID, participantID, candidateID string) error {
	_, err := s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{ConditionCheck: votingRoomCheck(s.RoomsTableName, roomID)},
			{Update: &types.Update{
				TableName:           aws.String(s.TableName),
				Key:                 s.key(roomID, participantID),
				UpdateExpression:    aws.String("SET CandidateID = :candidate, VotedAt = :at"),
				ConditionExpression: aws.String("attribute_exists(SK)"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":candidate": &types.AttributeValueMemberS{Value: candidateID},
					":at":        &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
				},
			}},
		},
	})
	return s.writeError(err, "change")
}

func (s *DynamoVoteStorage) Delete(ctx context.Context, roomID, participantID string) error {
	_, err := s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{ConditionCheck: votingRoomCheck(s.RoomsTableName, roomID)},
			{Delete: &types.Delete{
				TableName:           &s.TableName,
				Key:                 s.key(roomID, participantID),
				ConditionExpression: aws.String("attribute_exists(SK)"),
			}},
		},
	})
	return s.writeError(err, "delete")
}

// writeError maps a failed change or delete: room check first, then the vote item.
func (s *DynamoVoteStorage) writeError(err error, op string) error {
	if err == nil {
		return nil
	}
	if _, _, ok := failedCondition(err); ok {
		return conditionError(err, ErrRoomNotVoting, ErrVoteNotFound)
	}
	logging.Log.Errorf("VOTE: failed to %s vote: %v", op, err)
	return err
}

func (s *DynamoVoteStorage) GetByRoom(ctx context.Context, roomID string) ([]*Vote, error) {
	input := &dynamodb.QueryInput{
		TableName:              &s.TableName,
		KeyConditionExpression: aws.String("PK = :room"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":room": &types.AttributeValueMemberS{Value: roomID},
		},
		ConsistentRead: aws.Bool(true),
	}

	output, err := s.Client.Query(ctx, input)
	if err != nil {
		logging.Log.Errorf("VOTE: failed to query votes of room %s: %v", roomID, err)
		return nil, err
	}

	var votes []*Vote
	if err := attributevalue.UnmarshalListOfMaps(output.Items, &votes); err != nil {
		logging.Log.Errorf("VOTE: failed to unmarshal votes for room %s: %v", roomID, err)
		return nil, err
	}
	return votes, nil
}
