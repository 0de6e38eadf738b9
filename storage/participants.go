package storage

import (
	"context"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/daehan00/omechoo/logging"
	"sort"
)

type ParticipantStorage interface {
	// Add stores a participant. The room's capacity is checked in the same write: a full room yields
	// ErrRoomFull, a nickname already used in the room ErrNicknameTaken.
	Add(ctx context.Context, participant *Participant) error
	Get(ctx context.Context, roomID, participantID string) (*Participant, error)
	// GetByRoom returns the room's participants in join order.
	GetByRoom(ctx context.Context, roomID string) ([]*Participant, error)
}

// DynamoParticipantStorage keeps a ParticipantCount on the room item next to MaxParticipants.
type DynamoParticipantStorage struct {
	Client         *dynamodb.Client
	TableName      string
	RoomsTableName string
}

func (s *DynamoParticipantStorage) Add(ctx context.Context, participant *Participant) error {
	item, err := attributevalue.MarshalMap(participant)
	if err != nil {
		logging.Log.Errorf("PARTICIPANT: failed to marshal participant: %v", err)
		return err
	}

	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Update: &types.Update{
				TableName:           aws.String(s.RoomsTableName),
				Key:                 map[string]types.AttributeValue{"PK": &types.AttributeValueMemberS{Value: participant.RoomID}},
				UpdateExpression:    aws.String("ADD ParticipantCount :one"),
				ConditionExpression: aws.String("attribute_exists(PK) AND (attribute_not_exists(ParticipantCount) OR ParticipantCount < MaxParticipants)"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":one": &types.AttributeValueMemberN{Value: "1"},
				},
				ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
			}},
			{Put: &types.Put{
				TableName:           &s.TableName,
				Item:                item,
				ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
			}},
		},
	})
	if err != nil {
		if i, reason, ok := failedCondition(err); ok {
			switch {
			case i == 1:
				return ErrNicknameTaken
			case reason.Item == nil:
				return ErrRoomNotFound
			default:
				return ErrRoomFull
			}
		}
		logging.Log.Errorf("PARTICIPANT: failed to add %s to room %s: %v", participant.Nickname, participant.RoomID, err)
		return err
	}
	return nil
}

func (s *DynamoParticipantStorage) Get(ctx context.Context, roomID, participantID string) (*Participant, error) {
	participants, err := s.GetByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	for _, p := range participants {
		if p.ID == participantID {
			return p, nil
		}
	}
	return nil, ErrParticipantNotFound
}

func (s *DynamoParticipantStorage) GetByRoom(ctx context.Context, roomID string) ([]*Participant, error) {
	output, err := s.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              &s.TableName,
		KeyConditionExpression: aws.String("PK = :room"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":room": &types.AttributeValueMemberS{Value: roomID},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		logging.Log.Errorf("PARTICIPANT: failed to query participants of room %s: %v", roomID, err)
		return nil, err
	}

	var participants []*Participant
	if err := attributevalue.UnmarshalListOfMaps(output.Items, &participants); err != nil {
		logging.Log.Errorf("PARTICIPANT: failed to unmarshal participants of room %s: %v", roomID, err)
		return nil, err
	}

	// The sort key is the nickname, callers expect join order
	sort.SliceStable(participants, func(i, j int) bool {
		return participants[i].JoinedAt.Before(participants[j].JoinedAt)
	})
	return participants, nil
}
