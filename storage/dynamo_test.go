package storage

import (
	"context"
	"os"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against localstack: DYNAMODB_ENDPOINT=http://localhost:4566
func setupDynamo(t *testing.T) *dynamodb.Client {
	t.Helper()
	endpoint := os.Getenv("DYNAMODB_ENDPOINT")
	if endpoint == "" {
		t.Skip("DYNAMODB_ENDPOINT not set")
	}

	client, err := NewDynamoClient(context.TODO(), "us-east-1", endpoint)
	require.NoError(t, err, "failed to load AWS config")
	return client
}

func createTable(t *testing.T, client *dynamodb.Client, withSortKey bool) string {
	t.Helper()
	name := "test-" + uuid.NewString()

	attrs := []types.AttributeDefinition{{AttributeName: aws.String("PK"), AttributeType: types.ScalarAttributeTypeS}}
	keys := []types.KeySchemaElement{{AttributeName: aws.String("PK"), KeyType: types.KeyTypeHash}}
	if withSortKey {
		attrs = append(attrs, types.AttributeDefinition{AttributeName: aws.String("SK"), AttributeType: types.ScalarAttributeTypeS})
		keys = append(keys, types.KeySchemaElement{AttributeName: aws.String("SK"), KeyType: types.KeyTypeRange})
	}

	_, err := client.CreateTable(context.TODO(), &dynamodb.CreateTableInput{
		TableName:            aws.String(name),
		AttributeDefinitions: attrs,
		KeySchema:            keys,
		BillingMode:          types.BillingModePayPerRequest,
	})
	require.NoError(t, err, "failed to create table %s", name)

	t.Cleanup(func() {
		_, _ = client.DeleteTable(context.TODO(), &dynamodb.DeleteTableInput{TableName: aws.String(name)})
	})
	return name
}

func TestDynamoRoomLifecycle(t *testing.T) {
	client := setupDynamo(t)
	ctx := context.TODO()

	roomsTable := createTable(t, client, false)
	rooms := &DynamoRoomStorage{Client: client, TableName: roomsTable}
	participants := &DynamoParticipantStorage{Client: client, TableName: createTable(t, client, true), RoomsTableName: roomsTable}
	votes := &DynamoVoteStorage{Client: client, TableName: createTable(t, client, true), RoomsTableName: roomsTable}

	require.NoError(t, rooms.Create(ctx, newTestRoom("room-1")))

	t.Run("Happy path - room round trip and transitions", func(t *testing.T) {
		got, err := rooms.Get(ctx, "room-1")
		require.NoError(t, err)
		assert.Len(t, got.Candidates, 2)

		moved, err := rooms.TransitionStatus(ctx, "room-1", StatusWaiting, StatusVoting)
		require.NoError(t, err)
		assert.Equal(t, StatusVoting, moved.Status)

		_, err = rooms.TransitionStatus(ctx, "room-1", StatusWaiting, StatusVoting)
		assert.ErrorIs(t, err, ErrStatusConflict)

		_, err = rooms.TransitionStatus(ctx, "ghost", StatusWaiting, StatusVoting)
		assert.ErrorIs(t, err, ErrRoomNotFound)
	})

	t.Run("Unhappy path - duplicate nickname", func(t *testing.T) {
		require.NoError(t, participants.Add(ctx, &Participant{ID: "p1", RoomID: "room-1", Nickname: "방장", IsHost: true}))
		assert.ErrorIs(t, participants.Add(ctx, &Participant{ID: "p2", RoomID: "room-1", Nickname: "방장"}), ErrNicknameTaken)

		p, err := participants.Get(ctx, "room-1", "p1")
		require.NoError(t, err)
		assert.True(t, p.IsHost)
	})

	t.Run("Happy path - vote cast, duplicate, change, delete", func(t *testing.T) {
		require.NoError(t, votes.Cast(ctx, &Vote{ID: "v1", RoomID: "room-1", ParticipantID: "p1", CandidateID: "c1"}))
		assert.ErrorIs(t, votes.Cast(ctx, &Vote{ID: "v2", RoomID: "room-1", ParticipantID: "p1", CandidateID: "c2"}), ErrAlreadyVoted)

		require.NoError(t, votes.Change(ctx, "room-1", "p1", "c2"))
		v, err := votes.Get(ctx, "room-1", "p1")
		require.NoError(t, err)
		assert.Equal(t, "c2", v.CandidateID)

		require.NoError(t, votes.Delete(ctx, "room-1", "p1"))
		assert.ErrorIs(t, votes.Delete(ctx, "room-1", "p1"), ErrVoteNotFound)
		assert.ErrorIs(t, votes.Change(ctx, "room-1", "p1", "c1"), ErrVoteNotFound)
	})

	t.Run("Unhappy path - full room and missing room", func(t *testing.T) {
		small := newTestRoom("room-small")
		small.MaxParticipants = 2
		require.NoError(t, rooms.Create(ctx, small))

		require.NoError(t, participants.Add(ctx, &Participant{ID: "s1", RoomID: "room-small", Nickname: "방장", IsHost: true}))
		require.NoError(t, participants.Add(ctx, &Participant{ID: "s2", RoomID: "room-small", Nickname: "철수"}))
		assert.ErrorIs(t, participants.Add(ctx, &Participant{ID: "s3", RoomID: "room-small", Nickname: "영희"}), ErrRoomFull)
		assert.ErrorIs(t, participants.Add(ctx, &Participant{ID: "g1", RoomID: "ghost", Nickname: "유령"}), ErrRoomNotFound)

		list, err := participants.GetByRoom(ctx, "room-small")
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	t.Run("Unhappy path - closed room rejects vote writes", func(t *testing.T) {
		require.NoError(t, votes.Cast(ctx, &Vote{ID: "v3", RoomID: "room-1", ParticipantID: "p1", CandidateID: "c1"}))
		_, err := rooms.TransitionStatus(ctx, "room-1", StatusVoting, StatusClosed)
		require.NoError(t, err)

		assert.ErrorIs(t, votes.Cast(ctx, &Vote{ID: "v4", RoomID: "room-1", ParticipantID: "p2", CandidateID: "c2"}), ErrRoomNotVoting)
		assert.ErrorIs(t, votes.Change(ctx, "room-1", "p1", "c2"), ErrRoomNotVoting)
		assert.ErrorIs(t, votes.Delete(ctx, "room-1", "p1"), ErrRoomNotVoting)

		list, err := votes.GetByRoom(ctx, "room-1")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "c1", list[0].CandidateID)
	})
}
