package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSQLStorage(t *testing.T) (*SQLRoomStorage, *SQLParticipantStorage, *SQLVoteStorage) {
	t.Helper()

	db, err := OpenSQL("sqlite", ":memory:")
	require.NoError(t, err, "Should open in-memory sqlite")

	return &SQLRoomStorage{DB: db}, &SQLParticipantStorage{DB: db}, &SQLVoteStorage{DB: db}
}

func newTestRoom(id string) *Room {
	return &Room{
		ID:            id,
		Name:          "점심 뭐먹지?",
		HostID:        "host-1",
		CandidateType: CandidateMenu,
		Candidates: []Candidate{
			{ID: "c1", Value: "짜장면"},
			{ID: "c2", Value: "짬뽕"},
		},
		Status:          StatusWaiting,
		MaxParticipants: 10,
	}
}

func TestSQLRoomStorage(t *testing.T) {
	rooms, _, _ := setupSQLStorage(t)
	ctx := context.Background()

	t.Run("Happy path - create and get keeps candidates in order", func(t *testing.T) {
		require.NoError(t, rooms.Create(ctx, newTestRoom("room-1")))

		got, err := rooms.Get(ctx, "room-1")
		require.NoError(t, err)
		assert.Equal(t, "점심 뭐먹지?", got.Name)
		require.Len(t, got.Candidates, 2)
		assert.Equal(t, "짜장면", got.Candidates[0].Value)
		assert.Equal(t, "짬뽕", got.Candidates[1].Value)
		assert.False(t, got.CreatedAt.IsZero(), "CreatedAt should be set on create")
	})

	t.Run("Unhappy path - missing room", func(t *testing.T) {
		_, err := rooms.Get(ctx, "nope")
		assert.ErrorIs(t, err, ErrRoomNotFound)
	})

	t.Run("Happy path - forward transitions", func(t *testing.T) {
		require.NoError(t, rooms.Create(ctx, newTestRoom("room-2")))

		room, err := rooms.TransitionStatus(ctx, "room-2", StatusWaiting, StatusVoting)
		require.NoError(t, err)
		assert.Equal(t, StatusVoting, room.Status)

		room, err = rooms.TransitionStatus(ctx, "room-2", StatusVoting, StatusClosed)
		require.NoError(t, err)
		assert.Equal(t, StatusClosed, room.Status)
	})

	t.Run("Unhappy path - stale transition is a conflict", func(t *testing.T) {
		require.NoError(t, rooms.Create(ctx, newTestRoom("room-3")))
		_, err := rooms.TransitionStatus(ctx, "room-3", StatusWaiting, StatusVoting)
		require.NoError(t, err)

		_, err = rooms.TransitionStatus(ctx, "room-3", StatusWaiting, StatusVoting)
		assert.ErrorIs(t, err, ErrStatusConflict)

		got, err := rooms.Get(ctx, "room-3")
		require.NoError(t, err)
		assert.Equal(t, StatusVoting, got.Status, "Status should not move")
	})

	t.Run("Unhappy path - transition on missing room", func(t *testing.T) {
		_, err := rooms.TransitionStatus(ctx, "ghost", StatusWaiting, StatusVoting)
		assert.ErrorIs(t, err, ErrRoomNotFound)
	})
}

func TestSQLParticipantStorage(t *testing.T) {
	rooms, participants, _ := setupSQLStorage(t)
	ctx := context.Background()
	base := time.Now().UTC()
	require.NoError(t, rooms.Create(ctx, newTestRoom("r1")))
	require.NoError(t, rooms.Create(ctx, newTestRoom("r2")))

	require.NoError(t, participants.Add(ctx, &Participant{ID: "p1", RoomID: "r1", Nickname: "방장", IsHost: true, JoinedAt: base}))
	require.NoError(t, participants.Add(ctx, &Participant{ID: "p2", RoomID: "r1", Nickname: "친구", JoinedAt: base.Add(time.Second)}))
	require.NoError(t, participants.Add(ctx, &Participant{ID: "p3", RoomID: "r2", Nickname: "방장", JoinedAt: base}))

	t.Run("Happy path - list in join order", func(t *testing.T) {
		list, err := participants.GetByRoom(ctx, "r1")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "방장", list[0].Nickname)
		assert.True(t, list[0].IsHost)
		assert.Equal(t, "친구", list[1].Nickname)
	})

	t.Run("Unhappy path - duplicate nickname in same room", func(t *testing.T) {
		err := participants.Add(ctx, &Participant{ID: "p4", RoomID: "r1", Nickname: "친구"})
		assert.ErrorIs(t, err, ErrNicknameTaken)
	})

	t.Run("Happy path - get scoped to room", func(t *testing.T) {
		p, err := participants.Get(ctx, "r1", "p2")
		require.NoError(t, err)
		assert.Equal(t, "친구", p.Nickname)

		_, err = participants.Get(ctx, "r2", "p2")
		assert.ErrorIs(t, err, ErrParticipantNotFound)
	})

	t.Run("Unhappy path - full room rejects the next participant", func(t *testing.T) {
		small := newTestRoom("small")
		small.MaxParticipants = 2
		require.NoError(t, rooms.Create(ctx, small))

		require.NoError(t, participants.Add(ctx, &Participant{ID: "s1", RoomID: "small", Nickname: "방장", IsHost: true}))
		require.NoError(t, participants.Add(ctx, &Participant{ID: "s2", RoomID: "small", Nickname: "철수"}))
		assert.ErrorIs(t, participants.Add(ctx, &Participant{ID: "s3", RoomID: "small", Nickname: "영희"}), ErrRoomFull)

		list, err := participants.GetByRoom(ctx, "small")
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	t.Run("Unhappy path - missing room", func(t *testing.T) {
		err := participants.Add(ctx, &Participant{ID: "g1", RoomID: "ghost", Nickname: "유령"})
		assert.ErrorIs(t, err, ErrRoomNotFound)
	})
}

func TestSQLVoteStorage(t *testing.T) {
	rooms, _, votes := setupSQLStorage(t)
	ctx := context.Background()
	for _, id := range []string{"r1", "r9"} {
		room := newTestRoom(id)
		room.Status = StatusVoting
		require.NoError(t, rooms.Create(ctx, room))
	}

	t.Run("Happy path - cast, change, delete", func(t *testing.T) {
		require.NoError(t, votes.Cast(ctx, &Vote{ID: "v1", RoomID: "r1", ParticipantID: "p1", CandidateID: "c1"}))

		v, err := votes.Get(ctx, "r1", "p1")
		require.NoError(t, err)
		assert.Equal(t, "c1", v.CandidateID)

		require.NoError(t, votes.Change(ctx, "r1", "p1", "c2"))
		v, err = votes.Get(ctx, "r1", "p1")
		require.NoError(t, err)
		assert.Equal(t, "c2", v.CandidateID)

		require.NoError(t, votes.Delete(ctx, "r1", "p1"))
		_, err = votes.Get(ctx, "r1", "p1")
		assert.ErrorIs(t, err, ErrVoteNotFound)
	})

	t.Run("Unhappy path - second cast is rejected", func(t *testing.T) {
		require.NoError(t, votes.Cast(ctx, &Vote{ID: "v2", RoomID: "r1", ParticipantID: "p2", CandidateID: "c1"}))
		err := votes.Cast(ctx, &Vote{ID: "v3", RoomID: "r1", ParticipantID: "p2", CandidateID: "c2"})
		assert.ErrorIs(t, err, ErrAlreadyVoted)
	})

	t.Run("Unhappy path - change or delete without a vote", func(t *testing.T) {
		assert.ErrorIs(t, votes.Change(ctx, "r1", "nobody", "c1"), ErrVoteNotFound)
		assert.ErrorIs(t, votes.Delete(ctx, "r1", "nobody"), ErrVoteNotFound)
	})

	t.Run("Happy path - list by room", func(t *testing.T) {
		require.NoError(t, votes.Cast(ctx, &Vote{ID: "v4", RoomID: "r9", ParticipantID: "p1", CandidateID: "c1"}))
		list, err := votes.GetByRoom(ctx, "r9")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "c1", list[0].CandidateID)
	})

	t.Run("Unhappy path - writes outside voting status", func(t *testing.T) {
		waiting := newTestRoom("waiting")
		require.NoError(t, rooms.Create(ctx, waiting))
		assert.ErrorIs(t, votes.Cast(ctx, &Vote{ID: "w1", RoomID: "waiting", ParticipantID: "p1", CandidateID: "c1"}), ErrRoomNotVoting)

		closing := newTestRoom("closing")
		closing.Status = StatusVoting
		require.NoError(t, rooms.Create(ctx, closing))
		require.NoError(t, votes.Cast(ctx, &Vote{ID: "x1", RoomID: "closing", ParticipantID: "p1", CandidateID: "c1"}))
		_, err := rooms.TransitionStatus(ctx, "closing", StatusVoting, StatusClosed)
		require.NoError(t, err)

		assert.ErrorIs(t, votes.Cast(ctx, &Vote{ID: "x2", RoomID: "closing", ParticipantID: "p2", CandidateID: "c2"}), ErrRoomNotVoting)
		assert.ErrorIs(t, votes.Change(ctx, "closing", "p1", "c2"), ErrRoomNotVoting)
		assert.ErrorIs(t, votes.Delete(ctx, "closing", "p1"), ErrRoomNotVoting)

		list, err := votes.GetByRoom(ctx, "closing")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "c1", list[0].CandidateID)

		assert.ErrorIs(t, votes.Cast(ctx, &Vote{ID: "g1", RoomID: "ghost", ParticipantID: "p1", CandidateID: "c1"}), ErrRoomNotFound)
	})
}

func TestRoomExpiry(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	room := newTestRoom("r")
	assert.False(t, room.IsExpired(now), "Rooms without deadline never expire")

	room.ExpiresAt = &past
	assert.True(t, room.IsExpired(now))

	room.ExpiresAt = &future
	room.Status = StatusVoting
	assert.True(t, room.CanVote(now))

	room.Status = StatusClosed
	assert.False(t, room.CanVote(now), "Closed rooms accept no votes")
	assert.True(t, room.HasCandidate("c1"))
	assert.False(t, room.HasCandidate("zz"))
}
