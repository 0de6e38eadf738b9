package tally

import (
	"github.com/daehan00/omechoo/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

var menus = []storage.Candidate{
	{ID: "c1", Value: "짜장면"},
	{ID: "c2", Value: "짬뽕"},
	{ID: "c3", Value: "탕수육"},
}

func vote(participant, candidate string) *storage.Vote {
	return &storage.Vote{RoomID: "room", ParticipantID: participant, CandidateID: candidate}
}

func TestAggregate(t *testing.T) {
	nicknames := map[string]string{"p1": "방장", "p2": "철수", "p3": "영희"}

	t.Run("Happy path - sorted by count with stable ties", func(t *testing.T) {
		results := Aggregate(menus, []*storage.Vote{vote("p1", "c3"), vote("p2", "c3"), vote("p3", "c2")}, nicknames)

		require.Len(t, results, 3)
		assert.Equal(t, "c3", results[0].Candidate.ID)
		assert.Equal(t, 2, results[0].VoteCount)
		assert.ElementsMatch(t, []string{"방장", "철수"}, results[0].Voters)
		assert.Equal(t, "c2", results[1].Candidate.ID)
		assert.Equal(t, "c1", results[2].Candidate.ID)
		assert.Equal(t, 0, results[2].VoteCount)
		assert.Empty(t, results[2].Voters)
	})

	t.Run("Happy path - unknown candidate ignored", func(t *testing.T) {
		results := Aggregate(menus, []*storage.Vote{vote("p1", "ghost")}, nicknames)
		for _, r := range results {
			assert.Zero(t, r.VoteCount)
		}
	})
}

func TestWinner(t *testing.T) {
	t.Run("Happy path - unanimous", func(t *testing.T) {
		results := Aggregate(menus, []*storage.Vote{vote("p1", "c1"), vote("p2", "c1")}, nil)
		winner := Winner(results)
		require.NotNil(t, winner)
		assert.Equal(t, "짜장면", winner.Value)
		assert.Equal(t, 2, results[0].VoteCount)
	})

	t.Run("Happy path - tie has no winner", func(t *testing.T) {
		results := Aggregate(menus, []*storage.Vote{vote("p1", "c1"), vote("p2", "c2")}, nil)
		assert.Nil(t, Winner(results))
	})

	t.Run("Happy path - no votes has no winner", func(t *testing.T) {
		assert.Nil(t, Winner(Aggregate(menus, nil, nil)))
	})
}

func TestLeader(t *testing.T) {
	cases := []struct {
		name   string
		counts []int
		index  int
		ok     bool
	}{
		{"single max", []int{1, 3, 2}, 1, true},
		{"tie at top", []int{3, 1, 3}, -1, false},
		{"tie below top", []int{1, 1, 4}, 2, true},
		{"all zero", []int{0, 0}, -1, false},
		{"empty", nil, -1, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			i, ok := Leader(tc.counts)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.index, i)
		})
	}
}
