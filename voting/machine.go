// Package voting drives one participant through a room: join, start, vote and close,
// gating each action on the room status and the participant's own token.
package voting

import (
	"context"
	"errors"
	"github.com/daehan00/omechoo/api/models"
	"github.com/daehan00/omechoo/client"
	"github.com/daehan00/omechoo/logging"
	"github.com/daehan00/omechoo/session"
	"github.com/daehan00/omechoo/tally"
	"strings"
)

var (
	ErrJoinRequired          = errors.New("join the room before voting")
	ErrEmptyNickname         = errors.New("nickname is empty")
	ErrNicknameTaken         = errors.New("nickname already taken")
	ErrRoomExpired           = errors.New("room has expired")
	ErrNotHost               = errors.New("only the host can do this")
	ErrNotVoting             = errors.New("room is not accepting votes")
	ErrNotWaiting            = errors.New("voting has already started")
	ErrNotEnoughParticipants = errors.New("at least 2 participants are needed")
	ErrRoomClosed            = errors.New("room is closed")
	ErrUnknownCandidate      = errors.New("candidate is not in this room")
)

// RoomAPI is the part of the room client the machine uses.
type RoomAPI interface {
	JoinRoom(ctx context.Context, roomID, nickname string) (*models.JoinRoomResponse, error)
	StartVoting(ctx context.Context, roomID string) (*models.RoomResponse, error)
	CastVote(ctx context.Context, roomID, candidateID string) (*models.VoteResponse, error)
	ChangeVote(ctx context.Context, roomID string, candidateID *string) (*models.VoteResponse, error)
	CloseRoom(ctx context.Context, roomID string) (*client.CloseResult, error)
}

// Refresher is told to re-read the room after a successful mutation.
type Refresher interface {
	Refresh()
}

type Outcome string

const (
	Cast      Outcome = "cast"
	Changed   Outcome = "changed"
	Cancelled Outcome = "cancelled"
)

// Actions lists what the current participant may do in the room as last seen.
type Actions struct {
	Join     bool
	Start    bool
	Vote     bool
	Close    bool
	ReadOnly bool
}

func ActionsFor(detail *models.RoomDetailResponse, id session.Identity) Actions {
	if detail == nil {
		return Actions{}
	}
	switch detail.Room.Status {
	case "waiting":
		return Actions{
			Join:  !id.Authenticated,
			Start: id.Authenticated && id.IsHost && detail.Room.ParticipantCount >= 2,
			Close: id.Authenticated && id.IsHost,
		}
	case "voting":
		return Actions{
			Join:  !id.Authenticated,
			Vote:  id.Authenticated,
			Close: id.Authenticated && id.IsHost,
		}
	default:
		return Actions{ReadOnly: true}
	}
}

// Decision is the outcome of a closed room.
type Decision struct {
	Results []models.VoteResultResponse
	Winner  *models.CandidateResponse
	// FromServer is false when the server did not report a winner and it was computed locally.
	FromServer bool
}

type Machine struct {
	api       RoomAPI
	identity  *session.IdentityView
	refresher Refresher
	roomID    string
}

func New(api RoomAPI, identity *session.IdentityView, roomID string, refresher Refresher) *Machine {
	return &Machine{api: api, identity: identity, roomID: roomID, refresher: refresher}
}

func (m *Machine) Identity() session.Identity {
	return m.identity.Identity(m.roomID)
}

func (m *Machine) refresh() {
	if m.refresher != nil {
		m.refresher.Refresh()
	}
}

// Join trims the nickname and rejects an empty one before calling the server.
func (m *Machine) Join(ctx context.Context, nickname string) (*models.JoinRoomResponse, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil, ErrEmptyNickname
	}

	joined, err := m.api.JoinRoom(ctx, m.roomID, nickname)
	switch {
	case err == nil:
	case client.IsConflict(err):
		return nil, ErrNicknameTaken
	case client.IsGone(err):
		return nil, ErrRoomExpired
	default:
		return nil, err
	}

	logging.Log.Infof("VOTE: joined room %s as %s", m.roomID, joined.Nickname)
	m.refresh()
	return joined, nil
}

func (m *Machine) Start(ctx context.Context, detail *models.RoomDetailResponse) error {
	id := m.Identity()
	switch {
	case !id.Authenticated:
		return ErrJoinRequired
	case !id.IsHost:
		return ErrNotHost
	case detail.Room.Status != "waiting":
		return ErrNotWaiting
	case detail.Room.ParticipantCount < 2:
		return ErrNotEnoughParticipants
	}

	if _, err := m.api.StartVoting(ctx, m.roomID); err != nil {
		return err
	}
	m.refresh()
	return nil
}

// Vote applies the toggle rule against the room's my_vote: no vote casts, the same candidate
// cancels, another candidate changes. A cast that the server rejects as already voted is
// retried once as a change.
func (m *Machine) Vote(ctx context.Context, detail *models.RoomDetailResponse, candidateID string) (*models.VoteResponse, Outcome, error) {
	if !m.Identity().Authenticated {
		return nil, "", ErrJoinRequired
	}
	switch detail.Room.Status {
	case "voting":
	case "closed":
		return nil, "", ErrRoomClosed
	default:
		return nil, "", ErrNotVoting
	}
	if !hasCandidate(detail, candidateID) {
		return nil, "", ErrUnknownCandidate
	}

	var (
		res     *models.VoteResponse
		outcome Outcome
		err     error
	)
	switch {
	case detail.MyVote == nil:
		outcome = Cast
		res, err = m.api.CastVote(ctx, m.roomID, candidateID)
		if client.IsAlreadyVoted(err) {
			logging.Log.Infof("VOTE: room %s already has our vote, changing instead", m.roomID)
			outcome = Changed
			res, err = m.api.ChangeVote(ctx, m.roomID, &candidateID)
		}
	case *detail.MyVote == candidateID:
		outcome = Cancelled
		res, err = m.api.ChangeVote(ctx, m.roomID, nil)
	default:
		outcome = Changed
		res, err = m.api.ChangeVote(ctx, m.roomID, &candidateID)
	}
	if err != nil {
		return nil, "", err
	}

	m.refresh()
	return res, outcome, nil
}

func (m *Machine) Close(ctx context.Context, detail *models.RoomDetailResponse) (*Decision, error) {
	id := m.Identity()
	switch {
	case !id.Authenticated:
		return nil, ErrJoinRequired
	case !id.IsHost:
		return nil, ErrNotHost
	case detail.Room.Status == "closed":
		return nil, ErrRoomClosed
	}

	closed, err := m.api.CloseRoom(ctx, m.roomID)
	if err != nil {
		return nil, err
	}
	m.refresh()

	if closed.WinnerPresent {
		return &Decision{Results: closed.FinalResults, Winner: closed.Winner, FromServer: true}, nil
	}
	return &Decision{Results: closed.FinalResults, Winner: WinnerOf(closed.FinalResults)}, nil
}

// WinnerOf picks the single top candidate of a result list, or nil on a tie or no votes.
func WinnerOf(results []models.VoteResultResponse) *models.CandidateResponse {
	counts := make([]int, len(results))
	for i, r := range results {
		counts[i] = r.VoteCount
	}
	i, ok := tally.Leader(counts)
	if !ok {
		return nil
	}
	winner := results[i].Candidate
	return &winner
}

func hasCandidate(detail *models.RoomDetailResponse, candidateID string) bool {
	for _, c := range detail.Room.Candidates {
		if c.ID == candidateID {
			return true
		}
	}
	return false
}
