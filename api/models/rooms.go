package models

import (
	"github.com/daehan00/omechoo/storage"
	"github.com/daehan00/omechoo/tally"
	"time"
)

const (
	DefaultMaxParticipants  = 10
	DefaultExpiresInMinutes = 30
)

type CandidateInput struct {
	Value       string  `json:"value" binding:"required,min=1"`
	DisplayName *string `json:"display_name"`
}

type CreateRoomRequest struct {
	Name             string           `json:"name" binding:"required,min=1,max=50"`
	HostNickname     string           `json:"host_nickname" binding:"required,min=1,max=20"`
	CandidateType    string           `json:"candidate_type" binding:"required,oneof=menu restaurant"`
	Candidates       []CandidateInput `json:"candidates" binding:"required,min=2,max=10,dive"`
	MaxParticipants  int              `json:"max_participants" binding:"omitempty,min=2,max=50"`
	ExpiresInMinutes *int             `json:"expires_in_minutes" binding:"omitempty,min=5,max=60"`
}

type JoinRoomRequest struct {
	Nickname string `json:"nickname" binding:"required,min=1,max=20"`
}

type CastVoteRequest struct {
	CandidateID string `json:"candidate_id" binding:"required"`
}

// ChangeVoteRequest moves a vote to another candidate. A null or missing NewCandidateID cancels the vote.
type ChangeVoteRequest struct {
	NewCandidateID *string `json:"new_candidate_id"`
}

type CandidateResponse struct {
	ID          string  `json:"id"`
	Value       string  `json:"value"`
	DisplayName *string `json:"display_name"`
}

// ParticipantResponse leaves out the participant id.
type ParticipantResponse struct {
	Nickname string    `json:"nickname"`
	IsHost   bool      `json:"is_host"`
	JoinedAt time.Time `json:"joined_at"`
}

type VoteResultResponse struct {
	Candidate CandidateResponse `json:"candidate"`
	VoteCount int               `json:"vote_count"`
	Voters    []string          `json:"voters"`
}

type RoomResponse struct {
	ID               string              `json:"id"`
	Name             string              `json:"name"`
	CandidateType    string              `json:"candidate_type"`
	Candidates       []CandidateResponse `json:"candidates"`
	Status           string              `json:"status"`
	MaxParticipants  int                 `json:"max_participants"`
	ParticipantCount int                 `json:"participant_count"`
	ExpiresAt        *time.Time          `json:"expires_at"`
	CreatedAt        time.Time           `json:"created_at"`
}

type RoomDetailResponse struct {
	Room         RoomResponse          `json:"room"`
	Participants []ParticipantResponse `json:"participants"`
	Results      []VoteResultResponse  `json:"results"`
	MyVote       *string               `json:"my_vote"`
}

type JoinRoomResponse struct {
	Token    string       `json:"token"`
	Nickname string       `json:"nickname"`
	IsHost   bool         `json:"is_host"`
	Room     RoomResponse `json:"room"`
}

type CreateRoomResponse struct {
	RoomID   string `json:"room_id"`
	ShareURL string `json:"share_url"`
	Token    string `json:"token"`
}

type VoteResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	Results []VoteResultResponse `json:"results"`
}

// CloseRoomResponse always carries the winner key; it is null on a tie or when nobody voted.
type CloseRoomResponse struct {
	Success      bool                 `json:"success"`
	FinalResults []VoteResultResponse `json:"final_results"`
	Winner       *CandidateResponse   `json:"winner"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

func TransformCandidateFromStorage(c storage.Candidate) CandidateResponse {
	return CandidateResponse{
		ID:          c.ID,
		Value:       c.Value,
		DisplayName: c.DisplayName,
	}
}

func TransformRoomFromStorage(room *storage.Room, participantCount int) RoomResponse {
	candidates := make([]CandidateResponse, 0, len(room.Candidates))
	for _, c := range room.Candidates {
		candidates = append(candidates, TransformCandidateFromStorage(c))
	}
	return RoomResponse{
		ID:               room.ID,
		Name:             room.Name,
		CandidateType:    string(room.CandidateType),
		Candidates:       candidates,
		Status:           string(room.Status),
		MaxParticipants:  room.MaxParticipants,
		ParticipantCount: participantCount,
		ExpiresAt:        room.ExpiresAt,
		CreatedAt:        room.CreatedAt,
	}
}

func TransformParticipantsFromStorage(participants []*storage.Participant) []ParticipantResponse {
	out := make([]ParticipantResponse, 0, len(participants))
	for _, p := range participants {
		out = append(out, ParticipantResponse{Nickname: p.Nickname, IsHost: p.IsHost, JoinedAt: p.JoinedAt})
	}
	return out
}

func TransformResults(results []tally.Result) []VoteResultResponse {
	out := make([]VoteResultResponse, 0, len(results))
	for _, r := range results {
		out = append(out, VoteResultResponse{
			Candidate: TransformCandidateFromStorage(r.Candidate),
			VoteCount: r.VoteCount,
			Voters:    r.Voters,
		})
	}
	return out
}
