package storage

import "time"

type RoomStatus string

const (
	StatusWaiting RoomStatus = "waiting"
	StatusVoting  RoomStatus = "voting"
	StatusClosed  RoomStatus = "closed"
)

type CandidateType string

const (
	CandidateMenu       CandidateType = "menu"
	CandidateRestaurant CandidateType = "restaurant"
)

type Candidate struct {
	ID          string  `dynamodbav:"ID" json:"id"`
	Value       string  `dynamodbav:"Value" json:"value"`
	DisplayName *string `dynamodbav:"DisplayName,omitempty" json:"display_name,omitempty"`
}

type Room struct {
	ID              string        `dynamodbav:"PK" gorm:"primaryKey"`
	Name            string        `dynamodbav:"Name"`
	HostID          string        `dynamodbav:"HostID"`
	CandidateType   CandidateType `dynamodbav:"CandidateType"`
	Candidates      []Candidate   `dynamodbav:"Candidates" gorm:"serializer:json"`
	Status          RoomStatus    `dynamodbav:"Status" gorm:"index"`
	MaxParticipants int           `dynamodbav:"MaxParticipants"`
	ExpiresAt       *time.Time    `dynamodbav:"ExpiresAt,omitempty"`
	CreatedAt       time.Time     `dynamodbav:"CreatedAt"`
}

// IsExpired reports whether the room's deadline has passed. Rooms without a deadline never expire.
func (r *Room) IsExpired(now time.Time) bool {
	return r.ExpiresAt != nil && now.After(*r.ExpiresAt)
}

func (r *Room) CanVote(now time.Time) bool {
	return r.Status == StatusVoting && !r.IsExpired(now)
}

func (r *Room) HasCandidate(id string) bool {
	for _, c := range r.Candidates {
		if c.ID == id {
			return true
		}
	}
	return false
}

type Participant struct {
	RoomID   string    `dynamodbav:"PK" gorm:"uniqueIndex:idx_room_nickname"`
	Nickname string    `dynamodbav:"SK" gorm:"uniqueIndex:idx_room_nickname"`
	ID       string    `dynamodbav:"ID" gorm:"primaryKey"`
	IsHost   bool      `dynamodbav:"IsHost"`
	JoinedAt time.Time `dynamodbav:"JoinedAt"`
}

// Vote is keyed by room and participant, so a participant holds at most one vote per room.
type Vote struct {
	RoomID        string    `dynamodbav:"PK" gorm:"primaryKey"`
	ParticipantID string    `dynamodbav:"SK" gorm:"primaryKey"`
	ID            string    `dynamodbav:"ID"`
	CandidateID   string    `dynamodbav:"CandidateID"`
	VotedAt       time.Time `dynamodbav:"VotedAt"`
}
