package storage

import (
	"context"
	"errors"
	"fmt"
	"github.com/daehan00/omechoo/logging"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	"time"
)

// OpenSQL opens a gorm database for the "sqlite" or "postgres" driver and migrates the room tables.
func OpenSQL(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	if driver == "sqlite" {
		// every sqlite connection to :memory: is a separate database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&Room{}, &Participant{}, &Vote{}); err != nil {
		return nil, fmt.Errorf("failed to migrate %s database: %w", driver, err)
	}
	return db, nil
}

type SQLRoomStorage struct {
	DB *gorm.DB
}

func (s *SQLRoomStorage) Create(ctx context.Context, room *Room) error {
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now().UTC()
	}
	if err := s.DB.WithContext(ctx).Create(room).Error; err != nil {
		logging.Log.Errorf("ROOM: failed to create room %s: %v", room.ID, err)
		return fmt.Errorf("failed to create room: %w", err)
	}
	return nil
}

func (s *SQLRoomStorage) Get(ctx context.Context, id string) (*Room, error) {
	var room Room
	if err := s.DB.WithContext(ctx).First(&room, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		logging.Log.Errorf("ROOM: get failed: %v", err)
		return nil, fmt.Errorf("failed to find room: %w", err)
	}
	return &room, nil
}

func (s *SQLRoomStorage) TransitionStatus(ctx context.Context, id string, from, to RoomStatus) (*Room, error) {
	result := s.DB.WithContext(ctx).Model(&Room{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if err := result.Error; err != nil {
		logging.Log.Errorf("ROOM: failed to move room %s from %s to %s: %v", id, from, to, err)
		return nil, fmt.Errorf("failed to update room status: %w", err)
	}

	room, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if result.RowsAffected == 0 {
		return nil, ErrStatusConflict
	}
	return room, nil
}

// lockRoom reads a room inside tx and holds its row until tx ends. sqlite has no row locks; its
// write transactions are serialized instead.
func lockRoom(tx *gorm.DB, id string) (*Room, error) {
	var room Room
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&room, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to lock room: %w", err)
	}
	return &room, nil
}

type SQLParticipantStorage struct {
	DB *gorm.DB
}

func (s *SQLParticipantStorage) Add(ctx context.Context, participant *Participant) error {
	if participant.JoinedAt.IsZero() {
		participant.JoinedAt = time.Now().UTC()
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := lockRoom(tx, participant.RoomID)
		if err != nil {
			return err
		}
		var count int64
		if err := tx.Model(&Participant{}).Where("room_id = ?", room.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count participants: %w", err)
		}
		if count >= int64(room.MaxParticipants) {
			return ErrRoomFull
		}
		if err := tx.Create(participant).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrNicknameTaken
			}
			return fmt.Errorf("failed to add participant: %w", err)
		}
		return nil
	})
	if err != nil && !isSentinel(err) {
		logging.Log.Errorf("PARTICIPANT: failed to add %s to room %s: %v", participant.Nickname, participant.RoomID, err)
	}
	return err
}

func (s *SQLParticipantStorage) Get(ctx context.Context, roomID, participantID string) (*Participant, error) {
	var participant Participant
	err := s.DB.WithContext(ctx).First(&participant, "id = ? AND room_id = ?", participantID, roomID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to find participant: %w", err)
	}
	return &participant, nil
}

func (s *SQLParticipantStorage) GetByRoom(ctx context.Context, roomID string) ([]*Participant, error) {
	var participants []*Participant
	err := s.DB.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("joined_at ASC").
		Find(&participants).Error
	if err != nil {
		logging.Log.Errorf("PARTICIPANT: failed to list participants of room %s: %v", roomID, err)
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return participants, nil
}

type SQLVoteStorage struct {
	DB *gorm.DB
}

// inVotingRoom runs fn in a transaction that holds the room row and has seen it in voting status.
func (s *SQLVoteStorage) inVotingRoom(ctx context.Context, roomID string, fn func(tx *gorm.DB) error) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := lockRoom(tx, roomID)
		if err != nil {
			return err
		}
		if room.Status != StatusVoting {
			return ErrRoomNotVoting
		}
		return fn(tx)
	})
	if err != nil && !isSentinel(err) {
		logging.Log.Errorf("VOTE: write in room %s failed: %v", roomID, err)
	}
	return err
}

func (s *SQLVoteStorage) Cast(ctx context.Context, vote *Vote) error {
	if vote.VotedAt.IsZero() {
		vote.VotedAt = time.Now().UTC()
	}
	return s.inVotingRoom(ctx, vote.RoomID, func(tx *gorm.DB) error {
		if err := tx.Create(vote).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyVoted
			}
			return fmt.Errorf("failed to create vote: %w", err)
		}
		return nil
	})
}

func (s *SQLVoteStorage) Get(ctx context.Context, roomID, participantID string) (*Vote, error) {
	var vote Vote
	err := s.DB.WithContext(ctx).First(&vote, "room_id = ? AND participant_id = ?", roomID, participantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVoteNotFound
		}
		return nil, fmt.Errorf("failed to find vote: %w", err)
	}
	return &vote, nil
}

func (s *SQLVoteStorage) Change(ctx context.Context, roomID, participantID, candidateID string) error {
	return s.inVotingRoom(ctx, roomID, func(tx *gorm.DB) error {
		result := tx.Model(&Vote{}).
			Where("room_id = ? AND participant_id = ?", roomID, participantID).
			Updates(map[string]any{"candidate_id": candidateID, "voted_at": time.Now().UTC()})
		if err := result.Error; err != nil {
			return fmt.Errorf("failed to change vote: %w", err)
		}
		if result.RowsAffected == 0 {
			return ErrVoteNotFound
		}
		return nil
	})
}

func (s *SQLVoteStorage) Delete(ctx context.Context, roomID, participantID string) error {
	return s.inVotingRoom(ctx, roomID, func(tx *gorm.DB) error {
		result := tx.Where("room_id = ? AND participant_id = ?", roomID, participantID).Delete(&Vote{})
		if err := result.Error; err != nil {
			return fmt.Errorf("failed to delete vote: %w", err)
		}
		if result.RowsAffected == 0 {
			return ErrVoteNotFound
		}
		return nil
	})
}

func (s *SQLVoteStorage) GetByRoom(ctx context.Context, roomID string) ([]*Vote, error) {
	var votes []*Vote
	err := s.DB.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("voted_at ASC").
		Find(&votes).Error
	if err != nil {
		logging.Log.Errorf("VOTE: failed to list votes of room %s: %v", roomID, err)
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	return votes, nil
}
