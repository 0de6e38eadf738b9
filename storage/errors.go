package storage

import "errors"

var ErrRoomNotFound = errors.New("room not found in storage")
var ErrParticipantNotFound = errors.New("participant not found in storage")
var ErrNicknameTaken = errors.New("nickname already taken in room")
var ErrAlreadyVoted = errors.New("participant already voted")
var ErrVoteNotFound = errors.New("vote not found in storage")
var ErrStatusConflict = errors.New("room status changed concurrently")
var ErrRoomFull = errors.New("room is full")
var ErrRoomNotVoting = errors.New("room is not accepting votes")

// isSentinel reports whether err is one of the expected outcomes above rather than a backend failure.
func isSentinel(err error) bool {
	for _, sentinel := range []error{
		ErrRoomNotFound, ErrParticipantNotFound, ErrNicknameTaken, ErrAlreadyVoted,
		ErrVoteNotFound, ErrStatusConflict, ErrRoomFull, ErrRoomNotVoting,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
