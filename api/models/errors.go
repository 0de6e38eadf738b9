package models

// Machine readable error codes returned in ErrorResponse.Code.
const (
	CodeRoomNotFound          = "ROOM_NOT_FOUND"
	CodeRoomExpired           = "ROOM_EXPIRED"
	CodeRoomFull              = "ROOM_FULL"
	CodeNicknameTaken         = "NICKNAME_TAKEN"
	CodeAlreadyVoted          = "ALREADY_VOTED"
	CodeVoteNotFound          = "VOTE_NOT_FOUND"
	CodeParticipantNotFound   = "PARTICIPANT_NOT_FOUND"
	CodeRoomNotVoting         = "ROOM_NOT_VOTING"
	CodeInvalidCandidate      = "INVALID_CANDIDATE"
	CodeInvalidTransition     = "INVALID_TRANSITION"
	CodeNotEnoughParticipants = "NOT_ENOUGH_PARTICIPANTS"
	CodeUnauthorized          = "UNAUTHORIZED"
	CodeForbidden             = "FORBIDDEN"
	CodeBadRequest            = "BAD_REQUEST"
	CodePageNotFound          = "PAGE_NOT_FOUND"
	CodeInternal              = "INTERNAL"
)

type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func NewError(code, message string) *ErrorResponse {
	return &ErrorResponse{Code: code, Error: message}
}
