package controllers

import (
	"errors"
	"fmt"
	"github.com/daehan00/omechoo/api/models"
	"github.com/daehan00/omechoo/api/transport"
	"github.com/daehan00/omechoo/logging"
	"github.com/daehan00/omechoo/storage"
	"github.com/gin-gonic/gin"
	"github.com/matoous/go-nanoid/v2"
	"net/http"
)

// castVote godoc
// @Summary Cast a vote
// @Description Registers the caller's single vote. Changing an existing vote goes through PATCH
// @Tags voting
// @Accept json
// @Produce json
// @Security BearerToken
// @Param id path string true "Room ID"
// @Param vote body models.CastVoteRequest true "Chosen candidate"
// @Success 200 {object} models.VoteResponse
// @Failure 400 {object} models.ErrorResponse "Room not voting or invalid candidate"
// @Failure 401 {object} models.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} models.ErrorResponse "Token for another room"
// @Failure 404 {object} models.ErrorResponse "Room or participant not found"
// @Failure 409 {object} models.ErrorResponse "Already voted"
// @Failure 410 {object} models.ErrorResponse "Room expired"
// @Router /api/rooms/{id}/vote [post]
func (c *RoomController) castVote(g *gin.Context) {
	var req models.CastVoteRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, models.NewError(models.CodeBadRequest, "invalid request format"))
		return
	}

	room, participantID, ok := c.votableRoom(g)
	if !ok {
		return
	}
	if !room.HasCandidate(req.CandidateID) {
		g.JSON(http.StatusBadRequest, models.NewError(models.CodeInvalidCandidate, "Invalid candidate"))
		return
	}

	voteID, err := gonanoid.Generate(idAlphabet, 12)
	if err != nil {
		logging.Log.Errorf("VOTE: failed to generate vote id: %v", err)
		g.JSON(http.StatusInternalServerError, models.NewError(models.CodeInternal, "could not save vote"))
		return
	}

	vote := &storage.Vote{
		ID:            voteID,
		RoomID:        room.ID,
		ParticipantID: participantID,
		CandidateID:   req.CandidateID,
		VotedAt:       c.now().UTC(),
	}
	if err := c.votesStorage.Cast(g.Request.Context(), vote); err != nil {
		if errors.Is(err, storage.ErrAlreadyVoted) {
			g.JSON(http.StatusConflict, models.NewError(models.CodeAlreadyVoted, "Already voted. Use PATCH to change vote."))
			return
		}
		if errors.Is(err, storage.ErrRoomNotVoting) {
			notVoting(g)
			return
		}
		g.JSON(http.StatusInternalServerError, models.NewError(models.CodeInternal, "could not save vote"))
		return
	}

	logging.Log.Infof("VOTE: %s voted in room %s", participantID, room.ID)
	c.respondResults(g, room, "Vote registered")
}

// changeVote godoc
// @Summary Change or cancel a vote
// @Description Moves the caller's vote to another candidate. A null new_candidate_id cancels the vote
// @Tags voting
// @Accept json
// @Produce json
// @Security BearerToken
// @Param id path string true "Room ID"
// @Param vote body models.ChangeVoteRequest true "New candidate or null"
// @Success 200 {object} models.VoteResponse
// @Failure 400 {object} models.ErrorResponse "Room not voting or invalid candidate"
// @Failure 401 {object} models.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} models.ErrorResponse "Token for another room"
// @Failure 404 {object} models.ErrorResponse "Vote not found"
// @Failure 410 {object} models.ErrorResponse "Room expired"
// @Router /api/rooms/{id}/vote [patch]
func (c *RoomController) changeVote(g *gin.Context) {
	var req models.ChangeVoteRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, models.NewError(models.CodeBadRequest, "invalid request format"))
		return
	}

	room, participantID, ok := c.votableRoom(g)
	if !ok {
		return
	}

	ctx := g.Request.Context()
	var err error
	message := "Vote cancelled"
	if req.NewCandidateID == nil {
		err = c.votesStorage.Delete(ctx, room.ID, participantID)
	} else {
		if !room.HasCandidate(*req.NewCandidateID) {
			g.JSON(http.StatusBadRequest, models.NewError(models.CodeInvalidCandidate, "Invalid candidate"))
			return
		}
		message = "Vote changed"
		err = c.votesStorage.Change(ctx, room.ID, participantID, *req.NewCandidateID)
	}
	if err != nil {
		if errors.Is(err, storage.ErrVoteNotFound) {
			g.JSON(http.StatusNotFound, models.NewError(models.CodeVoteNotFound, "Vote not found"))
			return
		}
		if errors.Is(err, storage.ErrRoomNotVoting) {
			notVoting(g)
			return
		}
		g.JSON(http.StatusInternalServerError, models.NewError(models.CodeInternal, "could not update vote"))
		return
	}

	logging.Log.Infof("VOTE: %s in room %s: %s", participantID, room.ID, message)
	c.respondResults(g, room, message)
}

// votableRoom loads the room and the caller and checks that votes are accepted.
func (c *RoomController) votableRoom(g *gin.Context) (*storage.Room, string, bool) {
	claims, ok := transport.ClaimsFromContext(g)
	if !ok {
		g.JSON(http.StatusUnauthorized, models.NewError(models.CodeUnauthorized, "missing bearer token"))
		return nil, "", false
	}

	room, ok := c.loadRoom(g)
	if !ok {
		return nil, "", false
	}
	if room.IsExpired(c.now()) {
		g.JSON(http.StatusGone, models.NewError(models.CodeRoomExpired, "Room has expired"))
		return nil, "", false
	}
	if room.Status != storage.StatusVoting {
		g.JSON(http.StatusBadRequest, models.NewError(models.CodeRoomNotVoting, fmt.Sprintf("Room is not in voting status: %s", room.Status)))
		return nil, "", false
	}

	if _, err := c.participantsStorage.Get(g.Request.Context(), room.ID, claims.ParticipantID); err != nil {
		if errors.Is(err, storage.ErrParticipantNotFound) {
			g.JSON(http.StatusNotFound, models.NewError(models.CodeParticipantNotFound, "Participant not found"))
			return nil, "", false
		}
		g.JSON(http.StatusInternalServerError, models.NewError(models.CodeInternal, "could not load participant"))
		return nil, "", false
	}
	return room, claims.ParticipantID, true
}

// notVoting answers a write that lost against a close or start committed after the room was read.
func notVoting(g *gin.Context) {
	g.JSON(http.StatusBadRequest, models.NewError(models.CodeRoomNotVoting, "Room is not in voting status"))
}

func (c *RoomController) respondResults(g *gin.Context, room *storage.Room, message string) {
	_, results, err := c.tallyRoom(g.Request.Context(), room)
	if err != nil {
		g.JSON(http.StatusInternalServerError, models.NewError(models.CodeInternal, "could not compute results"))
		return
	}
	g.JSON(http.StatusOK, &models.VoteResponse{
		Success: true,
		Message: message,
		Results: models.TransformResults(results),
	})
}
