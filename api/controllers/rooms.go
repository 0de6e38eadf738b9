package controllers

import (
	"context"
	"errors"
	"fmt"
	"github.com/daehan00/omechoo/api/models"
	"github.com/daehan00/omechoo/api/transport"
	"github.com/daehan00/omechoo/logging"
	"github.com/daehan00/omechoo/storage"
	"github.com/daehan00/omechoo/tally"
	"github.com/daehan00/omechoo/token"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/matoous/go-nanoid/v2"
	"net/http"
	"strings"
	"time"
)

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

type RoomController struct {
	roomsStorage        storage.RoomStorage
	participantsStorage storage.ParticipantStorage
	votesStorage        storage.VoteStorage
	issuer              *token.Issuer
	baseURL             string
	now                 func() time.Time
}

func NewRoomController(rooms storage.RoomStorage, participants storage.ParticipantStorage, votes storage.VoteStorage, issuer *token.Issuer, baseURL string) *RoomController {
	return &RoomController{
		roomsStorage:        rooms,
		participantsStorage: participants,
		votesStorage:        votes,
		issuer:              issuer,
		baseURL:             strings.TrimRight(baseURL, "/"),
		now:                 time.Now,
	}
}

func (c *RoomController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api/rooms")

	group.POST("", c.createRoom)
	group.GET("/:id", transport.OptionalBearerAuth(c.issuer), c.getRoom)
	group.POST("/:id/join", c.joinRoom)

	member := group.Group("/:id", transport.BearerAuth(c.issuer), transport.RequireRoomMatch())
	member.POST("/vote", c.castVote)
	member.PATCH("/vote", c.changeVote)

	host := member.Group("", transport.RequireHost())
	host.POST("/start", c.startVoting)
	host.POST("/close", c.closeRoom)
}

// createRoom godoc
// @Summary Create a voting room
// @Description Creates a room with its candidates and registers the creator as host
// @Tags rooms
// @Accept json
// @Produce json
// @Param room body models.CreateRoomRequest true "Room to create"
// @Success 201 {object} models.CreateRoomResponse
// @Failure 400 {object} models.ErrorResponse "Invalid room data"
// @Failure 500 {object} models.ErrorResponse "Unexpected internal error"
// @Router /api/rooms [post]
func (c *RoomController) createRoom(g *gin.Context) {
	var req models.CreateRoomRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, models.NewError(models.CodeBadRequest, err.Error()))
		return
	}

	hostNickname := strings.TrimSpace(req.HostNickname)
	if hostNickname == "" {
		g.JSON(http.StatusBadRequest, models.NewError(models.CodeBadRequest, "host nickname is required"))
		return
	}

	// Candidate values must be unique within a room
	seen := make(map[string]bool, len(req.Candidates))
	candidates := make([]storage.Candidate, 0, len(req.Candidates))
	for _, in := range req.Candidates {
		if seen[in.Value] {
			g.JSON(http.StatusBadRequest, models.NewError(models.CodeBadRequest, "candidates must be unique"))
			return
		}
		seen[in.Value] = true

		id, err := gonanoid.Generate(idAlphabet, 12)
		if err != nil {
			logging.Log.Errorf("ROOM: failed to generate candidate id: %v", err)
			g.JSON(http.StatusInternalServerError, models.NewError(models.CodeInternal, "could not create room"))
			return
		}
		candidates = append(candidates, storage.Candidate{ID: id, Value: in.Value, DisplayName: in.DisplayName})
	}

	maxParticipants := req.MaxParticipants
	if maxParticipants == 0 {
		maxParticipants = models.DefaultMaxParticipants
	}
	expiresIn := models.DefaultExpiresInMinutes
	if req.ExpiresInMinutes != nil {
		expiresIn = *req.ExpiresInMinutes
	}

	now := c.now().UTC()
	expiresAt := now.Add(time.Duration(expiresIn) * time.Minute)
	room := &storage.Room{
		ID:              uuid.NewString(),
		Name:            req.Name,
		HostID:          uuid.NewString(),
		CandidateType:   storage.CandidateType(req.CandidateType),
		Candidates:      candidates,
		Status:          storage.StatusWaiting,
		MaxParticipants: maxParticipants,
		ExpiresAt:       &expiresAt,
		CreatedAt:       now,
	}

	ctx := g.Request.Context()
	if err := c.roomsStorage.Create(ctx, room); err != nil {
		g.JSON(http.StatusInternalServerError, models.NewError(models.CodeInternal, "could not create room"))
		return
	}

	host := &storage.Participant{ID: room.HostID, RoomID: room.ID, Nickname: hostNickname, IsHost: true, JoinedAt: now}
	if err := c.participantsStorage.Add(ctx, host); err != nil {
		g.JSON(http.StatusInternalServerError, models.NewError(models.CodeInternal, "could not register host"))
		return
	}

	signed, err := c.issuer.Issue(room.ID, host.ID, host.Nickname, true)
	if err != nil {
		logging.Log.Errorf("ROOM: failed to issue host token for room %s: %v", room.ID, err)
		g.JSON(http.StatusInternalServerError, models.NewError(models.CodeInternal, "could not issue token"))
		return
	}

	logging.Log.Infof("ROOM: created room %s with %d candidates", room.ID, len(candidates))
	g.JSON(http.StatusCreated, &models.CreateRoomResponse{
		RoomID:   room.ID,
		ShareURL: fmt.Sprintf("%s/rooms/%s", c.baseURL, room.ID),
		Token:    signed,
	})
}

// getRoom godoc
// @Summary Get room detail
// @Description Returns the room, its participants and the live results. my_vote is set when a token for this room is sent
// @Tags rooms
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} models.RoomDetailResponse
// @Failure 404 {object} models.ErrorResponse "Room not found"
// @Failure 500 {object} models.ErrorResponse "Unexpected internal error"
// @Router /api/rooms/{id} [get]
func (c *RoomController) getRoom(g *gin.Context) {
	ctx := g.Request.Context()
	room, ok := c.loadRoom(g)
	if !ok {
		return
	}

	participants, results, err := c.tallyRoom(ctx, room)
	if err != nil {
		g.JSON(http.StatusInternalServerError, models.NewError(models.CodeInternal, "could not load room"))
		return
	}

	var myVote *string
	if claims, ok := transport.ClaimsFromContext(g); ok && claims.RoomID == room.ID {
		vote, err := c.votesStorage.Get(ctx, room.ID, claims.ParticipantID)
		if err == nil {
			myVote = &vote.CandidateID
		} else if !errors.Is(err, storage.ErrVoteNotFound) {
			logging.Log.Errorf("ROOM: failed to read vote of %s: %v", claims.ParticipantID, err)
		}
	}

	g.JSON(http.StatusOK, &models.RoomDetailResponse{
		Room:         models.TransformRoomFromStorage(room, len(participants)),
		Participants: models.TransformParticipantsFromStorage(participants),
		Results:      models.TransformResults(results),
		MyVote:       myVote,
	})
}

// joinRoom godoc
// @Summary Join a room
// @Description Registers a participant with a nickname and returns its room token
// @Tags rooms
// @Accept json
// @Produce json
// @Param id path string true "Room ID"
// @Param join body models.JoinRoomRequest true "Nickname"
// @Success 200 {object} models.JoinRoomResponse
// @Failure 400 {object} models.ErrorResponse "Invalid nickname"
// @Failure 404 {object} models.ErrorResponse "Room not found"
// @Failure 409 {object} models.ErrorResponse "Room full or nickname taken"
// @Failure 410 {object} models.ErrorResponse "Room expired"
// @Router /api/rooms/{id}/join [post]
func (c *RoomController) joinRoom(g *gin.Context) {
	var req models.JoinRoomRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, models.NewError(models.CodeBadRequest, err.Error()))
		return
	}
	nickname := strings.TrimSpace(req.Nickname)
	if nickname == "" {
		g.JSON(http.StatusBadRequest, models.NewError(models.CodeBadRequest, "nickname is required"))
		return
	}

	ctx := g.Request.Context()
	room, ok := c.loadRoom(g)
	if !ok {
		return
	}
	if room.IsExpired(c.now()) {
		g.JSON(http.StatusGone, models.NewError(models.CodeRoomExpired, "Room has expired"))
		return
	}

	// capacity is checked by the storage in the same write as the insert
	participant := &storage.Participant{ID: uuid.NewString(), RoomID: room.ID, Nickname: nickname, JoinedAt: c.now().UTC()}
	if err := c.participantsStorage.Add(ctx, participant); err != nil {
		switch {
		case errors.Is(err, storage.ErrRoomFull):
			g.JSON(http.StatusConflict, models.NewError(models.CodeRoomFull, fmt.Sprintf("Room is full (max: %d)", room.MaxParticipants)))
			return
		case errors.Is(err, storage.ErrNicknameTaken):
			g.JSON(http.StatusConflict, models.NewError(models.CodeNicknameTaken, "Nickname already taken"))
			return
		case errors.Is(err, storage.ErrRoomNotFound):
			g.JSON(http.StatusNotFound, models.NewError(models.CodeRoomNotFound, "Room not found"))
			return
		}
		g.JSON(http.StatusInternalServerError, models.NewError(models.CodeInternal, "could not join room"))
		return
	}

	signed, err := c.issuer.Issue(room.ID, participant.ID, participant.Nickname, false)
	if err != nil {
		logging.Log.Errorf("ROOM: failed to issue token for %s: %v", participant.ID, err)
		g.JSON(http.StatusInternalServerError, models.NewError(models.CodeInternal, "could not issue token"))
		return
	}

	logging.Log.Infof("ROOM: %s joined room %s", participant.Nickname, room.ID)
	g.JSON(http.StatusOK, &models.JoinRoomResponse{
		Token:    signed,
		Nickname: participant.Nickname,
		IsHost:   false,
		Room:     models.TransformRoomFromStorage(room, len(participants)+1),
	})
}

// startVoting godoc
// @Summary Start voting
// @Description Moves a waiting room to voting. Host only, needs at least two participants
// @Tags rooms
// @Produce json
// @Security BearerToken
// @Param id path string true "Room ID"
// @Success 200 {object} models.RoomResponse
// @Failure 401 {object} models.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} models.ErrorResponse "Not the host of this room"
// @Failure 404 {object} models.ErrorResponse "Room not found"
// @Failure 409 {object} models.ErrorResponse "Room not waiting or not enough participants"
// @Failure 410 {object} models.ErrorResponse "Room expired"
// @Router /api/rooms/{id}/start [post]
func (c *RoomController) startVoting(g *gin.Context) {
	ctx := g.Request.Context()
	room, ok := c.loadRoom(g)
	if !ok {
		return
	}
	if room.IsExpired(c.now()) {
		g.JSON(http.StatusGone, models.NewError(models.CodeRoomExpired, "Room has expired"))
		return
	}
	if room.Status != storage.StatusWaiting {
		g.JSON(http.StatusConflict, models.NewError(models.CodeInvalidTransition, fmt.Sprintf("cannot start voting from %s", room.Status)))
		return
	}

	participants, err := c.participantsStorage.GetByRoom(ctx, room.ID)
	if err != nil {
		g.JSON(http.StatusInternalServerError, models.NewError(models.CodeInternal, "could not load participants"))
		return
	}
	if len(participants) < 2 {
		g.JSON(http.StatusConflict, models.NewError(models.CodeNotEnoughParticipants, "at least 2 participants are needed to start"))
		return
	}

	updated, err := c.roomsStorage.TransitionStatus(ctx, room.ID, storage.StatusWaiting, storage.StatusVoting)
	if !c.transitionOK(g, err) {
		return
	}

	logging.Log.Infof("ROOM: voting started in room %s", room.ID)
	g.JSON(http.StatusOK, models.TransformRoomFromStorage(updated, len(participants)))
}

// closeRoom godoc
// @Summary Close a room
// @Description Ends voting and returns the final results. The winner is null on a tie or when nobody voted
// @Tags rooms
// @Produce json
// @Security BearerToken
// @Param id path string true "Room ID"
// @Success 200 {object} models.CloseRoomResponse
// @Failure 401 {object} models.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} models.ErrorResponse "Not the host of this room"
// @Failure 404 {object} models.ErrorResponse "Room not found"
// @Failure 409 {object} models.ErrorResponse "Room already closed"
// @Router /api/rooms/{id}/close [post]
func (c *RoomController) closeRoom(g *gin.Context) {
	ctx := g.Request.Context()
	room, ok := c.loadRoom(g)
	if !ok {
		return
	}
	if room.Status == storage.StatusClosed {
		g.JSON(http.StatusConflict, models.NewError(models.CodeInvalidTransition, "room is already closed"))
		return
	}

	closed, err := c.roomsStorage.TransitionStatus(ctx, room.ID, room.Status, storage.StatusClosed)
	if !c.transitionOK(g, err) {
		return
	}

	_, results, err := c.tallyRoom(ctx, closed)
	if err != nil {
		g.JSON(http.StatusInternalServerError, models.NewError(models.CodeInternal, "could not compute results"))
		return
	}

	var winner *models.CandidateResponse
	if w := tally.Winner(results); w != nil {
		resp := models.TransformCandidateFromStorage(*w)
		winner = &resp
	}

	logging.Log.Infof("ROOM: closed room %s (winner: %v)", room.ID, winner != nil)
	g.JSON(http.StatusOK, &models.CloseRoomResponse{
		Success:      true,
		FinalResults: models.TransformResults(results),
		Winner:       winner,
	})
}

// loadRoom writes the error response itself and reports whether the handler may continue.
func (c *RoomController) loadRoom(g *gin.Context) (*storage.Room, bool) {
	room, err := c.roomsStorage.Get(g.Request.Context(), g.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrRoomNotFound) {
			g.JSON(http.StatusNotFound, models.NewError(models.CodeRoomNotFound, "Room not found"))
			return nil, false
		}
		g.JSON(http.StatusInternalServerError, models.NewError(models.CodeInternal, "could not load room"))
		return nil, false
	}
	return room, true
}

func (c *RoomController) transitionOK(g *gin.Context, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, storage.ErrRoomNotFound):
		g.JSON(http.StatusNotFound, models.NewError(models.CodeRoomNotFound, "Room not found"))
	case errors.Is(err, storage.ErrStatusConflict):
		g.JSON(http.StatusConflict, models.NewError(models.CodeInvalidTransition, "room status changed, reload and retry"))
	default:
		g.JSON(http.StatusInternalServerError, models.NewError(models.CodeInternal, "could not update room"))
	}
	return false
}

func (c *RoomController) tallyRoom(ctx context.Context, room *storage.Room) ([]*storage.Participant, []tally.Result, error) {
	participants, err := c.participantsStorage.GetByRoom(ctx, room.ID)
	if err != nil {
		return nil, nil, err
	}
	votes, err := c.votesStorage.GetByRoom(ctx, room.ID)
	if err != nil {
		return nil, nil, err
	}

	nicknames := make(map[string]string, len(participants))
	for _, p := range participants {
		nicknames[p.ID] = p.Nickname
	}
	return participants, tally.Aggregate(room.Candidates, votes, nicknames), nil
}
