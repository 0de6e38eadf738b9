package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/daehan00/omechoo/api/models"
	"github.com/daehan00/omechoo/logging"
	"net/http"
	"net/url"
)

// ErrNoSession is returned before any request when a room call needs a token and none is stored.
var ErrNoSession = errors.New("no session token for room")

// CloseResult keeps track of whether the server sent a winner key at all, so callers can tell
// "no winner" (null) apart from "not reported" (absent).
type CloseResult struct {
	Success       bool
	FinalResults  []models.VoteResultResponse
	Winner        *models.CandidateResponse
	WinnerPresent bool
}

func (r *CloseResult) UnmarshalJSON(data []byte) error {
	var body struct {
		Success      bool                        `json:"success"`
		FinalResults []models.VoteResultResponse `json:"final_results"`
		Winner       *models.CandidateResponse   `json:"winner"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return err
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	_, present := keys["winner"]

	*r = CloseResult{
		Success:       body.Success,
		FinalResults:  body.FinalResults,
		Winner:        body.Winner,
		WinnerPresent: present,
	}
	return nil
}

func (c *Client) roomURL(roomID, suffix string) string {
	return fmt.Sprintf("%s/rooms/%s%s", c.roomBase, url.PathEscape(roomID), suffix)
}

func (c *Client) bearerFor(roomID string) (string, error) {
	if c.tokens == nil {
		return "", ErrNoSession
	}
	raw, ok := c.tokens.Get(roomID)
	if !ok || raw == "" {
		return "", ErrNoSession
	}
	return raw, nil
}

func (c *Client) saveToken(roomID, raw string) {
	if c.tokens == nil {
		return
	}
	if err := c.tokens.Save(roomID, raw); err != nil {
		logging.Log.Errorf("SESSION: could not store token for room %s: %v", roomID, err)
	}
}

// CreateRoom creates a room and stores the host token under the new room id.
func (c *Client) CreateRoom(ctx context.Context, req models.CreateRoomRequest) (*models.CreateRoomResponse, error) {
	var out models.CreateRoomResponse
	if err := c.do(ctx, http.MethodPost, c.roomBase+"/rooms", req, &out, ""); err != nil {
		return nil, err
	}
	c.saveToken(out.RoomID, out.Token)
	return &out, nil
}

// GetRoom sends the stored token when there is one so the answer includes my_vote.
func (c *Client) GetRoom(ctx context.Context, roomID string) (*models.RoomDetailResponse, error) {
	bearer, _ := c.bearerFor(roomID)
	var out models.RoomDetailResponse
	if err := c.do(ctx, http.MethodGet, c.roomURL(roomID, ""), nil, &out, bearer); err != nil {
		return nil, err
	}
	return &out, nil
}

// JoinRoom joins with a nickname and stores the returned token.
func (c *Client) JoinRoom(ctx context.Context, roomID, nickname string) (*models.JoinRoomResponse, error) {
	var out models.JoinRoomResponse
	if err := c.do(ctx, http.MethodPost, c.roomURL(roomID, "/join"), models.JoinRoomRequest{Nickname: nickname}, &out, ""); err != nil {
		return nil, err
	}
	c.saveToken(roomID, out.Token)
	return &out, nil
}

func (c *Client) StartVoting(ctx context.Context, roomID string) (*models.RoomResponse, error) {
	bearer, err := c.bearerFor(roomID)
	if err != nil {
		return nil, err
	}
	var out models.RoomResponse
	if err := c.do(ctx, http.MethodPost, c.roomURL(roomID, "/start"), nil, &out, bearer); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CastVote(ctx context.Context, roomID, candidateID string) (*models.VoteResponse, error) {
	bearer, err := c.bearerFor(roomID)
	if err != nil {
		return nil, err
	}
	var out models.VoteResponse
	if err := c.do(ctx, http.MethodPost, c.roomURL(roomID, "/vote"), models.CastVoteRequest{CandidateID: candidateID}, &out, bearer); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangeVote moves the vote to candidateID. A nil candidateID cancels it.
func (c *Client) ChangeVote(ctx context.Context, roomID string, candidateID *string) (*models.VoteResponse, error) {
	bearer, err := c.bearerFor(roomID)
	if err != nil {
		return nil, err
	}
	var out models.VoteResponse
	if err := c.do(ctx, http.MethodPatch, c.roomURL(roomID, "/vote"), models.ChangeVoteRequest{NewCandidateID: candidateID}, &out, bearer); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CloseRoom(ctx context.Context, roomID string) (*CloseResult, error) {
	bearer, err := c.bearerFor(roomID)
	if err != nil {
		return nil, err
	}
	var out CloseResult
	if err := c.do(ctx, http.MethodPost, c.roomURL(roomID, "/close"), nil, &out, bearer); err != nil {
		return nil, err
	}
	return &out, nil
}
