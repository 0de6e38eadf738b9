package client

import (
	"context"
	"errors"
	"net/http"
)

var ErrNoMenus = errors.New("no menus matched the filters")

type Menu struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Category       string   `json:"category"`
	Description    string   `json:"description,omitempty"`
	MainBase       string   `json:"main_base,omitempty"`
	Spiciness      *int     `json:"spiciness,omitempty"`
	Temperature    string   `json:"temperature,omitempty"`
	Heaviness      *int     `json:"heaviness,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	SearchKeywords []string `json:"search_keywords,omitempty"`
}

// Menu categories understood by the recommendation API.
var MenuCategories = []string{"korean", "chinese", "japanese", "western", "asian", "cafe", "fast_food", "fusion", "buffet", "other"}

type MenuRecommendRequest struct {
	IncludedCategories []string        `json:"included_categories,omitempty"`
	ExcludedCategories []string        `json:"excluded_categories,omitempty"`
	Attributes         map[string]bool `json:"attributes,omitempty"`
	Limit              int             `json:"limit,omitempty"`
}

const (
	DefaultRecommendLimit = 5
	MaxRecommendLimit     = 10
)

func (c *Client) AllMenus(ctx context.Context) ([]Menu, error) {
	var env Envelope[[]Menu]
	if err := c.do(ctx, http.MethodGet, c.apiBase+"/menu/all", nil, &env, ""); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// RecommendBasic clamps the limit into 1..10 (default 5). An empty answer is ErrNoMenus.
func (c *Client) RecommendBasic(ctx context.Context, req MenuRecommendRequest) ([]Menu, error) {
	switch {
	case req.Limit <= 0:
		req.Limit = DefaultRecommendLimit
	case req.Limit > MaxRecommendLimit:
		req.Limit = MaxRecommendLimit
	}

	var env Envelope[[]Menu]
	if err := c.do(ctx, http.MethodPost, c.apiBase+"/menu/recommend/basic", req, &env, ""); err != nil {
		return nil, err
	}
	if len(env.Data) == 0 {
		return nil, ErrNoMenus
	}
	return env.Data, nil
}
