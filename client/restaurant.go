package client

import (
	"context"
	"encoding/json"
	"net/http"
)

type RestaurantSearchRequest struct {
	MenuID    string   `json:"menu_id"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	RadiusKm  *float64 `json:"radius_km,omitempty"`
	MaxResult *int     `json:"max_result,omitempty"`
}

type RestaurantLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

type Restaurant struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Category  string              `json:"category"`
	Location  *RestaurantLocation `json:"location,omitempty"`
	URLs      []string            `json:"urls,omitempty"`
	MenuItems []string            `json:"menu_items,omitempty"`
	Distance  *float64            `json:"distance,omitempty"`
}

type RestaurantMenu struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

type RestaurantDetail struct {
	Rating          string            `json:"rating"`
	ReviewCount     string            `json:"review_count"`
	BlogReviewCount string            `json:"blog_review_count"`
	BusinessStatus  []json.RawMessage `json:"business_status"`
	Menus           []RestaurantMenu  `json:"menus"`
}

// SearchRestaurants returns an empty slice, not an error, when nothing is nearby.
func (c *Client) SearchRestaurants(ctx context.Context, req RestaurantSearchRequest) ([]Restaurant, error) {
	var env Envelope[[]Restaurant]
	if err := c.do(ctx, http.MethodPost, c.apiBase+"/restaurant/search", req, &env, ""); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *Client) RestaurantDetail(ctx context.Context, url string) (*RestaurantDetail, error) {
	var env Envelope[RestaurantDetail]
	if err := c.do(ctx, http.MethodPost, c.apiBase+"/restaurant/detail", map[string]string{"url": url}, &env, ""); err != nil {
		return nil, err
	}
	return &env.Data, nil
}
