package locate

import (
	"context"
	"errors"
	"github.com/daehan00/omechoo/client"
)

const DefaultRadiusKm = 1.5

var (
	ErrMissingMenu     = errors.New("menu id is required to search restaurants")
	ErrMissingLocation = errors.New("location is required to search restaurants")
	ErrNoRestaurants   = errors.New("no restaurants found nearby")
)

type RestaurantSearcher interface {
	SearchRestaurants(ctx context.Context, req client.RestaurantSearchRequest) ([]client.Restaurant, error)
}

type Query struct {
	MenuID    string
	Location  *Coordinate
	RadiusKm  float64
	MaxResult int
}

// Search refuses to call the API until both a menu and a location are known.
func Search(ctx context.Context, api RestaurantSearcher, q Query) ([]client.Restaurant, error) {
	if q.MenuID == "" {
		return nil, ErrMissingMenu
	}
	if q.Location == nil {
		return nil, ErrMissingLocation
	}

	radius := q.RadiusKm
	if radius <= 0 {
		radius = DefaultRadiusKm
	}
	req := client.RestaurantSearchRequest{
		MenuID:    q.MenuID,
		Latitude:  q.Location.Lat,
		Longitude: q.Location.Lng,
		RadiusKm:  &radius,
	}
	if q.MaxResult > 0 {
		req.MaxResult = &q.MaxResult
	}

	found, err := api.SearchRestaurants(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, ErrNoRestaurants
	}
	return found, nil
}
