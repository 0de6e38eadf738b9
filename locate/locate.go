// Package locate resolves where to search for restaurants and runs the search once both a menu
// and a coordinate are known.
package locate

import (
	"context"
	"errors"
	"github.com/daehan00/omechoo/logging"
)

type Coordinate struct {
	Lat float64
	Lng float64
}

// DefaultCenter is Seoul City Hall, used when neither the device nor a place search gives a position.
var DefaultCenter = Coordinate{Lat: 37.5665, Lng: 126.9780}

var ErrPermissionDenied = errors.New("location permission denied")

type Geolocator interface {
	Locate(ctx context.Context) (Coordinate, error)
}

// StaticGeolocator reports a fixed position, or ErrPermissionDenied when none is set.
type StaticGeolocator struct {
	Position *Coordinate
}

func (g StaticGeolocator) Locate(context.Context) (Coordinate, error) {
	if g.Position == nil {
		return Coordinate{}, ErrPermissionDenied
	}
	return *g.Position, nil
}

type Place struct {
	Name    string
	Address string
	Coordinate
}

type PlaceSearcher interface {
	SearchPlaces(ctx context.Context, keyword string) ([]Place, error)
}

type Source string

const (
	SourceGeolocation Source = "geolocation"
	SourcePlace       Source = "place"
	SourceDefault     Source = "default"
)

type Resolution struct {
	Coordinate
	Source Source
	// Place is set when the coordinate came from a place search.
	Place *Place
	// GeoErr keeps the device failure so callers can explain the fallback.
	GeoErr error
}

// Resolver tries the device first, then a place search for Keyword, then DefaultCenter.
type Resolver struct {
	Geo     Geolocator
	Places  PlaceSearcher
	Keyword string
}

func (r *Resolver) Resolve(ctx context.Context) Resolution {
	var geoErr error
	if r.Geo != nil {
		pos, err := r.Geo.Locate(ctx)
		if err == nil {
			return Resolution{Coordinate: pos, Source: SourceGeolocation}
		}
		geoErr = err
		logging.Log.Infof("LOCATE: geolocation unavailable: %v", err)
	} else {
		geoErr = ErrPermissionDenied
	}

	if r.Places != nil && r.Keyword != "" {
		places, err := r.Places.SearchPlaces(ctx, r.Keyword)
		switch {
		case err != nil:
			logging.Log.Warnf("LOCATE: place search for %q failed: %v", r.Keyword, err)
		case len(places) == 0:
			logging.Log.Infof("LOCATE: no place matched %q", r.Keyword)
		default:
			place := places[0]
			return Resolution{Coordinate: place.Coordinate, Source: SourcePlace, Place: &place, GeoErr: geoErr}
		}
	}

	return Resolution{Coordinate: DefaultCenter, Source: SourceDefault, GeoErr: geoErr}
}
