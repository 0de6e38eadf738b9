package main

import (
	"errors"
	"fmt"
	"github.com/daehan00/omechoo/client"
	"github.com/daehan00/omechoo/locate"
	"github.com/spf13/cobra"
	"strings"
)

func newRestaurantsCmd(a *app) *cobra.Command {
	var (
		menuID    string
		lat, lng  float64
		place     string
		radiusKm  float64
		maxResult int
	)
	cmd := &cobra.Command{
		Use:   "restaurants",
		Short: "Find restaurants serving a menu near you",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			geo := a.geo
			if cmd.Flags().Changed("lat") && cmd.Flags().Changed("lng") {
				geo = locate.StaticGeolocator{Position: &locate.Coordinate{Lat: lat, Lng: lng}}
			} else if geo == nil {
				geo = locate.StaticGeolocator{}
			}

			resolver := &locate.Resolver{Geo: geo, Places: a.places, Keyword: place}
			where := resolver.Resolve(cmd.Context())
			switch where.Source {
			case locate.SourcePlace:
				fmt.Fprintf(a.errOut, "searching around %s (%s)\n", where.Place.Name, where.Place.Address)
			case locate.SourceDefault:
				fmt.Fprintf(a.errOut, "location unavailable, searching around Seoul City Hall\n")
			}

			found, err := locate.Search(cmd.Context(), a.api, locate.Query{
				MenuID:    menuID,
				Location:  &where.Coordinate,
				RadiusKm:  radiusKm,
				MaxResult: maxResult,
			})
			switch {
			case errors.Is(err, locate.ErrNoRestaurants):
				fmt.Fprintln(a.out, "no restaurants nearby, try a wider --radius")
				return nil
			case errors.Is(err, locate.ErrMissingMenu):
				return a.alert(err)
			case err != nil:
				return a.readFailed("restaurants", err, "omechoo restaurants --menu "+menuID)
			}

			for _, r := range found {
				line := fmt.Sprintf("%s  %s", r.Name, r.Category)
				if r.Distance != nil {
					line += fmt.Sprintf("  %.2fkm", *r.Distance)
				}
				if r.Location != nil && r.Location.Address != "" {
					line += "  " + r.Location.Address
				}
				if len(r.URLs) > 0 {
					line += "  " + r.URLs[0]
				}
				fmt.Fprintln(a.out, line)
				if len(r.MenuItems) > 0 {
					fmt.Fprintf(a.out, "  %s\n", strings.Join(r.MenuItems, ", "))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&menuID, "menu", "", "menu id to search for")
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "longitude")
	cmd.Flags().StringVar(&place, "place", "", "place name to search around when no coordinate is given")
	cmd.Flags().Float64Var(&radiusKm, "radius", locate.DefaultRadiusKm, "search radius in km")
	cmd.Flags().IntVar(&maxResult, "max", 0, "maximum number of restaurants")
	return cmd
}

func newRestaurantDetailCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "restaurant-detail <place-url>",
		Short: "Show rating, reviews and menu of a restaurant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			detail, err := a.api.RestaurantDetail(cmd.Context(), args[0])
			if err != nil {
				return a.readFailed("restaurant detail", err, "omechoo restaurant-detail "+args[0])
			}
			fmt.Fprintf(a.out, "rating %s  reviews %s  blog reviews %s\n", orDash(detail.Rating), orDash(detail.ReviewCount), orDash(detail.BlogReviewCount))
			for _, m := range detail.Menus {
				fmt.Fprintf(a.out, "  %s  %s\n", m.Name, m.Price)
			}
			return nil
		},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

var _ locate.RestaurantSearcher = (*client.Client)(nil)
