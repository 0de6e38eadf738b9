package main

import (
	"fmt"
	"github.com/daehan00/omechoo/client"
	"github.com/spf13/cobra"
	"io"
	"slices"
	"strings"
)

func newMenusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "menus",
		Short: "List every menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			menus, err := a.api.AllMenus(cmd.Context())
			if err != nil {
				return a.readFailed("menus", err, "omechoo menus")
			}
			printMenus(a.out, menus)
			return nil
		},
	}
}

func newRecommendCmd(a *app) *cobra.Command {
	var (
		include []string
		exclude []string
		attrs   []string
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend menus from category and attribute filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := recommendRequest(include, exclude, attrs, limit)
			if err != nil {
				return a.alert(err)
			}
			menus, err := a.api.RecommendBasic(cmd.Context(), req)
			if err != nil {
				return a.readFailed("recommendations", err, "omechoo recommend with looser filters")
			}
			printMenus(a.out, menus)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&include, "include", nil, "categories to include ("+strings.Join(client.MenuCategories, ", ")+")")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "categories to exclude")
	cmd.Flags().StringSliceVar(&attrs, "attr", nil, "attribute filters such as is_spicy=true")
	cmd.Flags().IntVar(&limit, "limit", client.DefaultRecommendLimit, "how many menus, 1 to 10")
	return cmd
}

func newGachaCmd(a *app) *cobra.Command {
	var include []string
	cmd := &cobra.Command{
		Use:   "gacha",
		Short: "Pick one menu at random",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			menus, err := a.api.AllMenus(cmd.Context())
			if err != nil {
				return a.readFailed("menus", err, "omechoo gacha")
			}
			if len(include) > 0 {
				menus = slices.DeleteFunc(menus, func(m client.Menu) bool {
					return !slices.Contains(include, m.Category)
				})
			}
			if len(menus) == 0 {
				return a.alert(client.ErrNoMenus)
			}
			picked := menus[a.pick(len(menus))]
			fmt.Fprintf(a.out, "%s (%s)\n", picked.Name, picked.Category)
			if picked.Description != "" {
				fmt.Fprintf(a.out, "  %s\n", picked.Description)
			}
			fmt.Fprintf(a.out, "  menu id: %s\n", picked.ID)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&include, "include", nil, "only draw from these categories")
	return cmd
}

func recommendRequest(include, exclude, attrs []string, limit int) (client.MenuRecommendRequest, error) {
	for _, c := range append(slices.Clone(include), exclude...) {
		if !slices.Contains(client.MenuCategories, c) {
			return client.MenuRecommendRequest{}, fmt.Errorf("unknown category %q", c)
		}
	}
	if limit < 1 || limit > client.MaxRecommendLimit {
		return client.MenuRecommendRequest{}, fmt.Errorf("limit must be between 1 and %d", client.MaxRecommendLimit)
	}

	req := client.MenuRecommendRequest{IncludedCategories: include, ExcludedCategories: exclude, Limit: limit}
	for _, attr := range attrs {
		name, value, found := strings.Cut(attr, "=")
		if name == "" {
			return client.MenuRecommendRequest{}, fmt.Errorf("bad attribute %q", attr)
		}
		if req.Attributes == nil {
			req.Attributes = make(map[string]bool)
		}
		switch {
		case !found || value == "true":
			req.Attributes[name] = true
		case value == "false":
			req.Attributes[name] = false
		default:
			return client.MenuRecommendRequest{}, fmt.Errorf("attribute %s must be true or false", name)
		}
	}
	return req, nil
}

func printMenus(w io.Writer, menus []client.Menu) {
	for _, m := range menus {
		fmt.Fprintf(w, "%-12s %-10s %s\n", m.ID, m.Category, m.Name)
	}
}
