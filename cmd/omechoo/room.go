package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"github.com/daehan00/omechoo/api/models"
	"github.com/daehan00/omechoo/client"
	"github.com/daehan00/omechoo/poller"
	"github.com/daehan00/omechoo/session"
	"github.com/daehan00/omechoo/voting"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"io"
	"os"
	"os/signal"
	"strings"
)

func newRoomCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Create, join and vote in group rooms",
	}
	cmd.AddCommand(
		newRoomCreateCmd(a),
		newRoomJoinCmd(a),
		newRoomShowCmd(a),
		newRoomWatchCmd(a),
		newRoomStartCmd(a),
		newRoomVoteCmd(a),
		newRoomCloseCmd(a),
		newRoomForgetCmd(a),
	)
	return cmd
}

// roomID accepts a bare id or a share URL.
func roomID(arg string) string {
	if id, ok := client.RoomIDFromURL(arg); ok {
		return id
	}
	return strings.TrimSpace(arg)
}

func newRoomCreateCmd(a *app) *cobra.Command {
	var (
		name       string
		host       string
		kind       string
		candidates []string
		maxPeople  int
		expires    int
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Open a voting room and become its host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := models.CreateRoomRequest{
				Name:            strings.TrimSpace(name),
				HostNickname:    strings.TrimSpace(host),
				CandidateType:   kind,
				Candidates:      candidateInputs(candidates),
				MaxParticipants: maxPeople,
			}
			if cmd.Flags().Changed("expires") {
				req.ExpiresInMinutes = &expires
			}
			if len(req.Candidates) < 2 {
				return a.alert(errors.New("a room needs at least 2 candidates"))
			}

			created, err := a.api.CreateRoom(cmd.Context(), req)
			if err != nil {
				return a.alert(err)
			}
			fmt.Fprintf(a.out, "room %s created\nshare: %s\n", created.RoomID, created.ShareURL)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "room name")
	cmd.Flags().StringVar(&host, "host", "", "your nickname")
	cmd.Flags().StringVar(&kind, "type", "menu", "candidate type: menu or restaurant")
	cmd.Flags().StringArrayVar(&candidates, "candidate", nil, "candidate value, optionally value=display name (repeat)")
	cmd.Flags().IntVar(&maxPeople, "max", models.DefaultMaxParticipants, "maximum participants")
	cmd.Flags().IntVar(&expires, "expires", models.DefaultExpiresInMinutes, "minutes until the room expires")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("host")
	return cmd
}

func candidateInputs(raw []string) []models.CandidateInput {
	out := make([]models.CandidateInput, 0, len(raw))
	for _, r := range raw {
		value, display, found := strings.Cut(r, "=")
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		in := models.CandidateInput{Value: value}
		if display = strings.TrimSpace(display); found && display != "" {
			in.DisplayName = &display
		}
		out = append(out, in)
	}
	return out
}

func newRoomJoinCmd(a *app) *cobra.Command {
	var nickname string
	cmd := &cobra.Command{
		Use:   "join <room>",
		Short: "Join a room with a nickname",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := roomID(args[0])
			joined, err := voting.New(a.api, a.identity, id, nil).Join(cmd.Context(), nickname)
			if err != nil {
				return a.alert(err)
			}
			fmt.Fprintf(a.out, "joined %s as %s\n", joined.Room.Name, joined.Nickname)
			return nil
		},
	}
	cmd.Flags().StringVar(&nickname, "nickname", "", "nickname shown to the room")
	return cmd
}

func newRoomShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <room>",
		Short: "Print the room once",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := roomID(args[0])
			detail, err := a.api.GetRoom(cmd.Context(), id)
			if err != nil {
				return a.readFailed("room", err, "omechoo room show "+id)
			}
			renderRoom(a.out, detail, a.identity.Identity(id))
			return nil
		},
	}
}

func newRoomWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <room>",
		Short: "Follow a room until it closes; press enter to refresh",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := roomID(args[0])
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			p := poller.New(a.api, id,
				poller.OnUpdate(func(detail *models.RoomDetailResponse) {
					renderRoom(a.out, detail, a.identity.Identity(id))
				}),
				poller.OnError(func(err error) {
					fmt.Fprintf(a.errOut, "! could not load room: %s\n  retrying, or press enter\n", err)
				}),
			)

			err := watch(ctx, p, a.in)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

// watch runs the poller next to a stdin loop where every newline counts as the user looking again.
// The reader goroutine is not part of the group: a blocking Read cannot be interrupted, so watch
// returns without it and the goroutine stays parked until in yields a line, EOF or an error. Callers
// that reuse watch should pass a reader they close afterwards.
func watch(parent context.Context, p *poller.Poller, in io.Reader) error {
	g, ctx := errgroup.WithContext(parent)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan struct{})
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- struct{}{}:
			case <-ctx.Done():
				return
			}
		}
	}()

	g.Go(func() error {
		defer cancel()
		return p.Run(ctx)
	})
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-lines:
				p.Refresh()
			}
		}
	})
	return g.Wait()
}

func newRoomStartCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "start <room>",
		Short: "Start voting (host only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := roomID(args[0])
			detail, err := a.api.GetRoom(cmd.Context(), id)
			if err != nil {
				return a.readFailed("room", err, "omechoo room start "+id)
			}
			if err := voting.New(a.api, a.identity, id, nil).Start(cmd.Context(), detail); err != nil {
				return a.alert(err)
			}
			fmt.Fprintln(a.out, "voting started")
			return nil
		},
	}
}

func newRoomVoteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "vote <room> <candidate>",
		Short: "Vote for a candidate; voting for your current pick again cancels it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := roomID(args[0])
			detail, err := a.api.GetRoom(cmd.Context(), id)
			if err != nil {
				return a.readFailed("room", err, "omechoo room vote "+id+" "+args[1])
			}
			candidateID := findCandidate(detail, args[1])
			if candidateID == "" {
				return a.alert(voting.ErrUnknownCandidate)
			}

			res, outcome, err := voting.New(a.api, a.identity, id, nil).Vote(cmd.Context(), detail, candidateID)
			if err != nil {
				return a.alert(err)
			}
			fmt.Fprintf(a.out, "vote %s\n", outcome)
			renderResults(a.out, res.Results, nil)
			return nil
		},
	}
}

// findCandidate matches an id, a value or a display name.
func findCandidate(detail *models.RoomDetailResponse, arg string) string {
	for _, c := range detail.Room.Candidates {
		if c.ID == arg || c.Value == arg || (c.DisplayName != nil && *c.DisplayName == arg) {
			return c.ID
		}
	}
	return ""
}

func newRoomCloseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "close <room>",
		Short: "Close voting and announce the winner (host only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := roomID(args[0])
			detail, err := a.api.GetRoom(cmd.Context(), id)
			if err != nil {
				return a.readFailed("room", err, "omechoo room close "+id)
			}
			decision, err := voting.New(a.api, a.identity, id, nil).Close(cmd.Context(), detail)
			if err != nil {
				return a.alert(err)
			}
			renderResults(a.out, decision.Results, nil)
			if decision.Winner == nil {
				fmt.Fprintln(a.out, "no single winner")
			} else {
				fmt.Fprintf(a.out, "winner: %s\n", label(*decision.Winner))
			}
			return nil
		},
	}
}

func newRoomForgetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "forget <room>",
		Short: "Drop the stored token for a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := roomID(args[0])
			if err := a.tokens.Remove(id); err != nil {
				return a.alert(err)
			}
			fmt.Fprintf(a.out, "forgot %s\n", session.Key(id))
			return nil
		},
	}
}

func label(c models.CandidateResponse) string {
	if c.DisplayName != nil && *c.DisplayName != "" {
		return *c.DisplayName
	}
	return c.Value
}

func renderRoom(w io.Writer, detail *models.RoomDetailResponse, id session.Identity) {
	room := detail.Room
	fmt.Fprintf(w, "%s [%s] %d/%d\n", room.Name, room.Status, room.ParticipantCount, room.MaxParticipants)
	for _, p := range detail.Participants {
		marker := ""
		if p.IsHost {
			marker = " (host)"
		}
		fmt.Fprintf(w, "  - %s%s\n", p.Nickname, marker)
	}
	renderResults(w, detail.Results, detail.MyVote)

	actions := voting.ActionsFor(detail, id)
	var hints []string
	if actions.Join {
		hints = append(hints, "join")
	}
	if actions.Start {
		hints = append(hints, "start")
	}
	if actions.Vote {
		hints = append(hints, "vote")
	}
	if actions.Close {
		hints = append(hints, "close")
	}
	if len(hints) > 0 {
		fmt.Fprintf(w, "you can: %s\n", strings.Join(hints, ", "))
	}
}

func renderResults(w io.Writer, results []models.VoteResultResponse, myVote *string) {
	for _, r := range results {
		mine := " "
		if myVote != nil && *myVote == r.Candidate.ID {
			mine = "*"
		}
		fmt.Fprintf(w, " %s %-20s %d", mine, label(r.Candidate), r.VoteCount)
		if len(r.Voters) > 0 {
			fmt.Fprintf(w, "  %s", strings.Join(r.Voters, ", "))
		}
		fmt.Fprintln(w)
	}
}
