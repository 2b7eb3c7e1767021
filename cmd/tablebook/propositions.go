package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/boardgame-tables/internal/application"
	"github.com/example/boardgame-tables/internal/proposition"
	"github.com/example/boardgame-tables/internal/visibility"
)

const dateLayout = "2006-01-02"

// tableFlags are the editable fields shared by propose and update.
type tableFlags struct {
	game       string
	bggID      int
	notes      string
	date       string
	at         string
	duration   int
	maxPlayers int
	location   string
	kind       string
	expansions []string
}

func (f *tableFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.game, "game", "", "Game name")
	flags.IntVar(&f.bggID, "bgg", 0, "BoardGameGeek id of the game")
	flags.StringVar(&f.notes, "notes", "", "Free text notes")
	flags.StringVar(&f.date, "date", "", "Calendar date (YYYY-MM-DD)")
	flags.StringVar(&f.at, "time", "evening", "Start time: morning, afternoon, evening, night or HH:MM")
	flags.IntVar(&f.duration, "duration", 120, "Duration in minutes")
	flags.IntVar(&f.maxPlayers, "max", 4, "Maximum number of players")
	flags.StringVar(&f.location, "location", "", "Location id (defaults to the default location)")
	flags.StringVar(&f.kind, "type", "proposition", "proposition, tournament or demo")
	flags.StringArrayVar(&f.expansions, "expansion", nil, "Expansion as ID:NAME, repeatable")
}

func (f *tableFlags) draft(viewer proposition.User, loc *time.Location) (proposition.Draft, error) {
	date, err := parseDate(f.date, loc)
	if err != nil {
		return proposition.Draft{}, err
	}
	at, err := proposition.ParseTimeOfDay(f.at)
	if err != nil {
		return proposition.Draft{}, err
	}
	kind, err := proposition.ParseType(f.kind)
	if err != nil {
		return proposition.Draft{}, err
	}
	expansions, err := parseExpansions(f.expansions)
	if err != nil {
		return proposition.Draft{}, err
	}
	return proposition.Draft{
		GameName:        f.game,
		BGGGameID:       f.bggID,
		Notes:           f.notes,
		Expansions:      expansions,
		Date:            date,
		Time:            at,
		DurationMinutes: f.duration,
		MaxPlayers:      f.maxPlayers,
		ProposedBy:      viewer.Player(),
		LocationID:      strings.TrimSpace(f.location),
		Type:            kind,
	}, nil
}

// patch includes only the flags set on the command line.
func (f *tableFlags) patch(cmd *cobra.Command, loc *time.Location) (proposition.Patch, error) {
	var patch proposition.Patch
	changed := cmd.Flags().Changed

	if changed("game") {
		patch.GameName = &f.game
	}
	if changed("bgg") {
		patch.BGGGameID = &f.bggID
	}
	if changed("notes") {
		patch.Notes = &f.notes
	}
	if changed("date") {
		date, err := parseDate(f.date, loc)
		if err != nil {
			return patch, err
		}
		patch.Date = &date
	}
	if changed("time") {
		at, err := proposition.ParseTimeOfDay(f.at)
		if err != nil {
			return patch, err
		}
		patch.Time = &at
	}
	if changed("duration") {
		patch.DurationMinutes = &f.duration
	}
	if changed("max") {
		patch.MaxPlayers = &f.maxPlayers
	}
	if changed("location") {
		id := strings.TrimSpace(f.location)
		patch.LocationID = &id
	}
	if changed("type") {
		kind, err := proposition.ParseType(f.kind)
		if err != nil {
			return patch, err
		}
		patch.Type = &kind
	}
	if changed("expansion") {
		expansions, err := parseExpansions(f.expansions)
		if err != nil {
			return patch, err
		}
		patch.Expansions = &expansions
	}
	return patch, nil
}

func parseDate(value string, loc *time.Location) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, fmt.Errorf("--date is required")
	}
	date, err := time.ParseInLocation(dateLayout, strings.TrimSpace(value), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", value)
	}
	return date, nil
}

// parseExpansions reads ID:NAME pairs. The name may be omitted.
func parseExpansions(values []string) ([]proposition.Expansion, error) {
	out := make([]proposition.Expansion, 0, len(values))
	for _, value := range values {
		rawID, name, _ := strings.Cut(value, ":")
		id, err := strconv.Atoi(strings.TrimSpace(rawID))
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid expansion %q: want ID:NAME", value)
		}
		out = append(out, proposition.Expansion{ID: id, Name: strings.TrimSpace(name)})
	}
	return out, nil
}

func proposeCmd(a *app) *cobra.Command {
	var (
		f    tableFlags
		join bool
	)
	cmd := &cobra.Command{
		Use:   "propose",
		Short: "Propose a new table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			viewer, err := a.viewer()
			if err != nil {
				return err
			}
			draft, err := f.draft(viewer, a.cfg.Location())
			if err != nil {
				return err
			}
			result, err := a.booking.Create(cmd.Context(), application.CreatePropositionParams{
				Viewer:      viewer,
				Draft:       draft,
				JoinCreator: join,
			})
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), result)
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&join, "join", false, "Take a seat at the new table")
	return cmd
}

func joinCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "join TABLE_ID",
		Short: "Take a seat at a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			viewer, err := a.viewer()
			if err != nil {
				return err
			}
			p, err := a.booking.Join(cmd.Context(), viewer, args[0])
			if err != nil {
				return err
			}
			return printProposition(cmd.OutOrStdout(), p)
		},
	}
}

func leaveCmd(a *app) *cobra.Command {
	var target string
	cmd := &cobra.Command{
		Use:   "leave TABLE_ID",
		Short: "Give up a seat, or remove a player with --player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			viewer, err := a.viewer()
			if err != nil {
				return err
			}
			p, err := a.booking.Leave(cmd.Context(), application.RosterParams{
				Viewer:  viewer,
				TableID: args[0],
				UserID:  strings.TrimSpace(target),
			})
			if err != nil {
				return err
			}
			return printProposition(cmd.OutOrStdout(), p)
		},
	}
	cmd.Flags().StringVar(&target, "player", "", "User id to remove (defaults to yourself)")
	return cmd
}

func updateCmd(a *app) *cobra.Command {
	var f tableFlags
	cmd := &cobra.Command{
		Use:   "update TABLE_ID",
		Short: "Edit a table you proposed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			viewer, err := a.viewer()
			if err != nil {
				return err
			}
			patch, err := f.patch(cmd, a.cfg.Location())
			if err != nil {
				return err
			}
			result, err := a.booking.Update(cmd.Context(), application.UpdatePropositionParams{
				Viewer:  viewer,
				TableID: args[0],
				Patch:   patch,
			})
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), result)
		},
	}
	f.register(cmd)
	return cmd
}

func deleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete TABLE_ID",
		Short: "Delete a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			viewer, err := a.viewer()
			if err != nil {
				return err
			}
			if err := a.booking.Delete(cmd.Context(), viewer, args[0]); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return err
		},
	}
}

func showCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show TABLE_ID",
		Short: "Show one table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.booking.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printProposition(cmd.OutOrStdout(), p)
		},
	}
}

func listCmd(a *app) *cobra.Command {
	var (
		joined   bool
		proposed bool
		bucket   string
		kind     string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List upcoming tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			spec := visibility.Spec{JoinedByMe: joined, ProposedByMe: proposed}
			var err error
			if spec.Bucket, err = visibility.ParseLocationBucket(bucket); err != nil {
				return err
			}
			if spec.Type, err = visibility.ParseTypeFilter(kind); err != nil {
				return err
			}

			var viewer proposition.User
			if joined || proposed {
				if viewer, err = a.viewer(); err != nil {
					return err
				}
			}
			props, err := a.booking.List(cmd.Context(), application.ListPropositionsParams{Viewer: viewer, Spec: spec})
			if err != nil {
				return err
			}
			return printPropositions(cmd.OutOrStdout(), props)
		},
	}
	cmd.Flags().BoolVar(&joined, "joined", false, "Only tables you joined")
	cmd.Flags().BoolVar(&proposed, "mine", false, "Only tables you proposed")
	cmd.Flags().StringVar(&bucket, "bucket", "any", "any, default or restoftheworld")
	cmd.Flags().StringVar(&kind, "type", "any", "any, proposition, tournament or demo")
	return cmd
}

func conflictsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "conflicts",
		Short: "Report overlapping tables you joined",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			viewer, err := a.viewer()
			if err != nil {
				return err
			}
			report, err := a.booking.Conflicts(cmd.Context(), viewer)
			if err != nil {
				return err
			}
			return printReport(cmd.OutOrStdout(), report)
		},
	}
}
