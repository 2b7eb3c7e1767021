package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/example/boardgame-tables/internal/application"
	"github.com/example/boardgame-tables/internal/proposition"
	"github.com/example/boardgame-tables/internal/scheduler"
)

const notesPreviewLength = 40

func printPropositions(w io.Writer, props []proposition.Proposition) error {
	if len(props) == 0 {
		_, err := fmt.Fprintln(w, "No tables.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tGAME\tDATE\tTIME\tMIN\tPLAYERS\tSTATUS\tLOCATION\tPROPOSER")
	for _, p := range props {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s (%s)\t%d\t%s\t%s\t%s\t%s\n",
			p.ID,
			p.DisplayName(),
			p.Date.Format("2006-01-02"),
			p.Time.Short(),
			p.TimeSlot(),
			p.DurationMinutes,
			p.PlayersFraction(),
			p.Status(),
			p.LocationAlias(),
			p.ProposedBy.Username,
		)
	}
	return tw.Flush()
}

func printProposition(w io.Writer, p proposition.Proposition) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Table:\t%s\n", p.ID)
	fmt.Fprintf(tw, "Game:\t%s\n", p.DisplayName())
	if p.BGGGameID > 0 {
		fmt.Fprintf(tw, "BGG id:\t%d\n", p.BGGGameID)
	}
	fmt.Fprintf(tw, "When:\t%s %s (%s), %d min\n", p.Date.Format("2006-01-02"), p.Time.Short(), p.TimeSlot(), p.DurationMinutes)
	fmt.Fprintf(tw, "Where:\t%s\n", p.LocationAlias())
	fmt.Fprintf(tw, "Proposed by:\t%s\n", p.ProposedBy.Username)
	fmt.Fprintf(tw, "Players:\t%s %s\n", p.PlayersFraction(), p.Status())
	for i, player := range p.Players {
		fmt.Fprintf(tw, "\t%d. %s\n", i+1, player.Username)
	}
	if len(p.Expansions) > 0 {
		names := make([]string, 0, len(p.Expansions))
		for _, e := range p.Expansions {
			names = append(names, e.Name)
		}
		fmt.Fprintf(tw, "Expansions:\t%s\n", strings.Join(names, ", "))
	}
	if p.Notes != "" {
		fmt.Fprintf(tw, "Notes:\t%s\n", p.NotesPreview(notesPreviewLength))
	}
	return tw.Flush()
}

func printResult(w io.Writer, result application.PropositionResult) error {
	if err := printProposition(w, result.Proposition); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Notification: %s, metadata: %s\n", result.Notification, result.Metadata)
	return err
}

func printLocations(w io.Writer, locations []proposition.Location) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tALIAS\tADDRESS\tSCOPE")
	for _, l := range locations {
		scope := "personal"
		switch {
		case l.IsDefault:
			scope = "default"
		case l.IsSystem():
			scope = "system"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", l.ID, l.Alias, l.Address(), scope)
	}
	return tw.Flush()
}

func printReport(w io.Writer, report scheduler.Report) error {
	if report.Empty() {
		_, err := fmt.Fprintln(w, "No conflicts.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEVERITY\tFIRST\tSECOND")
	for _, group := range [][]scheduler.Conflict{report.Errors, report.Warnings} {
		for _, c := range group {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Severity, describeRef(c.First), describeRef(c.Second))
		}
	}
	return tw.Flush()
}

func describeRef(ref scheduler.TableRef) string {
	return fmt.Sprintf("%s %s %s-%s", ref.TableID, ref.GameName, ref.Start.Format("2006-01-02 15:04"), ref.End.Format("15:04"))
}
