package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/example/boardgame-tables/internal/application"
	"github.com/example/boardgame-tables/internal/proposition"
)

func locationsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locations",
		Short: "Manage the places where tables are held",
	}
	cmd.AddCommand(
		locationsListCmd(a),
		locationsAddCmd(a),
		locationsUpdateCmd(a),
		locationsDeleteCmd(a),
		locationsImportCmd(a),
	)
	return cmd
}

func registerLocationFlags(cmd *cobra.Command, input *application.LocationInput) {
	flags := cmd.Flags()
	flags.StringVar(&input.Alias, "alias", "", "Short name shown in listings")
	flags.StringVar(&input.Street, "street", "", "Street")
	flags.StringVar(&input.HouseNumber, "number", "", "House number")
	flags.StringVar(&input.City, "city", "", "City")
	flags.StringVar(&input.Country, "country", "", "Country")
}

func locationsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the locations you can pick",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			viewer, err := a.viewer()
			if err != nil {
				return err
			}
			locations, err := a.locations.AvailableLocations(cmd.Context(), viewer)
			if err != nil {
				return err
			}
			return printLocations(cmd.OutOrStdout(), locations)
		},
	}
}

func locationsAddCmd(a *app) *cobra.Command {
	var (
		input  application.LocationInput
		system bool
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a personal location, or a shared one with --system",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			viewer, err := a.viewer()
			if err != nil {
				return err
			}
			loc, err := a.locations.CreateLocation(cmd.Context(), application.CreateLocationParams{
				Viewer: viewer,
				Input:  input,
				System: system,
			})
			if err != nil {
				return err
			}
			return printLocations(cmd.OutOrStdout(), []proposition.Location{loc})
		},
	}
	registerLocationFlags(cmd, &input)
	cmd.Flags().BoolVar(&system, "system", false, "Share the location with everyone (admin only)")
	return cmd
}

func locationsUpdateCmd(a *app) *cobra.Command {
	var input application.LocationInput
	cmd := &cobra.Command{
		Use:   "update LOCATION_ID",
		Short: "Replace the address of a location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			viewer, err := a.viewer()
			if err != nil {
				return err
			}
			loc, err := a.locations.UpdateLocation(cmd.Context(), application.UpdateLocationParams{
				Viewer:     viewer,
				LocationID: args[0],
				Input:      input,
			})
			if err != nil {
				return err
			}
			return printLocations(cmd.OutOrStdout(), []proposition.Location{loc})
		},
	}
	registerLocationFlags(cmd, &input)
	return cmd
}

func locationsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete LOCATION_ID",
		Short: "Delete a location; its tables keep an unknown location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			viewer, err := a.viewer()
			if err != nil {
				return err
			}
			if err := a.locations.DeleteLocation(cmd.Context(), viewer, args[0]); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return err
		},
	}
}

// locationFile is the layout read by "locations import".
//
//	locations:
//	  - alias: Town hall
//	    street: Botermarkt
//	    number: "1"
//	    city: Ghent
//	    country: Belgium
//	    system: true
type locationFile struct {
	Locations []locationEntry `yaml:"locations"`
}

type locationEntry struct {
	Alias   string `yaml:"alias"`
	Street  string `yaml:"street"`
	Number  string `yaml:"number"`
	City    string `yaml:"city"`
	Country string `yaml:"country"`
	System  bool   `yaml:"system"`
}

func parseLocationFile(r io.Reader) ([]locationEntry, error) {
	var file locationFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode locations: %w", err)
	}
	return file.Locations, nil
}

func locationsImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Create locations listed in a YAML file, skipping existing aliases",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			viewer, err := a.viewer()
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			entries, err := parseLocationFile(f)
			if err != nil {
				return err
			}
			created, skipped, err := importLocations(cmd.Context(), a.locations, viewer, entries)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d locations, %d already present\n", created, skipped)
			return err
		},
	}
}

func importLocations(ctx context.Context, svc *application.LocationService, viewer proposition.User, entries []locationEntry) (created, skipped int, err error) {
	for _, e := range entries {
		_, cerr := svc.CreateLocation(ctx, application.CreateLocationParams{
			Viewer: viewer,
			Input: application.LocationInput{
				Alias:       e.Alias,
				Street:      e.Street,
				HouseNumber: e.Number,
				City:        e.City,
				Country:     e.Country,
			},
			System: e.System,
		})
		switch {
		case cerr == nil:
			created++
		case errors.Is(cerr, application.ErrAlreadyExists):
			skipped++
		default:
			return created, skipped, fmt.Errorf("location %q: %w", e.Alias, cerr)
		}
	}
	return created, skipped, nil
}

func migrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations and print their status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := a.storage.MigrationStatus(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Schema version %s, %d applied, %d pending\n",
				status.CurrentVersion, len(status.AppliedMigrations), status.PendingCount)
			return err
		},
	}
}
