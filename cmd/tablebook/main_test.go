package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/example/boardgame-tables/internal/application"
)

type cli struct {
	t   *testing.T
	dir string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("TABLEBOOK_SQLITE_DSN", filepath.Join(dir, "tablebook.db"))
	t.Setenv("TABLEBOOK_DEFAULT_LOCATION_ALIAS", "Club")
	t.Setenv("TABLEBOOK_NATS_URL", "")
	t.Setenv("TABLEBOOK_METADATA_CATALOG", "")
	t.Setenv("TABLEBOOK_USER", "")
	t.Setenv("TABLEBOOK_USERNAME", "")
	return &cli{t: t, dir: dir}
}

func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(c.dir, "missing.env")}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	if err != nil {
		c.t.Fatalf("tablebook %s failed: %v", strings.Join(args, " "), err)
	}
	return out
}

func tableIDFrom(t *testing.T, out string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 2 && fields[0] == "Table:" {
			return fields[1]
		}
	}
	t.Fatalf("no table id in output:\n%s", out)
	return ""
}

func TestBookingFlow(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("--user", "alice", "propose",
		"--game", "Catan", "--date", "2099-01-10", "--time", "evening", "--max", "2", "--join",
		"--expansion", "926:Seafarers")
	id := tableIDFrom(t, out)
	for _, want := range []string{"Catan", "1/2 Available", "Where:", "Club", "Seafarers", "Notification: skipped"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in propose output:\n%s", want, out)
		}
	}

	out = c.mustRun("--user", "bob", "join", id)
	if !strings.Contains(out, "2/2 Full") {
		t.Fatalf("expected full table after join:\n%s", out)
	}

	if _, err := c.run("--user", "carol", "join", id); !errors.Is(err, application.ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}

	out = c.mustRun("--user", "bob", "leave", id)
	if !strings.Contains(out, "1/2 Available") {
		t.Fatalf("expected a free seat after leave:\n%s", out)
	}
	c.mustRun("--user", "carol", "join", id)

	if _, err := c.run("--user", "carol", "update", id, "--max", "1"); !errors.Is(err, application.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for a non-proposer, got %v", err)
	}
	if _, err := c.run("--user", "alice", "update", id, "--max", "1"); !errors.Is(err, application.ErrInvalidCapacity) {
		t.Fatalf("expected ErrInvalidCapacity, got %v", err)
	}
	out = c.mustRun("--user", "alice", "update", id, "--max", "3", "--notes", "bring snacks")
	if !strings.Contains(out, "2/3") || !strings.Contains(out, "bring snacks") {
		t.Fatalf("unexpected update output:\n%s", out)
	}

	out = c.mustRun("list")
	if !strings.Contains(out, id) || !strings.Contains(out, "2/3") {
		t.Fatalf("expected table in listing:\n%s", out)
	}
	out = c.mustRun("--user", "bob", "list", "--joined")
	if !strings.Contains(out, "No tables.") {
		t.Fatalf("expected bob to have no joined tables:\n%s", out)
	}

	out = c.mustRun("--user", "carol", "conflicts")
	if !strings.Contains(out, "No conflicts.") {
		t.Fatalf("expected no conflicts:\n%s", out)
	}

	c.mustRun("--user", "alice", "delete", id)
	if _, err := c.run("show", id); !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestConflictsCommand(t *testing.T) {
	c := newCLI(t)

	first := tableIDFrom(t, c.mustRun("--user", "alice", "propose", "--game", "Azul", "--date", "2099-02-01", "--time", "18:00", "--duration", "120"))
	second := tableIDFrom(t, c.mustRun("--user", "bob", "propose", "--game", "Brass", "--date", "2099-02-01", "--time", "19:00", "--duration", "60"))
	c.mustRun("--user", "carol", "join", first)
	c.mustRun("--user", "carol", "join", second)

	out := c.mustRun("--user", "carol", "conflicts")
	if !strings.Contains(out, "warning") || !strings.Contains(out, first) || !strings.Contains(out, second) {
		t.Fatalf("expected a warning between both tables:\n%s", out)
	}
}

func TestLocationsImport(t *testing.T) {
	c := newCLI(t)

	path := filepath.Join(c.dir, "locations.yaml")
	content := `locations:
  - alias: Town hall
    street: Botermarkt
    number: "1"
    city: Ghent
    system: true
  - alias: Library
    city: Ghent
    system: true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write locations file: %v", err)
	}

	if _, err := c.run("--user", "bob", "locations", "import", path); !errors.Is(err, application.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for a non-admin, got %v", err)
	}

	out := c.mustRun("--user", "root", "--admin", "locations", "import", path)
	if !strings.Contains(out, "Imported 2 locations, 0 already present") {
		t.Fatalf("unexpected import output: %s", out)
	}
	out = c.mustRun("--user", "root", "--admin", "locations", "import", path)
	if !strings.Contains(out, "Imported 0 locations, 2 already present") {
		t.Fatalf("expected import to be idempotent: %s", out)
	}

	out = c.mustRun("--user", "bob", "locations", "list")
	for _, want := range []string{"Club", "default", "Town hall", "Library", "system"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in locations:\n%s", want, out)
		}
	}
}

func TestRequiresActingUser(t *testing.T) {
	c := newCLI(t)
	if _, err := c.run("propose", "--game", "Catan", "--date", "2099-01-10"); err == nil || !strings.Contains(err.Error(), "--user") {
		t.Fatalf("expected missing user error, got %v", err)
	}
}

func TestTableFlagsPatch(t *testing.T) {
	var f tableFlags
	cmd := &cobra.Command{Use: "update"}
	f.register(cmd)
	if err := cmd.Flags().Parse([]string{"--max", "6", "--time", "afternoon", "--expansion", "1:Promo"}); err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	patch, err := f.patch(cmd, nil)
	if err != nil {
		t.Fatalf("patch returned error: %v", err)
	}
	if patch.MaxPlayers == nil || *patch.MaxPlayers != 6 {
		t.Fatalf("expected max players 6, got %v", patch.MaxPlayers)
	}
	if patch.Time == nil || patch.Time.Hour != 14 {
		t.Fatalf("expected afternoon slot, got %v", patch.Time)
	}
	if patch.Expansions == nil || len(*patch.Expansions) != 1 || (*patch.Expansions)[0].Name != "Promo" {
		t.Fatalf("unexpected expansions %v", patch.Expansions)
	}
	if patch.GameName != nil || patch.Date != nil || patch.DurationMinutes != nil || patch.Type != nil || patch.LocationID != nil {
		t.Fatalf("expected untouched flags to stay nil: %+v", patch)
	}
}

func TestParseExpansions(t *testing.T) {
	got, err := parseExpansions([]string{"926:Seafarers", " 325 : Cities & Knights ", "7"})
	if err != nil {
		t.Fatalf("parseExpansions returned error: %v", err)
	}
	if len(got) != 3 || got[1].ID != 325 || got[1].Name != "Cities & Knights" || got[2].Name != "" {
		t.Fatalf("unexpected expansions %+v", got)
	}
	if _, err := parseExpansions([]string{"seafarers"}); err == nil {
		t.Fatalf("expected error for a missing id")
	}
}
