package notify

import (
	"fmt"
	"strings"

	"github.com/example/boardgame-tables/internal/proposition"
)

// Page anchors used in proposition links.
const (
	PageDefault        = "default"
	PageRestOfTheWorld = "restoftheworld"
)

// PageFor returns the listing page a proposition is shown on.
func PageFor(p proposition.Proposition) string {
	if isDefault, known := p.AtDefaultLocation(); known && !isDefault {
		return PageRestOfTheWorld
	}
	return PageDefault
}

// Link builds the URL pointing at the proposition on its listing page. An
// empty baseURL yields an empty link.
func Link(baseURL string, p proposition.Proposition) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s#table-%s", base, PageFor(p), p.ID)
}

// FormatMessage renders the human readable announcement for event.
func FormatMessage(event Event, baseURL string) string {
	p := event.Proposition

	var b strings.Builder
	switch event.Kind {
	case EventUpdated:
		b.WriteString("Table updated\n")
	default:
		b.WriteString("New table proposed\n")
	}
	fmt.Fprintf(&b, "Game: %s\n", p.DisplayName())
	fmt.Fprintf(&b, "Max players: %d\n", p.MaxPlayers)
	fmt.Fprintf(&b, "Date: %s\n", p.Date.Format("2006-01-02"))
	fmt.Fprintf(&b, "Time: %s\n", p.Time.Short())
	fmt.Fprintf(&b, "Duration: %d minutes\n", p.DurationMinutes)
	fmt.Fprintf(&b, "Proposed by: %s\n", p.ProposedBy.Name())
	fmt.Fprintf(&b, "Table: %s\n", p.ID)
	fmt.Fprintf(&b, "Location: %s", p.LocationAlias())
	if link := Link(baseURL, p); link != "" {
		fmt.Fprintf(&b, "\n%s", link)
	}
	return b.String()
}
