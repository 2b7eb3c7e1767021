package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// publisher is the subset of *nats.Conn used for delivery.
type publisher interface {
	Publish(subject string, data []byte) error
	FlushTimeout(timeout time.Duration) error
}

// Payload is the JSON document published for each event.
type Payload struct {
	Kind            EventKind `json:"kind"`
	TableID         string    `json:"table_id"`
	Game            string    `json:"game"`
	DisplayName     string    `json:"display_name"`
	Type            string    `json:"type"`
	Date            string    `json:"date"`
	Time            string    `json:"time"`
	DurationMinutes int       `json:"duration_minutes"`
	MaxPlayers      int       `json:"max_players"`
	ProposedBy      string    `json:"proposed_by"`
	Location        string    `json:"location"`
	Link            string    `json:"link,omitempty"`
	Text            string    `json:"text"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// NewPayload converts an event into its published form.
func NewPayload(event Event, baseURL string) Payload {
	p := event.Proposition
	return Payload{
		Kind:            event.Kind,
		TableID:         p.ID,
		Game:            p.GameName,
		DisplayName:     p.DisplayName(),
		Type:            p.Type.String(),
		Date:            p.Date.Format("2006-01-02"),
		Time:            p.Time.Short(),
		DurationMinutes: p.DurationMinutes,
		MaxPlayers:      p.MaxPlayers,
		ProposedBy:      p.ProposedBy.Name(),
		Location:        p.LocationAlias(),
		Link:            Link(baseURL, p),
		Text:            FormatMessage(event, baseURL),
		OccurredAt:      event.OccurredAt.UTC(),
	}
}

// NATSPublisher publishes events as JSON on a NATS subject.
type NATSPublisher struct {
	conn         publisher
	close        func()
	subject      string
	baseURL      string
	flushTimeout time.Duration
	logger       *slog.Logger
}

// NATSOptions configures Connect.
type NATSOptions struct {
	URL          string
	Subject      string
	BaseURL      string
	FlushTimeout time.Duration
	Logger       *slog.Logger
}

// Connect dials the NATS server described by opts.
func Connect(opts NATSOptions) (*NATSPublisher, error) {
	conn, err := nats.Connect(opts.URL,
		nats.Name("tablebook"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(3),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	pub := newNATSPublisher(conn, opts)
	pub.close = conn.Close
	return pub, nil
}

func newNATSPublisher(conn publisher, opts NATSOptions) *NATSPublisher {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	flush := opts.FlushTimeout
	if flush <= 0 {
		flush = 2 * time.Second
	}
	return &NATSPublisher{
		conn:         conn,
		subject:      opts.Subject,
		baseURL:      opts.BaseURL,
		flushTimeout: flush,
		logger:       logger.With("component", "notify", "subject", opts.Subject),
	}
}

// Notify implements Notifier. The message is flushed before returning so a
// short lived process does not drop it.
func (n *NATSPublisher) Notify(ctx context.Context, event Event) (Status, error) {
	if n == nil || n.conn == nil || n.subject == "" {
		return StatusSkipped, nil
	}
	if err := ctx.Err(); err != nil {
		return StatusFailed, fmt.Errorf("context cancelled before publish: %w", err)
	}

	data, err := json.Marshal(NewPayload(event, n.baseURL))
	if err != nil {
		return StatusFailed, fmt.Errorf("marshal event: %w", err)
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		return StatusFailed, fmt.Errorf("publish event: %w", err)
	}
	if err := n.conn.FlushTimeout(n.flushTimeout); err != nil {
		return StatusFailed, fmt.Errorf("flush event: %w", err)
	}

	n.logger.DebugContext(ctx, "event published", "table_id", event.Proposition.ID, "kind", event.Kind)
	return StatusSent, nil
}

// Close releases the NATS connection.
func (n *NATSPublisher) Close() {
	if n != nil && n.close != nil {
		n.close()
		n.close = nil
	}
}
