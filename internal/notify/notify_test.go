package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/boardgame-tables/internal/proposition"
)

type recordingConn struct {
	subject  string
	data     []byte
	pubErr   error
	flushErr error
	flushed  int
}

func (r *recordingConn) Publish(subject string, data []byte) error {
	if r.pubErr != nil {
		return r.pubErr
	}
	r.subject = subject
	r.data = append([]byte(nil), data...)
	return nil
}

func (r *recordingConn) FlushTimeout(time.Duration) error {
	r.flushed++
	return r.flushErr
}

func sampleEvent(t proposition.Type, location *proposition.Location) Event {
	return Event{
		Kind: EventCreated,
		Proposition: proposition.Proposition{
			ID:              "t-42",
			GameName:        "Brass: Birmingham",
			Date:            time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC),
			Time:            proposition.TimeOfDay{Hour: 18, Minute: 30},
			DurationMinutes: 180,
			MaxPlayers:      4,
			ProposedBy:      proposition.Player{UserID: "u1", Username: "alice"},
			Location:        location,
			Type:            t,
		},
		OccurredAt: time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestLinkUsesLocationBucket(t *testing.T) {
	home := &proposition.Location{ID: "l1", Alias: "Club", IsDefault: true}
	away := &proposition.Location{ID: "l2", Alias: "Bob's place"}

	assert.Equal(t, "https://tables.example/default#table-t-42", Link("https://tables.example/", sampleEvent(proposition.TypeProposition, home).Proposition))
	assert.Equal(t, "https://tables.example/restoftheworld#table-t-42", Link("https://tables.example", sampleEvent(proposition.TypeProposition, away).Proposition))
	assert.Equal(t, "https://tables.example/default#table-t-42", Link("https://tables.example", sampleEvent(proposition.TypeProposition, nil).Proposition))
	assert.Empty(t, Link("  ", sampleEvent(proposition.TypeProposition, home).Proposition))
}

func TestFormatMessageCarriesTypePrefix(t *testing.T) {
	event := sampleEvent(proposition.TypeTournament, &proposition.Location{ID: "l1", Alias: "Club", IsDefault: true})

	msg := FormatMessage(event, "https://tables.example")

	assert.Contains(t, msg, "New table proposed")
	assert.Contains(t, msg, "Game: TOURNAMENT | Brass: Birmingham")
	assert.Contains(t, msg, "Max players: 4")
	assert.Contains(t, msg, "Date: 2024-06-15")
	assert.Contains(t, msg, "Time: 18:30")
	assert.Contains(t, msg, "Duration: 180 minutes")
	assert.Contains(t, msg, "Proposed by: alice")
	assert.Contains(t, msg, "Location: Club")
	assert.Contains(t, msg, "https://tables.example/default#table-t-42")

	event.Kind = EventUpdated
	event.Proposition.Location = nil
	msg = FormatMessage(event, "")
	assert.Contains(t, msg, "Table updated")
	assert.Contains(t, msg, "Location: Unknown")
	assert.NotContains(t, msg, "#table-")
}

func TestNopSkips(t *testing.T) {
	status, err := Nop{}.Notify(context.Background(), sampleEvent(proposition.TypeProposition, nil))
	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, status)
}

func TestNATSPublisherPublishesJSON(t *testing.T) {
	conn := &recordingConn{}
	pub := newNATSPublisher(conn, NATSOptions{Subject: "tablebook.propositions", BaseURL: "https://tables.example"})

	status, err := pub.Notify(context.Background(), sampleEvent(proposition.TypeDemo, &proposition.Location{ID: "l2", Alias: "Garage"}))
	require.NoError(t, err)
	assert.Equal(t, StatusSent, status)
	assert.Equal(t, "tablebook.propositions", conn.subject)
	assert.Equal(t, 1, conn.flushed)

	var payload Payload
	require.NoError(t, json.Unmarshal(conn.data, &payload))
	assert.Equal(t, EventCreated, payload.Kind)
	assert.Equal(t, "t-42", payload.TableID)
	assert.Equal(t, "DEMO | Brass: Birmingham", payload.DisplayName)
	assert.Equal(t, "demo", payload.Type)
	assert.Equal(t, "Garage", payload.Location)
	assert.Equal(t, "https://tables.example/restoftheworld#table-t-42", payload.Link)
}

func TestNATSPublisherFailures(t *testing.T) {
	event := sampleEvent(proposition.TypeProposition, nil)

	t.Run("publish error", func(t *testing.T) {
		pub := newNATSPublisher(&recordingConn{pubErr: errors.New("no servers")}, NATSOptions{Subject: "s"})
		status, err := pub.Notify(context.Background(), event)
		assert.Equal(t, StatusFailed, status)
		assert.ErrorContains(t, err, "no servers")
	})

	t.Run("flush error", func(t *testing.T) {
		pub := newNATSPublisher(&recordingConn{flushErr: errors.New("timeout")}, NATSOptions{Subject: "s"})
		status, err := pub.Notify(context.Background(), event)
		assert.Equal(t, StatusFailed, status)
		assert.Error(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		conn := &recordingConn{}
		pub := newNATSPublisher(conn, NATSOptions{Subject: "s"})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		status, err := pub.Notify(ctx, event)
		assert.Equal(t, StatusFailed, status)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, conn.subject)
	})

	t.Run("no subject", func(t *testing.T) {
		pub := newNATSPublisher(&recordingConn{}, NATSOptions{})
		status, err := pub.Notify(context.Background(), event)
		require.NoError(t, err)
		assert.Equal(t, StatusSkipped, status)
	})
}
