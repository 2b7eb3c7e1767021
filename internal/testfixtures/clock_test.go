package testfixtures

import (
	"testing"
	"time"

	"github.com/example/boardgame-tables/internal/proposition"
)

func TestClockDefaultsToReferenceTime(t *testing.T) {
	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("expected ReferenceTime, got %v", clock.Now())
	}
}

func TestClockAdvanceAndSet(t *testing.T) {
	start := time.Date(2024, time.March, 14, 9, 26, 0, 0, time.UTC)
	clock := NewClock(start)

	updated := clock.Advance(90 * time.Minute)
	if !updated.Equal(start.Add(90 * time.Minute)) {
		t.Fatalf("advance returned %v", updated)
	}

	clock.Set(start.Add(2 * time.Hour))
	if got := clock.Ago(time.Hour); !got.Equal(start.Add(time.Hour)) {
		t.Fatalf("expected %v, got %v", start.Add(time.Hour), got)
	}

	nowFn := clock.NowFunc()
	clock.Advance(time.Minute)
	if got := nowFn(); !got.Equal(clock.Now()) {
		t.Fatalf("expected NowFunc to follow the clock, got %v", got)
	}
}

func TestClockOn(t *testing.T) {
	clock := NewClock(time.Date(2024, time.February, 28, 22, 15, 0, 0, time.UTC))

	got := clock.On(2, proposition.SlotAfternoon)
	want := time.Date(2024, time.March, 1, 14, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestEndingAt(t *testing.T) {
	clock := NewClock(time.Time{})
	end := clock.Ago(12 * time.Hour)

	p := NewProposition(NewUser(), EndingAt(end, 90))
	if !p.End().Equal(end) {
		t.Fatalf("expected end %v, got %v", end, p.End())
	}
	if p.DurationMinutes != 90 {
		t.Fatalf("expected 90 minutes, got %d", p.DurationMinutes)
	}
}
