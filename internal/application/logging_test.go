package application

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/example/boardgame-tables/internal/logging"
)

func TestDefaultLogger(t *testing.T) {
	t.Parallel()

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	if got := defaultLogger(custom); got != custom {
		t.Fatalf("expected custom logger to be returned")
	}

	if got := defaultLogger(nil); got != slog.Default() {
		t.Fatalf("expected default logger when none provided")
	}
}

func TestServiceLoggerPrefersContextLogger(t *testing.T) {
	t.Parallel()

	var base, scoped bytes.Buffer
	baseLogger := slog.New(slog.NewJSONHandler(&base, nil))
	ctxLogger := slog.New(slog.NewJSONHandler(&scoped, nil))
	ctx := logging.ContextWithLogger(context.Background(), ctxLogger)

	serviceLogger(ctx, baseLogger, "BookingService", "Join", "table_id", "t-1").Info("hello")

	if base.Len() != 0 {
		t.Fatalf("expected base logger to stay silent, got %q", base.String())
	}
	var record map[string]any
	if err := json.Unmarshal(scoped.Bytes(), &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record["service"] != "BookingService" || record["operation"] != "Join" || record["table_id"] != "t-1" {
		t.Fatalf("unexpected attributes: %v", record)
	}
}

func TestLogOutcomeLevels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	ctx := context.Background()

	logOutcome(ctx, logger, ErrCapacityExceeded, "failed to join", "joined")
	logOutcome(ctx, logger, errors.New("disk full"), "failed to join", "joined")
	logOutcome(ctx, logger, nil, "failed to join", "joined", "roster_size", 2)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected three records, got %d", len(lines))
	}

	var expected, fault, success map[string]any
	for i, target := range []*map[string]any{&expected, &fault, &success} {
		if err := json.Unmarshal([]byte(lines[i]), target); err != nil {
			t.Fatalf("decode record %d: %v", i, err)
		}
	}
	if expected["level"] != "INFO" || expected["outcome"] != "capacity_exceeded" {
		t.Fatalf("expected outcome logged at info, got %v", expected)
	}
	if fault["level"] != "ERROR" || fault["error_kind"] != "unexpected" {
		t.Fatalf("expected fault logged at error, got %v", fault)
	}
	if success["msg"] != "joined" || success["roster_size"] != float64(2) {
		t.Fatalf("unexpected success record: %v", success)
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	cases := map[error]string{
		nil:                 "",
		ErrUnauthorized:     "unauthorized",
		ErrNotFound:         "not_found",
		ErrAlreadyJoined:    "already_joined",
		ErrCapacityExceeded: "capacity_exceeded",
		ErrInvalidCapacity:  "invalid_capacity",
		ErrBanned:           "banned",
		ErrStorage:          "storage",
		&ValidationError{}:  "validation",
		errors.New("boom"):  "unexpected",
	}
	for err, want := range cases {
		if got := ErrorKind(err); got != want {
			t.Fatalf("ErrorKind(%v) = %q, want %q", err, got, want)
		}
	}
}
