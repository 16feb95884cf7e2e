package view

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/leandrodaf/midiguess/sdk/contracts"
)

func render(t *testing.T, s contracts.Snapshot) string {
	t.Helper()
	r, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var buf bytes.Buffer
	if err := r.Render(&buf, s); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return buf.String()
}

func TestRenderIdle(t *testing.T) {
	if got := render(t, contracts.Snapshot{}); got != "no song loaded\n" {
		t.Fatalf("got %q", got)
	}
}

func TestRenderLoaded(t *testing.T) {
	got := render(t, contracts.Snapshot{
		Loaded:   true,
		Tokens:   2,
		State:    contracts.UserModified,
		Position: 15 * time.Second,
		Duration: time.Minute,
		Solved:   true,
		Guesses:  3,
		Tracks: []contracts.Track{
			{ID: 0, Name: "A very long track name that goes on", Muted: true, Priority: contracts.Other},
			{ID: 1, Name: "Drums", Priority: contracts.Percussion},
		},
	})
	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines:\n%s", len(lines), got)
	}
	want := "MODIFIED 0:15 / 1:00 [#####---------------] tokens 2 guesses 3 SOLVED"
	if lines[0] != want {
		t.Fatalf("header = %q, want %q", lines[0], want)
	}
	if !strings.Contains(lines[1], "muted A very long track name th") || !strings.HasSuffix(lines[1], "other") {
		t.Fatalf("track line = %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "  1 on") || !strings.HasSuffix(lines[2], "percussion") {
		t.Fatalf("track line = %q", lines[2])
	}
}

func TestClockAndBar(t *testing.T) {
	if clock(contracts.UnknownDuration) != "--:--" || clock(125*time.Second) != "2:05" {
		t.Fatalf("clock formatting wrong")
	}
	if bar(time.Minute, contracts.UnknownDuration) != strings.Repeat("-", barWidth) {
		t.Fatalf("unknown duration drew progress")
	}
	if bar(2*time.Minute, time.Minute) != strings.Repeat("#", barWidth) {
		t.Fatalf("overflow not clamped")
	}
}

func TestNewWithTemplateRejectsGarbage(t *testing.T) {
	if _, err := NewWithTemplate("{{ .Tokens "); err == nil {
		t.Fatalf("broken template parsed")
	}
}
