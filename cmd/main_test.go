package main

import (
	"bufio"
	"context"
	"log/slog"
	"strings"
	"testing"

	"challengeu/internal/models"

	"github.com/go-test/deep"
)

func TestParseGame(t *testing.T) {
	t.Parallel()

	for _, test := range []struct {
		In      string
		Want    models.TeamGame
		WantErr bool
	}{
		{In: "Wed 6:00 PM|Owls|Gym A", Want: models.TeamGame{Date: "Wed 6:00 PM", Opponent: "Owls", Location: "Gym A"}},
		{In: " Fri 7:15 PM | Bears ", Want: models.TeamGame{Date: "Fri 7:15 PM", Opponent: "Bears"}},
		{In: "someday|Foxes", Want: models.TeamGame{Date: "someday", Opponent: "Foxes"}},
		{In: "Wed 6:00 PM", WantErr: true},
		{In: "a|b|c|d", WantErr: true},
	} {
		got, err := parseGame(test.In)
		if (err != nil) != test.WantErr {
			t.Errorf("parseGame(%q) err = %v", test.In, err)
			continue
		}
		if diff := deep.Equal(got, test.Want); diff != nil {
			t.Errorf("parseGame(%q): %v", test.In, diff)
		}
	}
}

func TestLikedMeetup(t *testing.T) {
	t.Parallel()

	m := models.Meetup{PostID: 3, DateKey: "2026-10-24", Time: "7:30 PM"}
	want := models.LikedMeetup{Meetup: m, Year: 2026, Month: 10, Day: 24}
	if diff := deep.Equal(likedMeetup(m), want); diff != nil {
		t.Error(diff)
	}

	bad := models.Meetup{PostID: 4, DateKey: "tomorrow"}
	if diff := deep.Equal(likedMeetup(bad), models.LikedMeetup{Meetup: bad}); diff != nil {
		t.Error(diff)
	}
}

func TestNewLoggerLevel(t *testing.T) {
	t.Parallel()

	for _, test := range []struct {
		In   string
		Want slog.Level
	}{
		{In: "debug", Want: slog.LevelDebug},
		{In: "WARN", Want: slog.LevelWarn},
		{In: "error", Want: slog.LevelError},
		{In: "", Want: slog.LevelInfo},
		{In: "verbose", Want: slog.LevelInfo},
	} {
		logger := newLogger(test.In)
		ctx := context.Background()
		if !logger.Enabled(ctx, test.Want) || (test.Want > slog.LevelDebug && logger.Enabled(ctx, test.Want-1)) {
			t.Errorf("newLogger(%q) does not log from %v", test.In, test.Want)
		}
	}
}

func TestPrompt(t *testing.T) {
	t.Parallel()

	in := bufio.NewReader(strings.NewReader("  4/abc-code \npersonal\n"))
	if got := prompt(in, ""); got != "4/abc-code" {
		t.Errorf("first prompt = %q", got)
	}
	if got := prompt(in, ""); got != "personal" {
		t.Errorf("second prompt = %q", got)
	}
	if got := prompt(in, ""); got != "" {
		t.Errorf("prompt at EOF = %q", got)
	}
}
