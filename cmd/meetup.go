package main

import (
	"fmt"
	"strconv"
	"strings"

	"challengeu/internal/models"

	"github.com/urfave/cli/v2"
)

func meetupCommand() *cli.Command {
	return &cli.Command{
		Name:  "meetup",
		Usage: "Like, unlike and list meetups.",
		Subcommands: []*cli.Command{
			{
				Name:  "like",
				Usage: "Like a meetup and add it to your calendar.",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "post-id", Required: true},
					&cli.StringFlag{Name: "sport", Required: true},
					&cli.StringFlag{Name: "location"},
					&cli.StringFlag{Name: "time", Required: true, Usage: `Start time, e.g. "7:30 PM".`},
					&cli.StringFlag{Name: "date", Required: true, Usage: "Date as YYYY-MM-DD."},
				},
				Action: func(c *cli.Context) error {
					e, err := loadEnv(c, false)
					if err != nil {
						return err
					}

					m := models.Meetup{
						PostID:   c.Int("post-id"),
						Sport:    c.String("sport"),
						Location: c.String("location"),
						Time:     c.String("time"),
						DateKey:  c.String("date"),
					}
					if err := e.meetups.Add(c.Context, likedMeetup(m)); err != nil {
						return fmt.Errorf("failed to save liked meetup: %w", err)
					}
					e.logger.Info("Liked meetup.", "postID", m.PostID, "sport", m.Sport)

					e.syncer.SyncLikedMeetup(c.Context, m)
					return nil
				},
			},
			{
				Name:  "unlike",
				Usage: "Unlike a meetup and remove it from your calendar.",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "post-id", Required: true},
				},
				Action: func(c *cli.Context) error {
					e, err := loadEnv(c, false)
					if err != nil {
						return err
					}

					postID := c.Int("post-id")
					if err := e.meetups.Remove(c.Context, postID); err != nil {
						return fmt.Errorf("failed to remove liked meetup: %w", err)
					}
					e.logger.Info("Unliked meetup.", "postID", postID)

					e.syncer.RemoveLikedMeetup(c.Context, postID)
					return nil
				},
			},
			{
				Name:  "list",
				Usage: "List liked meetups.",
				Action: func(c *cli.Context) error {
					e, err := loadEnv(c, false)
					if err != nil {
						return err
					}
					meetups, err := e.meetups.List(c.Context)
					if err != nil {
						return err
					}
					for _, m := range meetups {
						fmt.Printf("%-6d %-12s %-10s %-8s %s\n", m.PostID, m.Sport, m.DateKey, m.Time, m.Location)
					}
					return nil
				},
			},
		},
	}
}

// likedMeetup fills in the day, month and year fields from the date key.
// Malformed keys leave them zero; the calendar sync skips such meetups.
func likedMeetup(m models.Meetup) models.LikedMeetup {
	lm := models.LikedMeetup{Meetup: m}
	parts := strings.Split(m.DateKey, "-")
	if len(parts) != 3 {
		return lm
	}
	lm.Year, _ = strconv.Atoi(parts[0])
	lm.Month, _ = strconv.Atoi(parts[1])
	lm.Day, _ = strconv.Atoi(parts[2])
	return lm
}
