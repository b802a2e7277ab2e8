package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"
)

func syncCommand() *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Re-sync every liked meetup and joined team to the calendar.",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "watch", Usage: "Keep running and re-sync on the configured cron schedule."},
			&cli.StringFlag{Name: "schedule", Usage: "Cron spec overriding the configured schedule, e.g. \"0 6 * * *\"."},
		},
		Action: func(c *cli.Context) error {
			e, err := loadEnv(c, false)
			if err != nil {
				return err
			}

			if !c.Bool("watch") {
				e.logger.Info("Running a single sync cycle.")
				return e.syncAll(c.Context)
			}

			spec := e.cfg.Schedule
			if c.IsSet("schedule") {
				spec = c.String("schedule")
			}
			loc, err := e.cfg.Location()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			scheduler := cron.New(cron.WithLocation(loc))
			if _, err := scheduler.AddFunc(spec, func() {
				if err := e.syncAll(ctx); err != nil {
					e.logger.Error("Sync cycle failed", "error", err)
				}
			}); err != nil {
				return fmt.Errorf("invalid sync schedule %q: %w", spec, err)
			}

			// Sync once up front so a fresh watcher does not wait for the first tick.
			if err := e.syncAll(ctx); err != nil {
				e.logger.Error("Sync cycle failed", "error", err)
			}

			e.logger.Info("Starting watcher.", "schedule", spec)
			scheduler.Start()
			<-ctx.Done()
			<-scheduler.Stop().Done()
			e.logger.Info("Watcher stopped.")
			return nil
		},
	}
}

// syncAll pushes every locally recorded like and team membership to the calendar.
// Team games are recomputed each cycle, so passed games roll forward a week.
func (e *env) syncAll(ctx context.Context) error {
	e.logger.Info("Starting sync cycle.")

	meetups, err := e.meetups.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load liked meetups: %w", err)
	}
	teams, err := e.teams.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load joined teams: %w", err)
	}

	for _, m := range meetups {
		e.syncer.SyncLikedMeetup(ctx, m.Meetup)
	}
	for _, t := range teams {
		e.syncer.SyncJoinedTeamGames(ctx, t.Name, t.Sport, t.Games)
	}

	e.logger.Info("Sync cycle finished.", "meetups", len(meetups), "teams", len(teams))
	return nil
}
