package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"challengeu/internal/config"
	"challengeu/internal/google"
	"challengeu/internal/icloud"
	"challengeu/internal/store"
	"challengeu/internal/syncer"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"golang.org/x/oauth2"
)

func main() {
	// Load .env file first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "challengeu",
		Usage: "Keep liked meetups and joined team games in your calendar.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "challengeu.yaml", Usage: "Path to the YAML config file."},
			&cli.BoolFlag{Name: "dry-run", Usage: "Log what would be synced without making changes."},
		},
		Commands: []*cli.Command{
			authCommand(),
			calendarsCommand(),
			meetupCommand(),
			teamCommand(),
			syncCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

// env holds everything a command needs, built from the config file and flags.
type env struct {
	cfg      *config.Config
	logger   *slog.Logger
	calendar syncer.Calendar
	meetups  *store.LikedMeetupStore
	teams    *store.TeamStore
	syncer   *syncer.Syncer
}

// loadEnv wires config, state and the calendar backend. A backend that cannot be
// built only disables calendar sync unless requireCalendar is set.
func loadEnv(c *cli.Context, requireCalendar bool) (*env, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	logger := newLogger(cfg.LogLevel)

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	var kv store.KV = store.NewFileKV(cfg.StatePath)
	cal, err := newCalendar(c.Context, cfg, logger)
	if err != nil {
		if requireCalendar {
			return nil, err
		}
		logger.Warn("Calendar backend unavailable, calendar sync disabled.", "provider", cfg.Provider, "error", err)
		cal = nil
	}

	if c.Bool("dry-run") {
		logger.Info("Performing a dry run. No changes will be made.")
		kv = store.NewOverlay(kv)
		cal = syncer.DryRun(logger, cal)
	}

	return &env{
		cfg:      cfg,
		logger:   logger,
		calendar: cal,
		meetups:  store.NewLikedMeetupStore(kv),
		teams:    store.NewTeamStore(kv),
		syncer:   syncer.NewSyncer(logger, cal, store.NewEventMapStore(kv), loc),
	}, nil
}

func newCalendar(ctx context.Context, cfg *config.Config, logger *slog.Logger) (syncer.Calendar, error) {
	switch cfg.Provider {
	case config.ProviderICloud:
		client, err := icloud.NewClient(logger, cfg.ICloud.Endpoint, cfg.ICloud.Username, cfg.ICloud.Password, cfg.ICloud.CalendarName)
		if err != nil {
			return nil, fmt.Errorf("failed to create icloud client: %w", err)
		}
		return client, nil
	case config.ProviderGoogle:
		account := cfg.Google.Account
		if account == "" {
			var err error
			if account, err = google.DefaultAccount(); err != nil {
				return nil, err
			}
		}
		client, err := google.NewClient(ctx, logger, cfg.Google.ClientID, cfg.Google.ClientSecret, account)
		if err != nil {
			return nil, fmt.Errorf("failed to create google client for account %s: %w", account, err)
		}
		return client, nil
	default:
		return nil, nil
	}
}

func authCommand() *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authorize a Google account and save its API token.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "account", Usage: "Name to save the token under, e.g. personal. Prompted for when empty."},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}
			logger := newLogger(cfg.LogLevel)

			oauthConfig, err := google.OAuthConfig(cfg.Google.ClientID, cfg.Google.ClientSecret)
			if err != nil {
				return err
			}

			in := bufio.NewReader(os.Stdin)
			fmt.Printf("Open this link, approve calendar access and paste the code shown:\n%s\n",
				oauthConfig.AuthCodeURL("challengeu", oauth2.AccessTypeOffline))
			code := prompt(in, "Authorization code: ")

			account := c.String("account")
			if account == "" {
				account = prompt(in, "Account name (e.g. personal): ")
			}

			path, err := google.Authorize(c.Context, oauthConfig, code, account)
			if err != nil {
				return err
			}
			logger.Info("Saved Google token.", "account", account, "file", path)
			return nil
		},
	}
}

func prompt(in *bufio.Reader, label string) string {
	fmt.Print(label)
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}

func calendarsCommand() *cli.Command {
	return &cli.Command{
		Name:  "calendars",
		Usage: "Show calendar access and which calendar events would be written to.",
		Action: func(c *cli.Context) error {
			e, err := loadEnv(c, true)
			if err != nil {
				return err
			}

			capability := e.syncer.Capability(c.Context)
			fmt.Printf("provider: %q  access: %s\n", e.cfg.Provider, capability)
			if e.calendar == nil {
				return nil
			}

			cals, err := e.calendar.ListCalendars(c.Context)
			if err != nil {
				return fmt.Errorf("failed to list calendars: %w", err)
			}
			target, ok := e.syncer.WritableCalendar(c.Context)
			for _, cal := range cals {
				marker := " "
				if ok && cal.ID == target.ID {
					marker = "*"
				}
				mode := "read-only"
				if cal.Modifiable {
					mode = "writable"
				}
				fmt.Printf("%s %-30s %-9s %s\n", marker, cal.Title, mode, cal.ID)
			}
			return nil
		},
	}
}

// newLogger returns a text logger on stderr. Unknown levels log at info.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
