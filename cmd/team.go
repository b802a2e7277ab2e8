package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"challengeu/internal/models"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

func teamCommand() *cli.Command {
	return &cli.Command{
		Name:  "team",
		Usage: "Join, leave and list teams.",
		Subcommands: []*cli.Command{
			{
				Name:  "join",
				Usage: "Join a team and add its upcoming games to your calendar.",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name"},
					&cli.StringFlag{Name: "sport"},
					&cli.StringSliceFlag{Name: "game", Usage: `Weekly game as "Wed 6:00 PM|Opponent|Location". Repeatable.`},
					&cli.StringFlag{Name: "file", Usage: "YAML file describing the team (name, sport, games)."},
				},
				Action: func(c *cli.Context) error {
					team, err := teamFromFlags(c)
					if err != nil {
						return err
					}

					e, err := loadEnv(c, false)
					if err != nil {
						return err
					}

					prev, joined, err := e.teams.Get(c.Context, team.Name)
					if err != nil {
						return fmt.Errorf("failed to read joined teams: %w", err)
					}
					if err := e.teams.Add(c.Context, team); err != nil {
						return fmt.Errorf("failed to save joined team: %w", err)
					}
					e.logger.Info("Joined team.", "team", team.Name, "games", len(team.Games))

					// Game keys are index based, so drop indices the new schedule no longer has.
					if joined {
						e.syncer.TrimJoinedTeamGames(c.Context, team.Name, len(team.Games), len(prev.Games))
					}
					e.syncer.SyncJoinedTeamGames(c.Context, team.Name, team.Sport, team.Games)
					return nil
				},
			},
			{
				Name:  "leave",
				Usage: "Leave a team and remove its games from your calendar.",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.IntFlag{Name: "games-count", Usage: "Number of games to remove when the team is not recorded locally."},
				},
				Action: func(c *cli.Context) error {
					e, err := loadEnv(c, false)
					if err != nil {
						return err
					}

					name := c.String("name")
					team, joined, err := e.teams.Get(c.Context, name)
					if err != nil {
						return fmt.Errorf("failed to read joined teams: %w", err)
					}
					count := c.Int("games-count")
					if joined {
						count = len(team.Games)
					}

					if err := e.teams.Remove(c.Context, name); err != nil {
						return fmt.Errorf("failed to remove joined team: %w", err)
					}
					e.logger.Info("Left team.", "team", name)

					e.syncer.RemoveJoinedTeamGames(c.Context, name, count)
					return nil
				},
			},
			{
				Name:  "list",
				Usage: "List joined teams and their games.",
				Action: func(c *cli.Context) error {
					e, err := loadEnv(c, false)
					if err != nil {
						return err
					}
					teams, err := e.teams.List(c.Context)
					if err != nil {
						return err
					}
					for _, t := range teams {
						fmt.Printf("%s (%s)\n", t.Name, t.Sport)
						for i, g := range t.Games {
							fmt.Printf("  %d. %-14s vs %-20s %s\n", i, g.Date, g.Opponent, g.Location)
						}
					}
					return nil
				},
			},
		},
	}
}

func teamFromFlags(c *cli.Context) (models.Team, error) {
	var team models.Team
	if path := c.String("file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return team, fmt.Errorf("failed to read team file: %w", err)
		}
		if err := yaml.Unmarshal(data, &team); err != nil {
			return team, fmt.Errorf("failed to parse team file %s: %w", path, err)
		}
	}

	if v := c.String("name"); v != "" {
		team.Name = v
	}
	if v := c.String("sport"); v != "" {
		team.Sport = v
	}
	for _, spec := range c.StringSlice("game") {
		game, err := parseGame(spec)
		if err != nil {
			return team, err
		}
		team.Games = append(team.Games, game)
	}

	if team.Name == "" {
		return team, errors.New("a team name is required (--name or file)")
	}
	return team, nil
}

// parseGame reads "Wed 6:00 PM|Opponent|Location". The date is kept verbatim;
// unparseable dates are skipped at sync time.
func parseGame(spec string) (models.TeamGame, error) {
	parts := strings.Split(spec, "|")
	if len(parts) < 2 || len(parts) > 3 {
		return models.TeamGame{}, fmt.Errorf("invalid game %q, want \"<day> <time>|<opponent>[|<location>]\"", spec)
	}
	game := models.TeamGame{
		Date:     strings.TrimSpace(parts[0]),
		Opponent: strings.TrimSpace(parts[1]),
	}
	if len(parts) == 3 {
		game.Location = strings.TrimSpace(parts[2])
	}
	return game, nil
}
