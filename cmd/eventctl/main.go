package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventify/internal/auth"
	"eventify/internal/client"
	"eventify/internal/config"
	"eventify/internal/database"
	"eventify/internal/database/migrations"
	"eventify/internal/events/db"
	eventsredis "eventify/internal/events/redis"
	"eventify/internal/kafka"
	"eventify/internal/logger"
	"eventify/internal/models"
	"eventify/internal/seed"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/urfave/cli/v2"
)

func main() {
	// Load .env file first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "eventctl:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "eventctl",
		Usage: "Operate an Eventify deployment.",
		Commands: []*cli.Command{
			migrateCommand(),
			seedCommand(),
			tokenCommand(),
			eventsCommand(),
			watchCommand(),
		},
	}
}

func newLogger() *logger.Logger {
	return logger.NewLogger(logger.Options{
		Service: "eventctl",
		Level:   logger.ParseLevel(os.Getenv("LOG_LEVEL")),
	})
}

func openDB(ctx context.Context, log *logger.Logger) (*bun.DB, error) {
	cfg := config.Load()
	return database.Connect(ctx, cfg.Database, log)
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply or roll back the database schema.",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "Apply all pending migrations.",
				Action: func(c *cli.Context) error {
					log := newLogger()
					bunDB, err := openDB(c.Context, log)
					if err != nil {
						return err
					}
					defer bunDB.Close()
					return database.EnsureSchema(c.Context, bunDB, log)
				},
			},
			{
				Name:  "down",
				Usage: "Roll back every migration. Destroys all events.",
				Action: func(c *cli.Context) error {
					log := newLogger()
					bunDB, err := openDB(c.Context, log)
					if err != nil {
						return err
					}
					if !database.IsPostgres(bunDB) {
						bunDB.Close()
						return errors.New("migrate down is only supported on postgres")
					}
					runner := migrations.NewRunner(bunDB, log)
					defer runner.Close()
					if err := runner.MigrateDown(); err != nil {
						return err
					}
					log.Info("MIGRATE", "All migrations rolled back")
					return nil
				},
			},
		},
	}
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Insert the demo events.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "creator", Required: true, Usage: "Subject that will own the events."},
			&cli.BoolFlag{Name: "reset", Usage: "Delete all existing events first."},
		},
		Action: func(c *cli.Context) error {
			log := newLogger()
			bunDB, err := openDB(c.Context, log)
			if err != nil {
				return err
			}
			defer bunDB.Close()

			if err := database.EnsureSchema(c.Context, bunDB, log); err != nil {
				return err
			}
			_, err = seed.Run(c.Context, &db.DB{Bun: bunDB}, c.String("creator"), c.Bool("reset"), time.Now(), log)
			return err
		},
	}
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Issue a development token signed with JWT_SECRET.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "subject", Aliases: []string{"s"}, Required: true},
			&cli.StringFlag{Name: "name"},
			&cli.StringFlag{Name: "email"},
			&cli.DurationFlag{Name: "ttl", Usage: "Token lifetime (default TOKEN_TTL)."},
		},
		Action: func(c *cli.Context) error {
			cfg := config.Load()
			if cfg.Auth.JWTSecret == "" {
				return errors.New("JWT_SECRET not set")
			}
			ttl := cfg.Auth.TokenTTL
			if c.IsSet("ttl") {
				ttl = c.Duration("ttl")
			}

			token, err := auth.IssueToken([]byte(cfg.Auth.JWTSecret), cfg.Auth.JWTIssuer, auth.Identity{
				Subject: c.String("subject"),
				Name:    c.String("name"),
				Email:   c.String("email"),
			}, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, token)
			return nil
		},
	}
}

func eventsCommand() *cli.Command {
	serverFlag := func() cli.Flag {
		return &cli.StringFlag{Name: "server", Value: "http://localhost:5000", EnvVars: []string{"EVENTIFY_URL"}}
	}

	return &cli.Command{
		Name:  "events",
		Usage: "Query a running server.",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "Print one page of events as JSON.",
				Flags: []cli.Flag{
					serverFlag(),
					&cli.StringFlag{Name: "search"},
					&cli.StringFlag{Name: "category"},
					&cli.IntFlag{Name: "page", Value: 1},
					&cli.IntFlag{Name: "page-size"},
				},
				Action: func(c *cli.Context) error {
					page, err := client.New(c.String("server"), "").List(c.Context, models.ListQuery{
						Search:   c.String("search"),
						Category: c.String("category"),
						Page:     c.Int("page"),
						PageSize: c.Int("page-size"),
					})
					if err != nil {
						return err
					}
					return printJSON(c, page)
				},
			},
			{
				Name:      "get",
				Usage:     "Print one event as JSON.",
				ArgsUsage: "<id>",
				Flags:     []cli.Flag{serverFlag()},
				Action: func(c *cli.Context) error {
					id := c.Args().First()
					if id == "" {
						return errors.New("event id is required")
					}
					ev, err := client.New(c.String("server"), "").Get(c.Context, id)
					if client.IsNotFound(err) {
						return fmt.Errorf("no event with id %s", id)
					}
					if err != nil {
						return err
					}
					return printJSON(c, ev)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete an event you created.",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					serverFlag(),
					&cli.StringFlag{Name: "token", EnvVars: []string{"EVENTIFY_TOKEN"}},
				},
				Action: func(c *cli.Context) error {
					id := c.Args().First()
					if id == "" {
						return errors.New("event id is required")
					}
					if err := client.New(c.String("server"), c.String("token")).Delete(c.Context, id); err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, "Event deleted")
					return nil
				},
			},
		},
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Print lifecycle notifications as they are published.",
		Action: func(c *cli.Context) error {
			cfg := config.Load()
			log := newLogger()

			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			show := func(n models.EventNotification) {
				if err := printJSON(c, n); err != nil {
					log.Error("WATCH", err.Error())
				}
			}

			switch cfg.Events.Publisher {
			case "kafka":
				producer := &kafka.Producer{TopicPrefix: cfg.Kafka.TopicPrefix}
				consumer := kafka.NewConsumer(cfg.Kafka.Brokers, producer.Topics(), "eventctl-watch", log)
				defer consumer.Close()
				return consumer.Run(ctx, show)
			case "redis":
				rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
				defer rdb.Close()
				return eventsredis.Subscribe(ctx, rdb, cfg.Redis.Channel, log, show)
			default:
				return fmt.Errorf("EVENT_PUBLISHER is %q; set it to kafka or redis", cfg.Events.Publisher)
			}
		},
	}
}

func printJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
