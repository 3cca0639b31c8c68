package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/desertthunder/moodlist/internal/repositories"
	"github.com/desertthunder/moodlist/internal/server"
	"github.com/desertthunder/moodlist/internal/services"
	"github.com/desertthunder/moodlist/internal/sessions"
	"github.com/desertthunder/moodlist/internal/shared"
	"github.com/desertthunder/moodlist/internal/tasks"
	"github.com/urfave/cli/v3"
)

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the mood playlist HTTP server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Serve,
	}
}

// Serve wires the service graph and runs the HTTP server until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}
	if err := config.Validate(); err != nil {
		return err
	}

	spotify, err := services.NewSpotifyClient(config.Credentials.Spotify)
	if err != nil {
		return fmt.Errorf("failed to create spotify client: %w", err)
	}
	ollama := services.NewOllamaService(config.Ollama.BaseURL, config.Ollama.Model)

	store := sessions.NewMemoryStore()
	manager := sessions.NewManager(store, spotify, r.logger)
	assembler := tasks.NewAssembler(spotify, r.logger)

	// history keeps working without a database; creation never depends on it
	var history server.History
	if config.Database.Path != "" {
		db, err := shared.NewDatabase(config.Database.Path)
		if err != nil {
			r.logger.Warn("history database unavailable", "path", config.Database.Path, "error", err)
		} else {
			defer db.Close()
			repo, err := repositories.NewHistoryRepository(db)
			if err != nil {
				r.logger.Warn("history disabled", "error", err)
			} else {
				history = repo
			}
		}
	}

	cookies := server.NewCookies(config.Server.CookieSecret)
	limiter := server.NewIPRateLimiter(1, 5)

	router := server.NewBasicRouter()
	router.Use(
		server.Recover(r.logger),
		server.RequestLogger(r.logger),
		server.CORS(config.Server.ClientOrigin),
		server.RateLimit(limiter, "/api/ai/suggest", "/api/spotify/create-playlist"),
	)
	router.Handler(server.NewAuthHandler(spotify, store, manager, cookies, config.Server.ClientOrigin, r.logger))
	router.Handler(server.NewSuggestHandler(ollama, r.logger))
	router.Handler(server.NewPlaylistHandler(manager, assembler, history, cookies, r.logger))
	router.Handler(&server.HealthHandler{})

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r.logger.Info("starting moodlist", "model", config.Ollama.Model, "origin", config.Server.ClientOrigin)
	return server.New(config.Addr(), router, r.logger).Run(ctx)
}
