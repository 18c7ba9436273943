// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/docvault"
	"github.com/poiesic/docvault/ai"
	"github.com/poiesic/docvault/server"
)

func main() {
	// Missing .env is fine; flags and real env still apply.
	godotenv.Load()

	app := &cli.App{
		Name:  "docvaultd",
		Usage: "Document ingestion and semantic search service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP service",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "addr",
						Usage:   "Listen address",
						Value:   ":8000",
						EnvVars: []string{"DOCVAULT_ADDR"},
					},
					&cli.StringFlag{
						Name:    "uploads-dir",
						Usage:   "Root directory for uploaded files and metadata",
						Value:   "./uploads",
						EnvVars: []string{"DOCVAULT_UPLOADS_DIR"},
					},
					&cli.StringFlag{
						Name:    "index-dir",
						Usage:   "Directory for the vector index",
						Value:   "./index",
						EnvVars: []string{"DOCVAULT_INDEX_DIR"},
					},
					&cli.StringFlag{
						Name:    "embedding-host",
						Usage:   "Embedding service host URL",
						Value:   "http://localhost:11434/v1",
						EnvVars: []string{"DOCVAULT_EMBEDDING_HOST"},
					},
					&cli.StringFlag{
						Name:    "embedding-model",
						Usage:   "Embedding model name",
						Value:   "nomic-embed-text",
						EnvVars: []string{"DOCVAULT_EMBEDDING_MODEL"},
					},
					&cli.StringFlag{
						Name:    "api-token",
						Usage:   "API token for the embedding service",
						Value:   "none",
						EnvVars: []string{"DOCVAULT_API_TOKEN"},
					},
					&cli.IntFlag{
						Name:    "pool-size",
						Usage:   "Ingestion worker pool size (0 uses half the CPUs)",
						EnvVars: []string{"DOCVAULT_POOL_SIZE"},
					},
					&cli.Int64Flag{
						Name:    "max-upload-size",
						Usage:   "Single-shot upload size cap in bytes",
						EnvVars: []string{"DOCVAULT_MAX_UPLOAD_SIZE"},
					},
					&cli.DurationFlag{
						Name:  "shutdown-timeout",
						Usage: "How long to wait for in-flight jobs on shutdown",
						Value: 30 * time.Second,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func serveCommand(c *cli.Context) error {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithAPIToken(c.String("api-token")),
	)
	if err := aiConfig.Validate(); err != nil {
		return err
	}

	opts := []docvault.VaultOption{
		docvault.WithAIConfig(aiConfig),
	}
	if size := c.Int("pool-size"); size > 0 {
		opts = append(opts, docvault.WithPoolSize(size))
	}
	if limit := c.Int64("max-upload-size"); limit > 0 {
		opts = append(opts, docvault.WithMaxUploadSize(limit))
	}

	vault, err := docvault.New(c.String("uploads-dir"), c.String("index-dir"), opts...)
	if err != nil {
		return fmt.Errorf("opening vault: %w", err)
	}

	srv, err := server.New(vault.Files(), vault.Uploads(), vault.Searcher())
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    c.String("addr"),
		Handler: srv.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		vault.Close(context.Background())
		return err
	case sig := <-stop:
		slog.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.Duration("shutdown-timeout"))
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("error shutting down http server", "err", err)
	}
	if err := vault.Close(ctx); err != nil {
		return err
	}
	return <-errCh
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
