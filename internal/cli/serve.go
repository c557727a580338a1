package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mergelens/mergelens/internal/cache"
	"github.com/mergelens/mergelens/internal/config"
	"github.com/mergelens/mergelens/internal/logging"
	"github.com/mergelens/mergelens/internal/provider"
	"github.com/mergelens/mergelens/internal/review"
	"github.com/mergelens/mergelens/internal/server"
)

var (
	flagListen   string
	flagRepo     string
	flagProvider string
	flagModel    string
	flagLogLevel string
)

func init() {
	serveCmd.Flags().StringVar(&flagListen, "listen", "", "Listen address (default :8080)")
	serveCmd.Flags().StringVar(&flagRepo, "repo", "", "Path to the working copy used for context gathering")
	serveCmd.Flags().StringVar(&flagProvider, "provider", "", "LLM provider (openrouter, ollama)")
	serveCmd.Flags().StringVar(&flagModel, "model", "", "Model name")
	serveCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagListen != "" {
		m["listenAddr"] = flagListen
	}
	if flagRepo != "" {
		m["repoPath"] = flagRepo
	}
	if flagProvider != "" {
		m["provider"] = flagProvider
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagLogLevel != "" {
		m["logLevel"] = flagLogLevel
	}
	return m
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the webhook server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		log := logging.New(cfg.LogLevel)

		completer, err := provider.New(cfg.Provider, cfg.Model)
		if err != nil {
			return fmt.Errorf("creating provider: %w", err)
		}

		cacheDir := cfg.Cache.Dir
		if cfg.Cache.Enabled && cacheDir == "" {
			cacheDir, err = cache.DefaultDir()
			if err != nil {
				return err
			}
		}
		c, err := cache.New(cfg.Cache.Enabled, cacheDir, cfg.Cache.TTLSeconds)
		if err != nil {
			return fmt.Errorf("creating cache: %w", err)
		}

		pipeline := review.New(cfg, log, completer, c)
		srv := server.New(cfg.ListenAddr, cfg.RepoPath, log, pipeline)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() { errCh <- srv.ListenAndServe() }()

		select {
		case err := <-errCh:
			if err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("server exited: %w", err)
			}
		case <-ctx.Done():
			log.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
		}
		return nil
	},
}
