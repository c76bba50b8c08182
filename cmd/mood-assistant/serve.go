package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/mood-assistant/internal/credential"
	"github.com/nhle/mood-assistant/internal/line"
	"github.com/nhle/mood-assistant/internal/model"
)

const replyTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the LINE webhook",
		Long: `Starts the HTTP server that receives LINE webhook deliveries on
POST /webhook and replies through the Messaging API.

Secrets are read from the environment first, then from the system keyring:
  LINE_CHANNEL_SECRET        / line-channel-secret
  LINE_CHANNEL_ACCESS_TOKEN  / line-channel-access-token
  CWA_API_KEY                / cwa-api-key (optional, enables weather)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if !cfg.Log.Development {
				gin.SetMode(gin.ReleaseMode)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, credential.NewStore(), log)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}

// serve resolves the LINE secrets, builds the application and runs the
// webhook server until ctx ends.
func serve(ctx context.Context, cfg *model.AppConfig, secrets secretSource, log *zap.Logger) error {
	channelSecret, err := secrets.Lookup(credential.EnvLineChannelSecret, credential.KeyLineChannelSecret)
	if err != nil {
		return fmt.Errorf("loading LINE channel secret: %w", err)
	}
	accessToken, err := secrets.Lookup(credential.EnvLineAccessToken, credential.KeyLineAccessToken)
	if err != nil {
		return fmt.Errorf("loading LINE access token: %w", err)
	}

	app, err := newApplication(cfg, secrets, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Error("closing task store", zap.Error(err))
		}
	}()

	client := line.NewClient(cfg.Line.APIBase, accessToken, replyTimeout)
	srv := line.NewServer(channelSecret, app.router, client, log.Named("line"))

	if err := srv.Run(ctx, cfg.Server.Addr); err != nil {
		return fmt.Errorf("serving webhook: %w", err)
	}
	log.Info("webhook server stopped")
	return nil
}
