package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/mood-assistant/internal/credential"
	"github.com/nhle/mood-assistant/internal/logging"
	"github.com/nhle/mood-assistant/internal/ui/console"
)

func newConsoleCmd() *cobra.Command {
	var (
		userID  string
		logFile string
	)

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Chat with the assistant in the terminal",
		Long: `Opens a terminal chat that talks to the same dialogue engine as the
LINE webhook. Type messages as you would in LINE; "/1", "/2", ... press the
buttons of the latest reply and "/follow" shows the greeting again.

Logs go to --log-file so they do not disturb the screen.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			log, err := logging.ToFile(cfg.Log.Level, logFile)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			app, err := newApplication(cfg, credential.NewStore(), log)
			if err != nil {
				return err
			}
			defer func() {
				if err := app.Close(); err != nil {
					log.Error("closing task store", zap.Error(err))
				}
			}()

			return console.Run(app.router, userID)
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "console", "User id to chat as")
	cmd.Flags().StringVar(&logFile, "log-file", filepath.Join(os.TempDir(), "mood-assistant.log"), "Where console mode writes logs")
	return cmd
}
