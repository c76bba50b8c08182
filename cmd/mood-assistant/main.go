package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/mood-assistant/internal/logging"
	"github.com/nhle/mood-assistant/internal/model"

	_ "time/tzdata"
)

var (
	// Global flags
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "mood-assistant",
	Short: "Emotional wellbeing and homework assistant for LINE",
	Long: `mood-assistant is a chat assistant that runs a short emotional
self-check survey, records homework from free-text messages, recognizes
completed homework and answers weather questions.

Run "serve" to answer the LINE webhook, or "console" to chat with the
same assistant in the terminal.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", model.DefaultConfigPath(), "Path to the YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newConsoleCmd())
	rootCmd.AddCommand(newCredentialCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file named by --config and applies
// --verbose.
func loadConfig() (*model.AppConfig, error) {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

func newLogger(cfg *model.AppConfig) (*zap.Logger, error) {
	return logging.New(cfg.Log.Level, cfg.Log.Development)
}
