// Package cli implements the calorina commands.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"calorina/internal/config"

	"github.com/spf13/cobra"
)

var logLevel string

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "calorina",
	Short: "Diet and fitness companion",
	Long:  "Calorina interviews users, builds a diet plan from their questionnaire and a workout plan from chat, then keeps answering questions.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		slog.SetDefault(newLogger())
	},
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(logLevel)}))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func loadConfig() *config.Config {
	cfg, err := config.NewFromEnv()
	if err != nil {
		exitErr("load configuration", err)
	}
	return cfg
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
