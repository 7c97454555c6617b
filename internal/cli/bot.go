package cli

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"calorina/internal/telegram"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram webhook bot",
		Run:   runBot,
	}
	cmd.Flags().Int("retention-days", 30, "Delete telemetry older than N days (0 keeps everything)")

	RootCmd.AddCommand(cmd)
}

func runBot(cmd *cobra.Command, args []string) {
	retention, _ := cmd.Flags().GetInt("retention-days")
	cfg := loadConfig()
	if err := cfg.RequireTelegram(); err != nil {
		exitErr("load configuration", err)
	}
	logger := newLogger()

	a, err := newApp(cfg, logger)
	if err != nil {
		exitErr("start", err)
	}
	defer a.Close()

	bot, err := telegram.NewBot(cfg, a.sessions, a.store, logger)
	if err != nil {
		exitErr("init telegram bot", err)
	}

	mux := http.NewServeMux()
	bot.RegisterHandlers(mux)
	mux.Handle("/metrics", a.prom.Handler())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runServer(ctx, logger, ":"+cfg.Port, mux, a.store, retention); err != nil {
		exitErr("serve", err)
	}
}
