package cli

import (
	"os"
	"os/signal"
	"syscall"

	"calorina/internal/httpapi"
	"calorina/internal/i18n"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Run:   runServe,
	}
	cmd.Flags().Int("retention-days", 30, "Delete telemetry older than N days (0 keeps everything)")

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) {
	retention, _ := cmd.Flags().GetInt("retention-days")
	cfg := loadConfig()
	logger := newLogger()

	a, err := newApp(cfg, logger)
	if err != nil {
		exitErr("start", err)
	}
	defer a.Close()

	api := httpapi.NewServer(httpapi.Deps{
		Sessions:        a.sessions,
		Users:           a.users,
		Tokens:          a.tokens,
		Catalog:         a.catalog,
		Importer:        a.importer,
		Metrics:         a.prom.Handler(),
		DataDir:         a.dataDir(),
		DefaultLanguage: i18n.Language(cfg.DefaultLanguage),
		Logger:          logger,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runServer(ctx, logger, ":"+cfg.Port, api.Handler(), a.store, retention); err != nil {
		exitErr("serve", err)
	}
}
