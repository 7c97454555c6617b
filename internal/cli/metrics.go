package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"calorina/internal/database"
	"calorina/internal/metrics"

	"github.com/spf13/cobra"
)

func init() {
	cleanup := &cobra.Command{
		Use:   "metrics-cleanup",
		Short: "Delete old telemetry records",
		Run:   runMetricsCleanup,
	}
	cleanup.Flags().Int("days", 30, "Keep records for the last N days")

	usage := &cobra.Command{
		Use:   "usage",
		Short: "Print daily completion usage",
		Run:   runUsage,
	}
	usage.Flags().Int("days", 7, "Number of days to report")

	health := &cobra.Command{
		Use:   "health",
		Short: "Print process and data health",
		Run:   runHealth,
	}

	RootCmd.AddCommand(cleanup, usage, health)
}

func runHealth(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		exitErr("open database", err)
	}
	defer db.Close()

	printJSON(struct {
		metrics.SysHealth
		SchemaVersion uint `json:"schemaVersion"`
	}{metrics.GetSysHealth(filepath.Dir(cfg.DatabasePath), 0), db.SchemaVersion})
}

func openStore() (*metrics.Store, *database.DB) {
	cfg := loadConfig()
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		exitErr("open database", err)
	}
	return metrics.NewStore(db.SQL), db
}

func runMetricsCleanup(cmd *cobra.Command, args []string) {
	days, _ := cmd.Flags().GetInt("days")
	store, db := openStore()
	defer db.Close()

	affected, err := store.Cleanup(cmd.Context(), days)
	if err != nil {
		exitErr("cleanup", err)
	}
	fmt.Printf("Successfully removed %d old metric records.\n", affected)
}

func runUsage(cmd *cobra.Command, args []string) {
	days, _ := cmd.Flags().GetInt("days")
	store, db := openStore()
	defer db.Close()

	usage, err := store.GetDailyUsage(cmd.Context(), days)
	if err != nil {
		exitErr("usage", err)
	}
	printJSON(usage)
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}
