package commands

import (
	"errors"
	"log/slog"
	"time"

	"dineon-backend/lib/serviceutil"
	"dineon-backend/lib/telemetry"
	"dineon-backend/services/dining"
	"dineon-backend/services/dining/browser"

	"github.com/spf13/cobra"
)

var fetchForce *bool

func init() {
	fetchForce = fetchCmd.Flags().Bool("force", false, "Refetch even when the cached menu still covers today.")
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [--force]",
	Short: "Fetches this week's menus into the local cache.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		ctx := cmd.Context()
		telemetry.InstrumentPerfStats(ctx)

		session, err := browser.NewChromeSession(ctx)
		if err != nil {
			serviceutil.Fatal("failed to launch browser", err)
		}
		defer session.Close()

		svc := dining.NewService(ctx, cfg.Dining, session)

		t1 := time.Now()
		err = svc.FetchMenu(ctx, *fetchForce)
		if err != nil {
			serviceutil.Fatal("failed to fetch menu", err)
		}
		t2 := time.Now()

		week, ok := svc.Week()
		if !ok {
			serviceutil.Fatal("fetch finished without a dataset", errors.New("nothing in memory"))
		}
		slog.Info("menu ready",
			"dates", week.AvailableDates(),
			"seconds", t2.Sub(t1).Seconds(),
		)
	},
}
