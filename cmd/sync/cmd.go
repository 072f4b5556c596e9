// Command sync runs the startup sequence once (snapshot, init, getLogs) and
// logs the current month's view. It is useful for refreshing the local
// snapshot from cron and for checking a deployment's remote endpoint.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/GregMSThompson/moneylog/internal/bootstrap"
	"github.com/GregMSThompson/moneylog/internal/config"
	"github.com/GregMSThompson/moneylog/internal/models"
	"github.com/GregMSThompson/moneylog/internal/services"
	"github.com/GregMSThompson/moneylog/internal/store"
	"github.com/GregMSThompson/moneylog/internal/view"
	"github.com/GregMSThompson/moneylog/pkg/logger"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	ctx := context.Background()

	cfg := config.New()
	bs, err := bootstrap.Run(ctx, cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()
	ctx = logger.ToContext(ctx, bs.Log)

	ctrl := services.NewController(bs.Remote, store.NewSnapshotStore(bs.KV), bs.AccessKeys(cfg), services.ControllerOptions{
		Dialect:  cfg.Dialect,
		Location: cfg.Location(),
	})
	session := view.NewSession(ctrl, view.Options{Tabs: view.Tabs(cfg.Dialect.Wishes)})
	defer session.Close()

	// a failed sync still leaves the snapshot view to report
	syncErr := ctrl.Start(ctx)
	if err := session.SelectTab(view.TabChart); err != nil {
		exitOnError("view", err, bs.Log)
	}
	session.Flush()

	list := ctrl.Entries()
	st := session.State()
	bs.Log.Info("ledger",
		"from", list.Filter.Start,
		"to", list.Filter.End,
		"entries", len(list.Entries),
		"total", list.Total,
		"balance", ctrl.Balance(),
	)
	for _, b := range st.Chart.Buckets {
		bs.Log.Info("chart", "type", string(models.EntryExpense), "category", b.Label, "amount", b.Value)
	}
	if cfg.Dialect.Wishes {
		w := ctrl.Wishes()
		bs.Log.Info("wishes", "open", len(w.Wishes)-w.AchievementCount, "achieved", w.AchievementCount)
	}
	exitOnError("sync failed", syncErr, bs.Log)
}
