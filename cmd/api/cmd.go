package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GregMSThompson/moneylog/internal/assetcache"
	"github.com/GregMSThompson/moneylog/internal/bootstrap"
	"github.com/GregMSThompson/moneylog/internal/config"
	"github.com/GregMSThompson/moneylog/internal/handlers"
	"github.com/GregMSThompson/moneylog/internal/imaging"
	"github.com/GregMSThompson/moneylog/internal/middleware"
	"github.com/GregMSThompson/moneylog/internal/response"
	"github.com/GregMSThompson/moneylog/internal/router"
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
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// bootstrap
	cfg := config.New()
	bs, err := bootstrap.Run(ctx, cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()
	ctx = logger.ToContext(ctx, bs.Log)

	// stores
	snap := store.NewSnapshotStore(bs.KV)
	keys := bs.AccessKeys(cfg)

	// services
	ctrl := services.NewController(bs.Remote, snap, keys, services.ControllerOptions{
		Dialect:           cfg.Dialect,
		Location:          cfg.Location(),
		Image:             imaging.Options{MaxSide: cfg.ImageMaxSide, Quality: cfg.ImageQuality, MaxPixels: cfg.ImageMaxPix},
		KeyLogoutOnAbsent: cfg.KeyLogoutOnAbsent,
	})
	if err := ctrl.Start(ctx); err != nil {
		bs.Log.Warn("starting from local snapshot", "error", err)
	}
	if cfg.AccessKey != "" {
		exitOnError("access key", ctrl.ApplyAccessKey(ctx, true, cfg.AccessKey), bs.Log)
	}
	session := view.NewSession(ctrl, view.Options{Tabs: view.Tabs(cfg.Dialect.Wishes)})
	defer session.Close()

	// response handler
	rh := response.New(bs.Log)

	// dependancies
	deps := new(handlers.Deps)
	deps.ResponseHandler = rh
	deps.StateSvc = ctrl
	deps.EntrySvc = ctrl
	deps.WishSvc = ctrl
	deps.SettingsSvc = ctrl
	deps.ImageSvc = ctrl
	deps.View = session

	opts := router.Options{
		Log:         bs.Log,
		CORSOrigins: cfg.CORSOrigins,
		RateLimit:   cfg.RateLimit,
		RateBurst:   cfg.RateBurst,
		AccessKey:   middleware.NewAccessKeyMiddleware(ctrl).AccessKey,
	}
	if bs.Firebase != nil {
		opts.Auth = middleware.NewMiddleware(bs.Firebase)
	}
	if bs.Assets != nil {
		opts.Shell = assetcache.NewShellHandler(bs.AssetConfig.Origin, bs.Assets)
	}

	// router
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.NewRouter(deps, opts),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	bs.Log.Info("listening", "addr", srv.Addr, "dialect", cfg.Dialect.Name, "edit_mode", ctrl.EditMode())
	err = srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	exitOnError("server failed", err, bs.Log)
}
