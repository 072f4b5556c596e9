package bootstrap

import (
	"context"
	"net/http"
	"net/url"

	"github.com/GregMSThompson/moneylog/internal/assetcache"
	"github.com/GregMSThompson/moneylog/internal/config"
	"github.com/GregMSThompson/moneylog/internal/errs"
	"github.com/GregMSThompson/moneylog/pkg/logger"
)

// scriptHosts serve the remote data API after its redirect.
var scriptHosts = []string{"script.google.com", "script.googleusercontent.com"}

// initAssets registers the shell cache and installs the configured
// generation. An install failure is logged, not fatal: the companion still
// works against the network and retries on the next start.
func (bs *Bootstrap) initAssets(ctx context.Context, cfg *config.Config) error {
	origin, err := url.Parse(cfg.AssetOrigin)
	if err != nil || origin.Host == "" {
		return errs.NewValidationError("invalid asset origin: " + cfg.AssetOrigin)
	}

	bs.AssetConfig = assetcache.Config{
		Prefix:      assetcache.DefaultPrefix,
		Version:     cfg.AssetVersion,
		Origin:      origin,
		Manifest:    cfg.AssetManifest,
		Strategy:    cfg.AssetStrategy,
		BypassHosts: append([]string{bs.Remote.Host()}, scriptHosts...),
	}
	bs.Assets = assetcache.NewRegistration(assetcache.NewStorage(), http.DefaultTransport)

	log := logger.FromContext(ctx)
	bs.Assets.OnUpdateFound(func(w *assetcache.Worker) {
		log.Info("new shell version waiting", "cache", w.CacheName())
	})
	if _, err := bs.Assets.Update(ctx, bs.AssetConfig); err != nil {
		log.Warn("shell cache not installed", "cache", bs.AssetConfig.CacheName(), "error", err)
	}
	return nil
}
