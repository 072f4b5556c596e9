package bootstrap

import (
	"context"
	"log/slog"
	"net/http"

	"cloud.google.com/go/firestore"
	gcpkms "cloud.google.com/go/kms/apiv1"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"firebase.google.com/go/v4/auth"

	"github.com/GregMSThompson/moneylog/internal/assetcache"
	gasclient "github.com/GregMSThompson/moneylog/internal/client/gas"
	"github.com/GregMSThompson/moneylog/internal/config"
	"github.com/GregMSThompson/moneylog/internal/crypto"
	"github.com/GregMSThompson/moneylog/internal/store"
	"github.com/GregMSThompson/moneylog/pkg/logger"
)

// Bootstrap holds the process-wide clients. Optional clients stay nil when
// the configuration does not ask for them.
type Bootstrap struct {
	Log           *slog.Logger
	Remote        *gasclient.Adapter
	KV            store.KV
	Firestore     *firestore.Client
	Firebase      *auth.Client
	KMS           *gcpkms.KeyManagementClient
	SecretManager *secretmanager.Client
	Assets        *assetcache.Registration
	AssetConfig   assetcache.Config

	closers []func() error
}

func Run(ctx context.Context, cfg *config.Config) (*Bootstrap, error) {
	var err error
	bs := new(Bootstrap)

	bs.Log = logger.New(cfg.LogLevel, logger.NewCloudRunHandler)
	ctx = logger.ToContext(ctx, bs.Log)

	bs.Remote, err = gasclient.NewAdapter(&http.Client{Timeout: cfg.HTTPTimeout}, cfg.GASURL)
	if err != nil {
		return bs, err
	}

	if err = bs.initSnapshotKV(ctx, cfg); err != nil {
		return bs, err
	}

	if cfg.KMSKeyName != "" {
		bs.KMS, err = InitKMS(ctx)
		if err != nil {
			return bs, err
		}
		bs.closers = append(bs.closers, bs.KMS.Close)
	}

	if cfg.KeyBackend == config.KeyBackendSecretManager {
		bs.SecretManager, err = InitSecretManager(ctx)
		if err != nil {
			return bs, err
		}
		bs.closers = append(bs.closers, bs.SecretManager.Close)
	}

	if cfg.AuthMode == config.AuthFirebase {
		bs.Firebase, err = InitFirebase(ctx, cfg.ProjectID)
		if err != nil {
			return bs, err
		}
	}

	if cfg.AssetOrigin != "" {
		if err = bs.initAssets(ctx, cfg); err != nil {
			return bs, err
		}
	}

	return bs, nil
}

func (bs *Bootstrap) initSnapshotKV(ctx context.Context, cfg *config.Config) error {
	switch cfg.SnapshotBackend {
	case config.SnapshotFirestore:
		client, err := InitFirestore(ctx, cfg.ProjectID, cfg.FirestoreDB)
		if err != nil {
			return err
		}
		bs.Firestore = client
		bs.closers = append(bs.closers, client.Close)
		bs.KV = store.NewFirestoreKV(client, cfg.DeviceID)
	default:
		kv, err := store.OpenSQLite(ctx, cfg.SQLitePath, cfg.DeviceID)
		if err != nil {
			return err
		}
		bs.closers = append(bs.closers, kv.Close)
		bs.KV = kv
	}
	logger.FromContext(ctx).Info("snapshot store ready", "backend", cfg.SnapshotBackend, "device", cfg.DeviceID)
	return nil
}

// AccessKeys returns the access key store cfg selects: Secret Manager when
// that client exists, otherwise the snapshot KV sealed with KMS when a key
// name is configured.
func (bs *Bootstrap) AccessKeys(cfg *config.Config) store.AccessKeys {
	if bs.SecretManager != nil {
		return store.NewSecretKeyStore(bs.SecretManager, cfg.ProjectID, cfg.AccessKeySecret, cfg.DeviceID)
	}
	var cipher crypto.Cipher = crypto.Plain{}
	if bs.KMS != nil {
		cipher = crypto.NewKMS(bs.KMS, cfg.KMSKeyName)
	}
	return store.NewAccessKeyStore(bs.KV, cipher)
}

// Close releases clients in reverse order of creation.
func (bs *Bootstrap) Close() {
	for i := len(bs.closers) - 1; i >= 0; i-- {
		if err := bs.closers[i](); err != nil && bs.Log != nil {
			bs.Log.Warn("close failed", "error", err)
		}
	}
	bs.closers = nil
}
