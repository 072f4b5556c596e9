package bootstrap

import (
	"path/filepath"
	"testing"

	"github.com/GregMSThompson/moneylog/internal/config"
	"github.com/GregMSThompson/moneylog/internal/store"
	"github.com/GregMSThompson/moneylog/pkg/helpers"
)

func TestAccessKeys_LocalBackendSharedAcrossCommands(t *testing.T) {
	ctx := helpers.TestCtx()
	kv, err := store.OpenSQLite(ctx, filepath.Join(t.TempDir(), "moneylog.db"), "phone")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { kv.Close() })

	cfg := &config.Config{KeyBackend: config.KeyBackendLocal, DeviceID: "phone"}
	api := &Bootstrap{KV: kv}
	sync := &Bootstrap{KV: kv}

	if err := api.AccessKeys(cfg).SetAccessKey(ctx, "owner-key"); err != nil {
		t.Fatalf("SetAccessKey: %v", err)
	}
	got, err := sync.AccessKeys(cfg).GetAccessKey(ctx)
	if err != nil {
		t.Fatalf("GetAccessKey: %v", err)
	}
	if got != "owner-key" {
		t.Errorf("key = %q, want owner-key", got)
	}
}
