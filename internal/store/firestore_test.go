package store

import (
	"context"
	"os"
	"testing"

	"cloud.google.com/go/firestore"

	"github.com/GregMSThompson/moneylog/internal/models"
)

func TestFirestoreSnapshotWithEmulator(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}

	ctx := context.Background()
	client, err := firestore.NewClient(ctx, "test-project")
	if err != nil {
		t.Fatalf("firestore client error: %v", err)
	}
	defer client.Close()

	kv := NewFirestoreKV(client, "emulator-device")
	if _, ok, err := kv.Get(ctx, "never-written"); ok || err != nil {
		t.Fatalf("missing doc: ok=%v err=%v", ok, err)
	}

	snap := NewSnapshotStore(kv)
	logs := []models.LedgerEntry{{ID: "7", Date: "2025-01-10", Item: "Lunch", Amount: 120}}
	if err := snap.SaveLogs(ctx, logs); err != nil {
		t.Fatalf("save error: %v", err)
	}
	got, ok, err := snap.LoadLogs(ctx)
	if err != nil || !ok {
		t.Fatalf("load error: ok=%v err=%v", ok, err)
	}
	if len(got) != 1 || got[0].ID != "7" || got[0].Amount != 120 {
		t.Fatalf("unexpected logs: %#v", got)
	}

	if err := kv.Delete(ctx, KeyLogs); err != nil {
		t.Fatalf("delete error: %v", err)
	}
	if _, ok, _ := kv.Get(ctx, KeyLogs); ok {
		t.Fatal("doc survived delete")
	}
}
