package config

import (
	"reflect"
	"testing"
	"time"

	"github.com/GregMSThompson/moneylog/internal/assetcache"
	"github.com/GregMSThompson/moneylog/internal/dto"
)

func TestNewDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "APIDIALECT", "HTTPTIMEOUT", "SNAPSHOTBACKEND", "KEYBACKEND", "ASSETSTRATEGY", "ASSETMANIFEST", "IMAGEMAXSIDE", "KEYLOGOUTONABSENT", "CORSORIGINS"} {
		t.Setenv(k, "")
	}
	cfg := New()

	if cfg.Port != "8080" {
		t.Fatalf("Port = %q", cfg.Port)
	}
	if cfg.Dialect != dto.DialectWish {
		t.Fatalf("Dialect = %v", cfg.Dialect.Name)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Fatalf("HTTPTimeout = %v", cfg.HTTPTimeout)
	}
	if cfg.SnapshotBackend != SnapshotSQLite || cfg.KeyBackend != KeyBackendLocal {
		t.Fatalf("backends = %q/%q", cfg.SnapshotBackend, cfg.KeyBackend)
	}
	if cfg.AssetStrategy != assetcache.CacheFirst {
		t.Fatalf("AssetStrategy = %q", cfg.AssetStrategy)
	}
	if len(cfg.AssetManifest) != len(assetcache.DefaultManifest) {
		t.Fatalf("AssetManifest = %v", cfg.AssetManifest)
	}
	if cfg.ImageMaxSide != 1024 || cfg.KeyLogoutOnAbsent || cfg.CORSOrigins != nil {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestNewOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("APIDIALECT", "Ledger")
	t.Setenv("HTTPTIMEOUT", "5s")
	t.Setenv("KEYLOGOUTONABSENT", "true")
	t.Setenv("ASSETSTRATEGY", "network-first")
	t.Setenv("CORSORIGINS", "http://a.test, http://b.test")
	t.Setenv("IMAGEMAXSIDE", "not-a-number")
	cfg := New()

	if cfg.Port != "9090" || cfg.Dialect != dto.DialectLedger || cfg.HTTPTimeout != 5*time.Second {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if !cfg.KeyLogoutOnAbsent || cfg.AssetStrategy != assetcache.NetworkFirst {
		t.Fatalf("flags not applied: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.CORSOrigins, []string{"http://a.test", "http://b.test"}) {
		t.Fatalf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if cfg.ImageMaxSide != 1024 {
		t.Fatalf("bad int should fall back, got %d", cfg.ImageMaxSide)
	}
}

func TestLocationFallsBack(t *testing.T) {
	cfg := &Config{Timezone: "Nowhere/Invalid"}
	if cfg.Location() != time.Local {
		t.Fatal("invalid zone should fall back to local")
	}
}
