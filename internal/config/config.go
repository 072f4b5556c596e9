package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/GregMSThompson/moneylog/internal/assetcache"
	"github.com/GregMSThompson/moneylog/internal/dto"
)

const (
	SnapshotSQLite    = "sqlite"
	SnapshotFirestore = "firestore"

	KeyBackendLocal         = "local"
	KeyBackendSecretManager = "secretmanager"

	AuthNone     = "none"
	AuthFirebase = "firebase"
)

type Config struct {
	Port              string
	LogLevel          string
	GASURL            string
	Dialect           dto.Dialect
	AccessKey         string
	KeyLogoutOnAbsent bool
	Timezone          string
	HTTPTimeout       time.Duration

	SnapshotBackend string
	SQLitePath      string
	ProjectID       string
	FirestoreDB     string
	DeviceID        string
	KeyBackend      string
	AccessKeySecret string
	KMSKeyName      string
	AuthMode        string

	AssetOrigin   string
	AssetVersion  string
	AssetManifest []string
	AssetStrategy assetcache.Strategy

	ImageMaxSide int
	ImageQuality int
	ImageMaxPix  int

	RateLimit   float64
	RateBurst   int
	CORSOrigins []string
}

// New reads the environment. A .env file in the working directory, when
// present, fills in variables that are not already set.
func New() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:              getOr("PORT", "8080"),
		LogLevel:          os.Getenv("LOGLEVEL"),
		GASURL:            os.Getenv("GASURL"),
		Dialect:           dto.ParseDialect(os.Getenv("APIDIALECT")),
		AccessKey:         os.Getenv("ACCESSKEY"),
		KeyLogoutOnAbsent: getBool("KEYLOGOUTONABSENT", false),
		Timezone:          getOr("TIMEZONE", "Asia/Taipei"),
		HTTPTimeout:       getDuration("HTTPTIMEOUT", 30*time.Second),
		SnapshotBackend:   getOr("SNAPSHOTBACKEND", SnapshotSQLite),
		SQLitePath:        getOr("SQLITEPATH", "moneylog.db"),
		ProjectID:         os.Getenv("PROJECTID"),
		FirestoreDB:       os.Getenv("FIRESTOREDATABASE"),
		DeviceID:          getOr("DEVICEID", "default"),
		KeyBackend:        getOr("KEYBACKEND", KeyBackendLocal),
		AccessKeySecret:   getOr("ACCESSKEYSECRET", "moneylog-access-key"),
		KMSKeyName:        os.Getenv("KMSKEYNAME"),
		AuthMode:          getOr("AUTHMODE", AuthNone),
		AssetOrigin:       os.Getenv("ASSETORIGIN"),
		AssetVersion:      getOr("ASSETVERSION", "v1"),
		AssetManifest:     assetcache.SplitManifest(os.Getenv("ASSETMANIFEST")),
		AssetStrategy:     assetcache.ParseStrategy(os.Getenv("ASSETSTRATEGY")),
		ImageMaxSide:      getInt("IMAGEMAXSIDE", 1024),
		ImageQuality:      getInt("IMAGEQUALITY", 70),
		ImageMaxPix:       getInt("IMAGEMAXPIXELS", 40_000_000),
		RateLimit:         getFloat("RATELIMIT", 10),
		RateBurst:         getInt("RATEBURST", 30),
		CORSOrigins:       splitList(os.Getenv("CORSORIGINS")),
	}
}

func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func getOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
