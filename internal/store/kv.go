package store

import "context"

// Keys of the local snapshot. Values are JSON except the access key.
const (
	KeyCategories = "cache_categories"
	KeyPayments   = "cache_payments"
	KeyLogs       = "cache_logs"
	KeyAccessKey  = "user_access_key"
)

// KV is the persisted key/value storage both backends provide. Get reports
// ok=false for a missing key.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// AccessKeys is implemented by both access-key backends: the sealed local
// value and Secret Manager.
type AccessKeys interface {
	GetAccessKey(ctx context.Context) (string, error)
	SetAccessKey(ctx context.Context, key string) error
	ClearAccessKey(ctx context.Context) error
}
