package store

import (
	"context"
	"encoding/json"

	"github.com/GregMSThompson/moneylog/internal/errs"
	"github.com/GregMSThompson/moneylog/internal/models"
)

type snapshotStore struct {
	kv KV
}

func NewSnapshotStore(kv KV) *snapshotStore {
	return &snapshotStore{kv: kv}
}

func (s *snapshotStore) LoadCategories(ctx context.Context) ([]models.Category, bool, error) {
	return load[[]models.Category](ctx, s.kv, KeyCategories)
}

func (s *snapshotStore) LoadPayments(ctx context.Context) ([]string, bool, error) {
	return load[[]string](ctx, s.kv, KeyPayments)
}

func (s *snapshotStore) LoadLogs(ctx context.Context) ([]models.LedgerEntry, bool, error) {
	return load[[]models.LedgerEntry](ctx, s.kv, KeyLogs)
}

func (s *snapshotStore) SaveCategories(ctx context.Context, categories []models.Category) error {
	return save(ctx, s.kv, KeyCategories, categories)
}

func (s *snapshotStore) SavePayments(ctx context.Context, payments []string) error {
	return save(ctx, s.kv, KeyPayments, payments)
}

func (s *snapshotStore) SaveLogs(ctx context.Context, entries []models.LedgerEntry) error {
	return save(ctx, s.kv, KeyLogs, entries)
}

func load[T any](ctx context.Context, kv KV, key string) (T, bool, error) {
	var out T
	raw, ok, err := kv.Get(ctx, key)
	if err != nil || !ok {
		return out, false, err
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return out, false, errs.NewDatabaseError("decode "+key, err)
	}
	return out, true, nil
}

func save(ctx context.Context, kv KV, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return errs.NewDatabaseError("encode "+key, err)
	}
	return kv.Set(ctx, key, string(b))
}
