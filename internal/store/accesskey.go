package store

import (
	"context"

	"github.com/GregMSThompson/moneylog/internal/crypto"
)

// accessKeyStore keeps the access key next to the snapshot, sealed by the
// configured cipher.
type accessKeyStore struct {
	kv     KV
	cipher crypto.Cipher
}

func NewAccessKeyStore(kv KV, cipher crypto.Cipher) *accessKeyStore {
	if cipher == nil {
		cipher = crypto.Plain{}
	}
	return &accessKeyStore{kv: kv, cipher: cipher}
}

func (s *accessKeyStore) GetAccessKey(ctx context.Context) (string, error) {
	sealed, ok, err := s.kv.Get(ctx, KeyAccessKey)
	if err != nil || !ok || sealed == "" {
		return "", err
	}
	return s.cipher.Decrypt(ctx, sealed)
}

func (s *accessKeyStore) SetAccessKey(ctx context.Context, key string) error {
	if key == "" {
		return s.ClearAccessKey(ctx)
	}
	sealed, err := s.cipher.Encrypt(ctx, key)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, KeyAccessKey, sealed)
}

func (s *accessKeyStore) ClearAccessKey(ctx context.Context) error {
	return s.kv.Delete(ctx, KeyAccessKey)
}
