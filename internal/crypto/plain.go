package crypto

import "context"

// Plain is the Cipher used when no KMS key is configured.
type Plain struct{}

func (Plain) Encrypt(_ context.Context, plaintext string) (string, error) { return plaintext, nil }

func (Plain) Decrypt(_ context.Context, ciphertext string) (string, error) { return ciphertext, nil }
