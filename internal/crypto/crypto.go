// Package crypto provides the at-rest protection for secret payloads: a
// PBKDF2 key-derivation function over the process master secret and
// AES-256-GCM authenticated encryption.  The package is CPU-bound and does
// no I/O; it knows nothing about credential semantics.
package crypto

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"

	wrapping "github.com/hashicorp/go-kms-wrapping/v2"
	aead "github.com/hashicorp/go-kms-wrapping/wrappers/aead/v2"
	"github.com/operand/credvault/internal/errors"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeyLength is the length in bytes of derived symmetric keys (AES-256).
	KeyLength = 32

	// SaltLength is the length in bytes of newly generated key-derivation
	// salts.
	SaltLength = 16

	// MinIterations is the smallest permitted PBKDF2 iteration count.
	MinIterations = 10000

	// MaxPlaintextSize is the largest payload Encrypt will accept.  Stored
	// secrets are operational credentials (keys, passwords, small JSON
	// blobs), so anything larger signals a caller bug.
	MaxPlaintextSize = 64 * 1024
)

// NewSalt generates a fresh key-derivation salt.
func NewSalt(ctx context.Context) ([]byte, error) {
	const op = "crypto.NewSalt"
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, errors.Wrap(ctx, err, op, errors.WithCode(errors.KeyDerivation), errors.WithMsg("unable to generate salt"))
	}
	return salt, nil
}

// DeriveKey derives a 256-bit symmetric key from the master secret using
// PBKDF2-HMAC-SHA256 with the given salt and iteration count.
func DeriveKey(ctx context.Context, masterSecret, salt []byte, iterations int) ([]byte, error) {
	const op = "crypto.DeriveKey"
	switch {
	case len(masterSecret) == 0:
		return nil, errors.New(ctx, errors.KeyDerivation, op, "missing master secret")
	case len(salt) == 0:
		return nil, errors.New(ctx, errors.KeyDerivation, op, "missing salt")
	case iterations < MinIterations:
		return nil, errors.New(ctx, errors.KeyDerivation, op, "iteration count below minimum")
	}
	return pbkdf2.Key(masterSecret, salt, iterations, KeyLength, sha256.New), nil
}

// NewCipher returns an AES-256-GCM wrapper configured with the given key.
// The wrapper's key id is a fingerprint of the key, never the key itself.
func NewCipher(ctx context.Context, key []byte) (*aead.Wrapper, error) {
	const op = "crypto.NewCipher"
	if len(key) != KeyLength {
		return nil, errors.New(ctx, errors.KeyDerivation, op, "key must be 256 bits")
	}
	fingerprint := blake2b.Sum256(key)
	cipher := aead.NewWrapper()
	if _, err := cipher.SetConfig(ctx, wrapping.WithKeyId(base64.StdEncoding.EncodeToString(fingerprint[0:8]))); err != nil {
		return nil, errors.Wrap(ctx, err, op, errors.WithCode(errors.KeyDerivation))
	}
	if err := cipher.SetAesGcmKeyBytes(key); err != nil {
		return nil, errors.Wrap(ctx, err, op, errors.WithCode(errors.KeyDerivation))
	}
	return cipher, nil
}

// Encrypt seals the plaintext with the given cipher.  The returned BlobInfo
// carries the key id and the ciphertext, with the wrapper's unique
// per-call nonce prepended to the ciphertext bytes, so a BlobInfo is never
// valid for more than the single payload it was produced for.
func Encrypt(ctx context.Context, plaintext []byte, cipher wrapping.Wrapper) (*wrapping.BlobInfo, error) {
	const op = "crypto.Encrypt"
	switch {
	case len(plaintext) == 0:
		return nil, errors.New(ctx, errors.Encrypt, op, "missing plaintext")
	case len(plaintext) > MaxPlaintextSize:
		return nil, errors.New(ctx, errors.Encrypt, op, "plaintext exceeds maximum size")
	case cipher == nil:
		return nil, errors.New(ctx, errors.Encrypt, op, "missing cipher")
	}
	blob, err := cipher.Encrypt(ctx, plaintext)
	if err != nil {
		return nil, errors.Wrap(ctx, err, op, errors.WithCode(errors.Encrypt))
	}
	return blob, nil
}

// Decrypt opens the sealed blob.  Any authentication failure surfaces as an
// IntegrityCheck error; a plaintext is never returned for a blob that fails
// to verify.
func Decrypt(ctx context.Context, blob *wrapping.BlobInfo, cipher wrapping.Wrapper) ([]byte, error) {
	const op = "crypto.Decrypt"
	switch {
	case blob == nil:
		return nil, errors.New(ctx, errors.Decrypt, op, "missing blob")
	case cipher == nil:
		return nil, errors.New(ctx, errors.Decrypt, op, "missing cipher")
	}
	plaintext, err := cipher.Decrypt(ctx, blob)
	if err != nil {
		return nil, errors.Wrap(ctx, err, op, errors.WithCode(errors.IntegrityCheck), errors.WithMsg("ciphertext failed to authenticate"))
	}
	return plaintext, nil
}
