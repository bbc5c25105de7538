package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	// Argon2id parameters for key-file encryption.
	Argon2Time        = 3
	Argon2Memory      = 64 * 1024 // 64 MB
	Argon2Parallelism = 4
	Argon2KeyLen      = 32

	// Encryption format sizes.
	SaltLen     = 16
	NonceLen    = 12
	ChecksumLen = 4
)

// Encrypt seals secret with Argon2id + AES-256-GCM.
//
// Output format: salt(16B) || nonce(12B) || AES-GCM(argon2id(password,salt), nonce, secret||checksum)
//
// The checksum is SHA256(secret)[:4].
func Encrypt(secret []byte, password string) ([]byte, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}

	salt := make([]byte, SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("keystore: failed to generate salt: %w", err)
	}
	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256(secret)
	plaintext := make([]byte, 0, len(secret)+ChecksumLen)
	plaintext = append(plaintext, secret...)
	plaintext = append(plaintext, sum[:ChecksumLen]...)

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("keystore: failed to generate nonce: %w", err)
	}

	out := make([]byte, 0, SaltLen+NonceLen+len(plaintext)+gcm.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, nil), nil
}

// Decrypt opens data produced by Encrypt.
func Decrypt(data []byte, password string) ([]byte, error) {
	if len(data) < SaltLen+NonceLen+ChecksumLen {
		return nil, ErrDecryptionFailed
	}
	salt := data[:SaltLen]
	nonce := data[SaltLen : SaltLen+NonceLen]

	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	plaintext, err := gcm.Open(nil, nonce, data[SaltLen+NonceLen:], nil)
	if err != nil || len(plaintext) < ChecksumLen {
		return nil, ErrDecryptionFailed
	}

	secret := plaintext[:len(plaintext)-ChecksumLen]
	sum := sha256.Sum256(secret)
	if subtle.ConstantTimeCompare(sum[:ChecksumLen], plaintext[len(secret):]) != 1 {
		return nil, ErrChecksumMismatch
	}
	return secret, nil
}

func newGCM(password string, salt []byte) (cipher.AEAD, error) {
	key := argon2.IDKey([]byte(password), salt, Argon2Time, Argon2Memory, Argon2Parallelism, Argon2KeyLen)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("keystore: AES cipher creation failed: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("keystore: GCM creation failed: %w", err)
	}
	return gcm, nil
}
