package keystore

import "errors"

var (
	// ErrInvalidMnemonic indicates the mnemonic fails BIP39 validation.
	ErrInvalidMnemonic = errors.New("keystore: invalid BIP39 mnemonic")

	// ErrInvalidEntropy indicates entropy bits is not 128 or 256.
	ErrInvalidEntropy = errors.New("keystore: entropy bits must be 128 or 256")

	// ErrIndexOutOfRange indicates a key index exceeds the BIP32 non-hardened max.
	ErrIndexOutOfRange = errors.New("keystore: key index exceeds maximum (2^31-1)")

	// ErrDecryptionFailed indicates wrong password or corrupted key data.
	ErrDecryptionFailed = errors.New("keystore: key decryption failed (wrong password or corrupted data)")

	// ErrChecksumMismatch indicates the key checksum did not verify after decryption.
	ErrChecksumMismatch = errors.New("keystore: key checksum mismatch")

	// ErrEmptySecret indicates there is nothing to encrypt.
	ErrEmptySecret = errors.New("keystore: empty secret")

	// ErrDerivationFailed indicates BIP32 key derivation failed.
	ErrDerivationFailed = errors.New("keystore: key derivation failed")

	// ErrKeyExists indicates the key name is already taken.
	ErrKeyExists = errors.New("keystore: key already exists")

	// ErrKeyNotFound indicates no key file exists under the name.
	ErrKeyNotFound = errors.New("keystore: key not found")

	// ErrInvalidName indicates a key name that cannot be used as a file name.
	ErrInvalidName = errors.New("keystore: invalid key name")
)
