// Package keystore manages the signing keys of ledger principals: BIP39
// mnemonics, BIP32 derivation and password-encrypted key files.
//
// Key hierarchy: m/44'/236'/0'/0/{index}
package keystore

import (
	"fmt"

	bip32 "github.com/bsv-blockchain/go-sdk/compat/bip32"
	"github.com/bsv-blockchain/go-sdk/compat/bip39"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	chaincfg "github.com/bsv-blockchain/go-sdk/transaction/chaincfg"
)

const (
	// Mnemonic entropy sizes.
	Mnemonic12Words = 128
	Mnemonic24Words = 256

	// BIP44 path constants.
	PurposeBIP44 = 44
	CoinType     = 236
	Account      = 0
	Chain        = 0

	// MaxIndex is the largest non-hardened child index.
	MaxIndex = 1<<31 - 1

	// Hardened is the BIP32 hardened offset.
	Hardened = 0x80000000
)

// GenerateMnemonic creates a new BIP39 mnemonic with the given entropy bits.
func GenerateMnemonic(entropyBits int) (string, error) {
	if entropyBits != Mnemonic12Words && entropyBits != Mnemonic24Words {
		return "", ErrInvalidEntropy
	}
	entropy, err := bip39.NewEntropy(entropyBits)
	if err != nil {
		return "", fmt.Errorf("keystore: failed to generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("keystore: failed to generate mnemonic: %w", err)
	}
	return mnemonic, nil
}

// DerivedKey is a principal key derived from a mnemonic.
type DerivedKey struct {
	PrivateKey *ec.PrivateKey
	Path       string
}

// DeriveKey derives the index-th principal key from mnemonic + passphrase.
// The network only affects the serialized extended keys, not the result.
func DeriveKey(mnemonic, passphrase string, index uint32, mainnet bool) (*DerivedKey, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, ErrInvalidMnemonic
	}
	if index > MaxIndex {
		return nil, ErrIndexOutOfRange
	}
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return nil, fmt.Errorf("keystore: failed to derive seed: %w", err)
	}

	net := &chaincfg.TestNet
	if mainnet {
		net = &chaincfg.MainNet
	}
	key, err := bip32.NewMaster(seed, net)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDerivationFailed, err)
	}
	for _, child := range []uint32{PurposeBIP44 + Hardened, CoinType + Hardened, Account + Hardened, Chain, index} {
		if key, err = key.Child(child); err != nil {
			return nil, fmt.Errorf("%w: child %d: %w", ErrDerivationFailed, child, err)
		}
	}
	priv, err := key.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to extract EC private key: %w", ErrDerivationFailed, err)
	}
	return &DerivedKey{
		PrivateKey: priv,
		Path:       fmt.Sprintf("m/%d'/%d'/%d'/%d/%d", PurposeBIP44, CoinType, Account, Chain, index),
	}, nil
}
