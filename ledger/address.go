package ledger

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	bsvhash "github.com/bsv-blockchain/go-sdk/primitives/hash"
	"github.com/bsv-blockchain/go-sdk/script"
)

// AddressSize is the length of an address: a HASH160 public-key hash.
const AddressSize = 20

// Address identifies a principal or a deployed contract.
// The zero value is the "uninitialized" sentinel.
type Address [AddressSize]byte

// ZeroAddress is the uninitialized sentinel.
var ZeroAddress Address

// AddressFromPublicKey returns HASH160(compressed pubkey), the same hash used in
// P2PKH locking scripts.
func AddressFromPublicKey(pub *ec.PublicKey) Address {
	var a Address
	copy(a[:], bsvhash.Hash160(pub.Compressed()))
	return a
}

// DeriveAddress computes the address of the nonce-th contract deployed by deployer.
func DeriveAddress(deployer Address, nonce uint64) Address {
	buf := make([]byte, AddressSize+8)
	copy(buf, deployer[:])
	binary.BigEndian.PutUint64(buf[AddressSize:], nonce)

	var a Address
	copy(a[:], bsvhash.Hash160(buf))
	return a
}

// ParseAddress accepts a 0x-prefixed (or bare) 40-char hex string, or a base58
// P2PKH address on any network.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	raw := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(raw) == 2*AddressSize {
		if b, err := hex.DecodeString(raw); err == nil {
			var a Address
			copy(a[:], b)
			return a, nil
		}
	}

	addr, err := script.NewAddressFromString(s)
	if err != nil {
		return ZeroAddress, fmt.Errorf("%w: address %q: %w", ErrInvalidArgument, s, err)
	}
	pkh := []byte(addr.PublicKeyHash)
	if len(pkh) != AddressSize {
		return ZeroAddress, fmt.Errorf("%w: address %q has %d-byte hash", ErrInvalidArgument, s, len(pkh))
	}
	var a Address
	copy(a[:], pkh)
	return a, nil
}

// MustParseAddress is ParseAddress for constants and tests.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// IsZero reports whether a is the uninitialized sentinel.
func (a Address) IsZero() bool { return a == ZeroAddress }

// String returns the 0x-hex form.
func (a Address) String() string { return "0x" + hex.EncodeToString(a[:]) }

// Encode returns the base58 P2PKH form for the given network.
func (a Address) Encode(mainnet bool) (string, error) {
	addr, err := script.NewAddressFromPublicKeyHash(a[:], mainnet)
	if err != nil {
		return "", fmt.Errorf("ledger: encode address: %w", err)
	}
	return addr.AddressString, nil
}

// Compare orders addresses bytewise.
func (a Address) Compare(b Address) int { return bytes.Compare(a[:], b[:]) }

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// HashSize is the length of a content hash.
const HashSize = 32

// Hash is a content-addressed fingerprint, e.g. of a property's metadata document.
type Hash [HashSize]byte

// ParseHash decodes a 64-char hex string (0x prefix optional).
func ParseHash(s string) (Hash, error) {
	var h Hash
	raw := strings.TrimPrefix(strings.TrimSpace(s), "0x")
	b, err := hex.DecodeString(raw)
	if err != nil || len(b) != HashSize {
		return h, fmt.Errorf("%w: hash %q", ErrInvalidArgument, s)
	}
	copy(h[:], b)
	return h, nil
}

// IsZero reports whether h is all zero bytes.
func (h Hash) IsZero() bool { return h == Hash{} }

func (h Hash) String() string { return hex.EncodeToString(h[:]) }

// MarshalText implements encoding.TextMarshaler.
func (h Hash) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := ParseHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
