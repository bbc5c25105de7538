package asset

import (
	"fmt"
	"io"

	"golang.org/x/crypto/blake2b"

	"github.com/bitfsorg/propshare-go/ledger"
)

// Fingerprint computes the BLAKE2b-256 content hash of a metadata document.
func Fingerprint(r io.Reader) (ledger.Hash, error) {
	var out ledger.Hash
	h, err := blake2b.New256(nil)
	if err != nil {
		return out, fmt.Errorf("asset: fingerprint: %w", err)
	}
	if _, err := io.Copy(h, r); err != nil {
		return out, fmt.Errorf("asset: fingerprint: %w", err)
	}
	copy(out[:], h.Sum(nil))
	return out, nil
}
