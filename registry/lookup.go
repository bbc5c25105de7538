package registry

import (
	"fmt"

	"github.com/bitfsorg/propshare-go/ledger"
)

// Locator is the read side of a registry as seen by dependent components.
type Locator interface {
	Get(entry Entry) ledger.Address
	Resolve(entry Entry) (ledger.Address, error)
}

var _ Locator = (*Registry)(nil)

// Lookup resolves the registry at registryAddr, then the entry inside it, then
// the contract deployed there as T. Nothing is cached: every call walks the
// registry again so a re-pointed slot takes effect on the next call.
func Lookup[T any](r ledger.Resolver, registryAddr ledger.Address, entry Entry) (T, ledger.Address, error) {
	var zero T
	reg, err := ledger.Resolve[Locator](r, registryAddr)
	if err != nil {
		return zero, ledger.ZeroAddress, fmt.Errorf("registry: resolve registry: %w", err)
	}
	addr, err := reg.Resolve(entry)
	if err != nil {
		return zero, addr, err
	}
	t, err := ledger.Resolve[T](r, addr)
	if err != nil {
		return zero, addr, fmt.Errorf("registry: resolve %s: %w", entry, err)
	}
	return t, addr, nil
}
