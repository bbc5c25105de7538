package registry

import (
	"fmt"

	"github.com/bitfsorg/propshare-go/ledger"
)

var (
	// ErrUnknownEntry indicates a slot name outside FACTORY, APPROVAL, REVENUE.
	ErrUnknownEntry = fmt.Errorf("registry: unknown entry: %w", ledger.ErrInvalidArgument)

	// ErrZeroEntry indicates an attempt to point a slot at the zero address.
	ErrZeroEntry = fmt.Errorf("registry: zero address: %w", ledger.ErrInvalidArgument)
)
