package factory

import (
	"fmt"

	"github.com/bitfsorg/propshare-go/ledger"
)

var (
	// ErrZeroOwner indicates a property created without an owner.
	ErrZeroOwner = fmt.Errorf("factory: owner is zero address: %w", ledger.ErrInvalidArgument)

	// ErrZeroSupply indicates a property created with no shares.
	ErrZeroSupply = fmt.Errorf("factory: token supply must be positive: %w", ledger.ErrInvalidArgument)

	// ErrEmptyTokenName indicates a missing token name or symbol.
	ErrEmptyTokenName = fmt.Errorf("factory: token name and symbol are required: %w", ledger.ErrInvalidArgument)

	// ErrPropertyNotFound indicates an unknown property id or token.
	ErrPropertyNotFound = fmt.Errorf("factory: property not found: %w", ledger.ErrInvalidArgument)
)
