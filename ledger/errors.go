package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized indicates the caller lacks the role an operation requires.
	ErrUnauthorized = errors.New("ledger: unauthorized")

	// ErrInvalidArgument indicates a zero address, zero supply, unknown index or similar.
	ErrInvalidArgument = errors.New("ledger: invalid argument")

	// ErrAlreadyClaimed indicates a distribution share was already claimed.
	ErrAlreadyClaimed = errors.New("ledger: already claimed")

	// ErrMissingCapability indicates a role was never granted to a dependent component.
	ErrMissingCapability = errors.New("ledger: missing capability")

	// ErrUninitializedDependency indicates a registry entry still holds the zero sentinel.
	ErrUninitializedDependency = errors.New("ledger: uninitialized dependency")

	// ErrNotFound indicates no contract is deployed at an address.
	ErrNotFound = errors.New("ledger: contract not found")

	// ErrInterfaceMismatch indicates a resolved contract does not implement the expected interface.
	ErrInterfaceMismatch = errors.New("ledger: contract does not implement expected interface")

	// ErrInsufficientFunds indicates a native-unit balance is too small for a transfer.
	ErrInsufficientFunds = errors.New("ledger: insufficient funds")

	// ErrOverflow indicates a native-unit sum that does not fit in 64 bits.
	ErrOverflow = fmt.Errorf("ledger: native-unit overflow: %w", ErrInvalidArgument)
)
