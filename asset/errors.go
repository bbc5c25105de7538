package asset

import (
	"fmt"

	"github.com/bitfsorg/propshare-go/ledger"
)

var (
	// ErrRejected indicates an operation on a property that has been rejected.
	ErrRejected = fmt.Errorf("asset: property is rejected: %w", ledger.ErrInvalidArgument)

	// ErrInsufficientBalance indicates a transfer larger than the sender's share balance.
	ErrInsufficientBalance = fmt.Errorf("asset: insufficient share balance: %w", ledger.ErrInvalidArgument)

	// ErrNotApproved indicates a restricted transfer touching an address the allow-list denies.
	ErrNotApproved = fmt.Errorf("asset: address not approved: %w", ledger.ErrUnauthorized)

	// ErrSnapshotNotFound indicates an unknown snapshot id.
	ErrSnapshotNotFound = fmt.Errorf("asset: snapshot not found: %w", ledger.ErrInvalidArgument)

	// ErrZeroSupply indicates a token created without supply.
	ErrZeroSupply = fmt.Errorf("asset: zero token supply: %w", ledger.ErrInvalidArgument)
)
