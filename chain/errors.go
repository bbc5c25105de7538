package chain

import (
	"errors"
	"fmt"

	"github.com/bitfsorg/propshare-go/ledger"
)

var (
	// ErrNilStore indicates a world opened without a backing store.
	ErrNilStore = errors.New("chain: store is nil")

	// ErrCorruptState indicates the persisted world state cannot be decoded.
	ErrCorruptState = errors.New("chain: corrupt world state")

	// ErrHalted indicates a failed rollback left in-memory state unusable.
	// The world must be reopened from its store.
	ErrHalted = errors.New("chain: world halted after failed rollback")

	// ErrZeroFunding indicates a genesis grant of nothing.
	ErrZeroFunding = fmt.Errorf("chain: zero funding amount: %w", ledger.ErrInvalidArgument)
)
