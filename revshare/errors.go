package revshare

import (
	"errors"
	"fmt"

	"github.com/bitfsorg/propshare-go/ledger"
)

var (
	// ErrShareConservationViolation indicates shares were created or destroyed.
	ErrShareConservationViolation = errors.New("revshare: share conservation violated")

	// ErrInsufficientPayment indicates the pool is empty.
	ErrInsufficientPayment = fmt.Errorf("revshare: insufficient payment for distribution: %w", ledger.ErrInvalidArgument)

	// ErrNoEntries indicates the snapshot has no shareholders.
	ErrNoEntries = fmt.Errorf("revshare: no shareholder entries: %w", ledger.ErrInvalidArgument)

	// ErrZeroTotalShares indicates total shares is zero.
	ErrZeroTotalShares = fmt.Errorf("revshare: zero total shares: %w", ledger.ErrInvalidArgument)

	// ErrSharesExceedTotal indicates entries hold more shares than the declared total.
	ErrSharesExceedTotal = fmt.Errorf("revshare: entry shares exceed total shares: %w", ledger.ErrInvalidArgument)

	// ErrDistributionMismatch indicates a payout list that does not match the entries.
	ErrDistributionMismatch = errors.New("revshare: distribution does not match entries")

	// ErrZeroDeposit indicates a deposit of nothing.
	ErrZeroDeposit = fmt.Errorf("revshare: zero deposit: %w", ledger.ErrInvalidArgument)

	// ErrRoundNotFound indicates an unknown distribution round.
	ErrRoundNotFound = fmt.Errorf("revshare: round not found: %w", ledger.ErrInvalidArgument)
)
