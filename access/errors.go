package access

import (
	"fmt"

	"github.com/bitfsorg/propshare-go/ledger"
)

var (
	// ErrLastAdmin indicates an operation would leave a component without any ADMIN.
	ErrLastAdmin = fmt.Errorf("access: cannot remove the last ADMIN: %w", ledger.ErrInvalidArgument)

	// ErrUnknownRole indicates a role name outside the defined set.
	ErrUnknownRole = fmt.Errorf("access: unknown role: %w", ledger.ErrInvalidArgument)

	// ErrNotHolder indicates a role transfer from an account that does not hold the role.
	ErrNotHolder = fmt.Errorf("access: account does not hold role: %w", ledger.ErrInvalidArgument)
)
