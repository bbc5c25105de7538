package access

import (
	"fmt"
	"strings"

	"github.com/bitfsorg/propshare-go/ledger"
)

// Role is a named capability scoped to one component instance.
type Role string

const (
	Admin       Role = "ADMIN"
	Creator     Role = "CREATOR"
	Distributor Role = "DISTRIBUTOR"
	Snapshot    Role = "SNAPSHOT"
)

// Roles lists every defined role.
var Roles = []Role{Admin, Creator, Distributor, Snapshot}

// ParseRole accepts a role name in any case.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Roles {
		if r == known {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// RoleGranted is emitted when an account gains a role.
type RoleGranted struct {
	Role    Role           `json:"role"`
	Account ledger.Address `json:"account"`
	Sender  ledger.Address `json:"sender"`
}

func (RoleGranted) EventName() string { return "RoleGranted" }

// RoleRevoked is emitted when an account loses a role.
type RoleRevoked struct {
	Role    Role           `json:"role"`
	Account ledger.Address `json:"account"`
	Sender  ledger.Address `json:"sender"`
}

func (RoleRevoked) EventName() string { return "RoleRevoked" }

func init() {
	ledger.RegisterPayload(RoleGranted{})
	ledger.RegisterPayload(RoleRevoked{})
}
