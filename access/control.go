package access

import (
	"fmt"

	"github.com/bitfsorg/propshare-go/ledger"
)

// Control is the role table of one component: role -> set of principals.
// Components embed it, which gives every component the same guard and the same
// grant/revoke/transfer entry points.
type Control struct {
	Contract ledger.Address
	Members  map[Role]map[ledger.Address]bool
}

// NewControl returns a role table for contract with admin as its only ADMIN.
func NewControl(contract, admin ledger.Address) Control {
	return Control{
		Contract: contract,
		Members: map[Role]map[ledger.Address]bool{
			Admin: {admin: true},
		},
	}
}

// ContractAddress implements ledger.Contract.
func (c *Control) ContractAddress() ledger.Address { return c.Contract }

// HasRole reports whether account holds role.
func (c *Control) HasRole(role Role, account ledger.Address) bool {
	return c.Members[role][account]
}

// Holders returns the accounts holding role, sorted.
func (c *Control) Holders(role Role) []ledger.Address {
	out := make([]ledger.Address, 0, len(c.Members[role]))
	for a, ok := range c.Members[role] {
		if ok {
			out = append(out, a)
		}
	}
	ledger.SortAddresses(out)
	return out
}

// Require is the guard evaluated first by every mutating entry point.
func (c *Control) Require(caller ledger.Address, role Role) error {
	if c.HasRole(role, caller) {
		return nil
	}
	return fmt.Errorf("%w: %s lacks %s on %s", ledger.ErrUnauthorized, caller, role, c.Contract)
}

// RequireAny passes if caller holds at least one of roles.
func (c *Control) RequireAny(caller ledger.Address, roles ...Role) error {
	for _, r := range roles {
		if c.HasRole(r, caller) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s lacks any of %v on %s", ledger.ErrUnauthorized, caller, roles, c.Contract)
}

// GrantRole gives role to account. ADMIN only; granting a held role is a no-op.
func (c *Control) GrantRole(ctx *ledger.Context, caller ledger.Address, role Role, account ledger.Address) error {
	if err := c.Require(caller, Admin); err != nil {
		return err
	}
	if _, err := ParseRole(string(role)); err != nil {
		return err
	}
	if account.IsZero() {
		return fmt.Errorf("%w: grant %s to zero address", ledger.ErrInvalidArgument, role)
	}
	c.grant(ctx, caller, role, account)
	return nil
}

// RevokeRole removes role from account. ADMIN only; revoking an absent role is a
// no-op. The last ADMIN cannot be revoked.
func (c *Control) RevokeRole(ctx *ledger.Context, caller ledger.Address, role Role, account ledger.Address) error {
	if err := c.Require(caller, Admin); err != nil {
		return err
	}
	if _, err := ParseRole(string(role)); err != nil {
		return err
	}
	if role == Admin && c.HasRole(Admin, account) && len(c.Holders(Admin)) == 1 {
		return ErrLastAdmin
	}
	c.revoke(ctx, caller, role, account)
	return nil
}

// TransferRole atomically moves role from one account to another, so there is
// no window in which both or neither hold it.
func (c *Control) TransferRole(ctx *ledger.Context, caller ledger.Address, role Role, from, to ledger.Address) error {
	if err := c.Require(caller, Admin); err != nil {
		return err
	}
	if _, err := ParseRole(string(role)); err != nil {
		return err
	}
	if to.IsZero() {
		return fmt.Errorf("%w: transfer %s to zero address", ledger.ErrInvalidArgument, role)
	}
	if !c.HasRole(role, from) {
		return fmt.Errorf("%w: %s does not hold %s", ErrNotHolder, from, role)
	}
	if from == to {
		return nil
	}
	c.grant(ctx, caller, role, to)
	c.revoke(ctx, caller, role, from)
	return nil
}

func (c *Control) grant(ctx *ledger.Context, sender ledger.Address, role Role, account ledger.Address) {
	if c.HasRole(role, account) {
		return
	}
	if c.Members == nil {
		c.Members = make(map[Role]map[ledger.Address]bool)
	}
	if c.Members[role] == nil {
		c.Members[role] = make(map[ledger.Address]bool)
	}
	c.Members[role][account] = true
	ctx.Emit(c.Contract, RoleGranted{Role: role, Account: account, Sender: sender})
}

func (c *Control) revoke(ctx *ledger.Context, sender ledger.Address, role Role, account ledger.Address) {
	if !c.HasRole(role, account) {
		return
	}
	delete(c.Members[role], account)
	ctx.Emit(c.Contract, RoleRevoked{Role: role, Account: account, Sender: sender})
}
