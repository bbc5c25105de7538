package allowlist

import (
	"fmt"

	"github.com/bitfsorg/propshare-go/access"
	"github.com/bitfsorg/propshare-go/ledger"
)

// AllowList is the deny-by-default compliance gate for share holders.
type AllowList struct {
	access.Control
	Approvals map[ledger.Address]bool
}

// New returns an allow-list at addr administered by admin.
func New(addr, admin ledger.Address) *AllowList {
	return &AllowList{
		Control:   access.NewControl(addr, admin),
		Approvals: make(map[ledger.Address]bool),
	}
}

// Approved is emitted when an address becomes approved.
type Approved struct {
	Account ledger.Address `json:"account"`
}

func (Approved) EventName() string { return "Approved" }

// Revoked is emitted when an approved address loses approval.
type Revoked struct {
	Account ledger.Address `json:"account"`
}

func (Revoked) EventName() string { return "Revoked" }

func init() {
	ledger.RegisterContract(&AllowList{})
	ledger.RegisterPayload(Approved{})
	ledger.RegisterPayload(Revoked{})
}

// Approve marks account approved. ADMIN only; approving twice writes once.
func (l *AllowList) Approve(ctx *ledger.Context, caller, account ledger.Address) error {
	if err := l.Require(caller, access.Admin); err != nil {
		return err
	}
	if account.IsZero() {
		return fmt.Errorf("%w: approve zero address", ledger.ErrInvalidArgument)
	}
	if l.Approvals[account] {
		return nil
	}
	if l.Approvals == nil {
		l.Approvals = make(map[ledger.Address]bool)
	}
	l.Approvals[account] = true
	ctx.Emit(l.Contract, Approved{Account: account})
	return nil
}

// Revoke clears account's approval. ADMIN only; revoking twice writes once.
func (l *AllowList) Revoke(ctx *ledger.Context, caller, account ledger.Address) error {
	if err := l.Require(caller, access.Admin); err != nil {
		return err
	}
	if !l.Approvals[account] {
		return nil
	}
	delete(l.Approvals, account)
	ctx.Emit(l.Contract, Revoked{Account: account})
	return nil
}

// Check reports whether account is approved. Unknown addresses are denied.
func (l *AllowList) Check(account ledger.Address) bool {
	return l.Approvals[account]
}

// List returns every approved address, sorted.
func (l *AllowList) List() []ledger.Address {
	out := make([]ledger.Address, 0, len(l.Approvals))
	for a, ok := range l.Approvals {
		if ok {
			out = append(out, a)
		}
	}
	ledger.SortAddresses(out)
	return out
}
