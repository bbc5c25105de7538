package registry

import (
	"fmt"
	"strings"

	"github.com/bitfsorg/propshare-go/access"
	"github.com/bitfsorg/propshare-go/ledger"
)

// Entry names a component slot in the registry.
type Entry string

const (
	Factory  Entry = "FACTORY"
	Approval Entry = "APPROVAL"
	Revenue  Entry = "REVENUE"
)

// Entries lists every slot.
var Entries = []Entry{Factory, Approval, Revenue}

// ParseEntry accepts an entry name in any case.
func ParseEntry(s string) (Entry, error) {
	e := Entry(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Entries {
		if e == known {
			return e, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEntry, s)
}

// Registry is the service locator every other component resolves through.
// It never checks that a stored address implements what its slot implies.
type Registry struct {
	access.Control
	Slots map[Entry]ledger.Address
}

// New returns a registry at addr administered by admin.
func New(addr, admin ledger.Address) *Registry {
	return &Registry{
		Control: access.NewControl(addr, admin),
		Slots:   make(map[Entry]ledger.Address),
	}
}

// Updated is emitted whenever a slot is written, including rewrites of the same value.
type Updated struct {
	Entry    Entry          `json:"entry"`
	Previous ledger.Address `json:"previous"`
	Current  ledger.Address `json:"current"`
}

func (Updated) EventName() string { return "RegistryUpdated" }

func init() {
	ledger.RegisterContract(&Registry{})
	ledger.RegisterPayload(Updated{})
}

// Set overwrites a slot unconditionally. ADMIN only.
func (r *Registry) Set(ctx *ledger.Context, caller ledger.Address, entry Entry, addr ledger.Address) error {
	if err := r.Require(caller, access.Admin); err != nil {
		return err
	}
	if _, err := ParseEntry(string(entry)); err != nil {
		return err
	}
	if addr.IsZero() {
		return fmt.Errorf("%w: %s to zero address", ErrZeroEntry, entry)
	}

	prev := r.Get(entry)
	if r.Slots == nil {
		r.Slots = make(map[Entry]ledger.Address)
	}
	r.Slots[entry] = addr
	ctx.Emit(r.Contract, Updated{Entry: entry, Previous: prev, Current: addr})
	ctx.Logger().Info("registry updated", "registry", r.Contract, "entry", entry, "previous", prev, "current", addr)
	return nil
}

// SetFactory points the FACTORY slot at addr.
func (r *Registry) SetFactory(ctx *ledger.Context, caller, addr ledger.Address) error {
	return r.Set(ctx, caller, Factory, addr)
}

// SetApproval points the APPROVAL slot at addr.
func (r *Registry) SetApproval(ctx *ledger.Context, caller, addr ledger.Address) error {
	return r.Set(ctx, caller, Approval, addr)
}

// SetRevenue points the REVENUE slot at addr.
func (r *Registry) SetRevenue(ctx *ledger.Context, caller, addr ledger.Address) error {
	return r.Set(ctx, caller, Revenue, addr)
}

// Get returns the slot's address, or the zero sentinel if never set.
func (r *Registry) Get(entry Entry) ledger.Address { return r.Slots[entry] }

// GetFactory returns the FACTORY slot.
func (r *Registry) GetFactory() ledger.Address { return r.Get(Factory) }

// GetApproval returns the APPROVAL slot.
func (r *Registry) GetApproval() ledger.Address { return r.Get(Approval) }

// GetRevenue returns the REVENUE slot.
func (r *Registry) GetRevenue() ledger.Address { return r.Get(Revenue) }

// Resolve returns the slot's address or ErrUninitializedDependency.
func (r *Registry) Resolve(entry Entry) (ledger.Address, error) {
	addr := r.Get(entry)
	if addr.IsZero() {
		return ledger.ZeroAddress, fmt.Errorf("%w: registry %s slot %s", ledger.ErrUninitializedDependency, r.Contract, entry)
	}
	return addr, nil
}
