package asset

import (
	"fmt"

	"github.com/bitfsorg/propshare-go/access"
	"github.com/bitfsorg/propshare-go/ledger"
)

// Status is the lifecycle state of a property.
type Status uint8

const (
	StatusCreated Status = iota
	StatusActive
	StatusRejected
)

func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "Created"
	case StatusActive:
		return "Active"
	case StatusRejected:
		return "Rejected"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Created":
		*s = StatusCreated
	case "Active":
		*s = StatusActive
	case "Rejected":
		*s = StatusRejected
	default:
		return fmt.Errorf("%w: status %q", ledger.ErrInvalidArgument, text)
	}
	return nil
}

// PropertyAsset is the on-ledger identity of one real-world property.
// Each asset is governed by its own ADMIN set, independent of the factory's.
type PropertyAsset struct {
	access.Control
	ID           uint64
	Factory      ledger.Address
	Owner        ledger.Address
	Name         string
	Symbol       string
	MetadataHash ledger.Hash
	Valuation    uint64 // smallest currency unit
	Status       Status
	Token        ledger.Address
	CreatedAt    uint64 // ledger height
}

// PropertyRejected is emitted when an asset is marked illegitimate.
type PropertyRejected struct {
	AssetID uint64         `json:"asset_id"`
	Asset   ledger.Address `json:"asset"`
	Sender  ledger.Address `json:"sender"`
}

func (PropertyRejected) EventName() string { return "PropertyRejected" }

// ValuationUpdated is emitted when an asset is revalued.
type ValuationUpdated struct {
	AssetID  uint64         `json:"asset_id"`
	Asset    ledger.Address `json:"asset"`
	Previous uint64         `json:"previous"`
	Current  uint64         `json:"current"`
}

func (ValuationUpdated) EventName() string { return "ValuationUpdated" }

func init() {
	ledger.RegisterContract(&PropertyAsset{})
	ledger.RegisterPayload(PropertyRejected{})
	ledger.RegisterPayload(ValuationUpdated{})
}

// Reject moves the asset to Rejected. Asset ADMIN only; Rejected is terminal.
// The share token is left untouched.
func (p *PropertyAsset) Reject(ctx *ledger.Context, caller ledger.Address) error {
	if err := p.Require(caller, access.Admin); err != nil {
		return err
	}
	if p.Status == StatusRejected {
		return fmt.Errorf("%w: asset %d", ErrRejected, p.ID)
	}
	p.Status = StatusRejected
	ctx.Emit(p.Contract, PropertyRejected{AssetID: p.ID, Asset: p.Contract, Sender: caller})
	return nil
}

// UpdateValuation records a new valuation. Asset ADMIN only; not after rejection.
func (p *PropertyAsset) UpdateValuation(ctx *ledger.Context, caller ledger.Address, valuation uint64) error {
	if err := p.Require(caller, access.Admin); err != nil {
		return err
	}
	if p.Status == StatusRejected {
		return fmt.Errorf("%w: asset %d", ErrRejected, p.ID)
	}
	if p.Valuation == valuation {
		return nil
	}
	prev := p.Valuation
	p.Valuation = valuation
	ctx.Emit(p.Contract, ValuationUpdated{AssetID: p.ID, Asset: p.Contract, Previous: prev, Current: valuation})
	return nil
}
