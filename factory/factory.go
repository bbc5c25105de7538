package factory

import (
	"fmt"
	"strings"

	"github.com/bitfsorg/propshare-go/access"
	"github.com/bitfsorg/propshare-go/asset"
	"github.com/bitfsorg/propshare-go/ledger"
	"github.com/bitfsorg/propshare-go/registry"
)

// Factory is the only component allowed to create PropertyAsset/ShareToken pairs.
type Factory struct {
	access.Control
	Registry          ledger.Address
	RestrictTransfers bool // copied into every token this factory creates
	Created           []Property
}

// Property links an asset id to its two contracts.
type Property struct {
	ID    uint64         `json:"id"`
	Asset ledger.Address `json:"asset"`
	Token ledger.Address `json:"token"`
}

// New returns a factory at addr administered by admin that resolves its
// dependencies through the registry at registryAddr.
func New(addr, admin, registryAddr ledger.Address, restrictTransfers bool) *Factory {
	return &Factory{
		Control:           access.NewControl(addr, admin),
		Registry:          registryAddr,
		RestrictTransfers: restrictTransfers,
	}
}

// PropertyRegistered is emitted for every created property. Off-ledger
// indexers build their property lists from it.
type PropertyRegistered struct {
	AssetID      uint64         `json:"asset_id"`
	Owner        ledger.Address `json:"owner"`
	Asset        ledger.Address `json:"asset"`
	Token        ledger.Address `json:"token"`
	Name         string         `json:"name"`
	Symbol       string         `json:"symbol"`
	MetadataHash ledger.Hash    `json:"metadata_hash"`
	Valuation    uint64         `json:"valuation"`
}

func (PropertyRegistered) EventName() string { return "PropertyRegistered" }

// SnapshotGrantSkipped warns that a token was created while the registry had
// no revenue engine; the token is not distribution-eligible until repaired
// with GrantSnapshotRoleToRevenue.
type SnapshotGrantSkipped struct {
	AssetID uint64         `json:"asset_id"`
	Token   ledger.Address `json:"token"`
	Reason  string         `json:"reason"`
}

func (SnapshotGrantSkipped) EventName() string { return "SnapshotGrantSkipped" }

func init() {
	ledger.RegisterContract(&Factory{})
	ledger.RegisterPayload(PropertyRegistered{})
	ledger.RegisterPayload(SnapshotGrantSkipped{})
}

// Params describes a property to register.
type Params struct {
	Owner        ledger.Address
	Name         string
	Symbol       string
	MetadataHash ledger.Hash
	Valuation    uint64
	TokenSupply  uint64
	TokenName    string
	TokenSymbol  string
}

// Result identifies the created pair.
type Result struct {
	AssetID uint64         `json:"asset_id"`
	Asset   ledger.Address `json:"asset"`
	Token   ledger.Address `json:"token"`
}

// CreateProperty deploys a PropertyAsset (ADMIN = caller, status Active) and
// its ShareToken (ADMIN = this factory, whole supply credited to the owner),
// then grants SNAPSHOT on the token to the revenue engine currently in the
// registry. CREATOR only.
func (f *Factory) CreateProperty(ctx *ledger.Context, caller ledger.Address, p Params) (Result, error) {
	if err := f.Require(caller, access.Creator); err != nil {
		return Result{}, err
	}
	if p.Owner.IsZero() {
		return Result{}, ErrZeroOwner
	}
	if p.TokenSupply == 0 {
		return Result{}, ErrZeroSupply
	}
	if strings.TrimSpace(p.TokenName) == "" || strings.TrimSpace(p.TokenSymbol) == "" {
		return Result{}, ErrEmptyTokenName
	}
	reg, err := ledger.Resolve[registry.Locator](ctx, f.Registry)
	if err != nil {
		return Result{}, fmt.Errorf("factory: resolve registry: %w", err)
	}

	id := uint64(len(f.Created)) + 1
	prop := ctx.Deploy(f.Contract, func(addr ledger.Address) ledger.Contract {
		return &asset.PropertyAsset{
			Control:      access.NewControl(addr, caller),
			ID:           id,
			Factory:      f.Contract,
			Owner:        p.Owner,
			Name:         p.Name,
			Symbol:       p.Symbol,
			MetadataHash: p.MetadataHash,
			Valuation:    p.Valuation,
			Status:       asset.StatusCreated,
			CreatedAt:    ctx.Height(),
		}
	}).(*asset.PropertyAsset)

	var tokenErr error
	tok := ctx.Deploy(f.Contract, func(addr ledger.Address) ledger.Contract {
		t, err := asset.NewShareToken(addr, f.Contract, asset.TokenParams{
			Name:       p.TokenName,
			Symbol:     p.TokenSymbol,
			Asset:      prop.Contract,
			Registry:   f.Registry,
			Restricted: f.RestrictTransfers,
			Supply:     p.TokenSupply,
			Owner:      p.Owner,
		})
		tokenErr = err
		return t
	})
	if tokenErr != nil {
		return Result{}, fmt.Errorf("factory: create token: %w", tokenErr)
	}
	token := tok.(*asset.ShareToken)

	prop.Token = token.Contract
	prop.Status = asset.StatusActive

	if rev := reg.Get(registry.Revenue); rev.IsZero() {
		ctx.Emit(f.Contract, SnapshotGrantSkipped{AssetID: id, Token: token.Contract, Reason: "registry has no revenue engine"})
		ctx.Logger().Warn("snapshot role not granted: revenue engine unset",
			"factory", f.Contract, "asset_id", id, "token", token.Contract)
	} else if err := token.GrantRole(ctx, f.Contract, access.Snapshot, rev); err != nil {
		return Result{}, fmt.Errorf("factory: grant snapshot role: %w", err)
	}

	f.Created = append(f.Created, Property{ID: id, Asset: prop.Contract, Token: token.Contract})
	ctx.Emit(f.Contract, PropertyRegistered{
		AssetID:      id,
		Owner:        p.Owner,
		Asset:        prop.Contract,
		Token:        token.Contract,
		Name:         p.Name,
		Symbol:       p.Symbol,
		MetadataHash: p.MetadataHash,
		Valuation:    p.Valuation,
	})
	return Result{AssetID: id, Asset: prop.Contract, Token: token.Contract}, nil
}

// GrantSnapshotRoleToRevenue points the token's SNAPSHOT role at the revenue
// engine currently in the registry, revoking it from any previous holder.
// ADMIN only; idempotent. This repairs tokens created before a revenue engine
// was registered or after the engine was redeployed.
func (f *Factory) GrantSnapshotRoleToRevenue(ctx *ledger.Context, caller, tokenAddr ledger.Address) error {
	if err := f.Require(caller, access.Admin); err != nil {
		return err
	}
	if _, ok := f.PropertyByToken(tokenAddr); !ok {
		return fmt.Errorf("%w: token %s", ErrPropertyNotFound, tokenAddr)
	}
	reg, err := ledger.Resolve[registry.Locator](ctx, f.Registry)
	if err != nil {
		return fmt.Errorf("factory: resolve registry: %w", err)
	}
	rev, err := reg.Resolve(registry.Revenue)
	if err != nil {
		return fmt.Errorf("factory: grant snapshot role: %w", err)
	}
	token, err := ledger.Resolve[*asset.ShareToken](ctx, tokenAddr)
	if err != nil {
		return fmt.Errorf("factory: resolve token: %w", err)
	}
	if !token.HasRole(access.Admin, f.Contract) {
		return fmt.Errorf("%w: factory %s is not ADMIN of token %s", ledger.ErrMissingCapability, f.Contract, tokenAddr)
	}

	for _, stale := range token.Holders(access.Snapshot) {
		if stale == rev {
			continue
		}
		if err := token.RevokeRole(ctx, f.Contract, access.Snapshot, stale); err != nil {
			return fmt.Errorf("factory: revoke stale snapshot role: %w", err)
		}
	}
	if err := token.GrantRole(ctx, f.Contract, access.Snapshot, rev); err != nil {
		return fmt.Errorf("factory: grant snapshot role: %w", err)
	}
	return nil
}

// Property returns the property with the given id.
func (f *Factory) Property(id uint64) (Property, error) {
	if id == 0 || id > uint64(len(f.Created)) {
		return Property{}, fmt.Errorf("%w: id %d", ErrPropertyNotFound, id)
	}
	return f.Created[id-1], nil
}

// PropertyByToken finds the property whose share token is tokenAddr.
func (f *Factory) PropertyByToken(tokenAddr ledger.Address) (Property, bool) {
	for _, p := range f.Created {
		if p.Token == tokenAddr {
			return p, true
		}
	}
	return Property{}, false
}

// Properties returns every property in creation order.
func (f *Factory) Properties() []Property {
	return append([]Property(nil), f.Created...)
}
