package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bitfsorg/propshare-go/allowlist"
	"github.com/bitfsorg/propshare-go/asset"
	"github.com/bitfsorg/propshare-go/chain"
	"github.com/bitfsorg/propshare-go/ledger"
	"github.com/bitfsorg/propshare-go/registry"
	"github.com/bitfsorg/propshare-go/revshare"
	"github.com/bitfsorg/propshare-go/store"
)

type registryView struct {
	Registry ledger.Address `json:"registry"`
	Factory  ledger.Address `json:"factory"`
	Approval ledger.Address `json:"approval"`
	Revenue  ledger.Address `json:"revenue"`
	Height   uint64         `json:"height"`
}

// GET /registry
func (s *Server) getRegistry(w http.ResponseWriter, r *http.Request) {
	var out registryView
	err := s.world.View(func(st *chain.State) error {
		reg, err := chain.Get[*registry.Registry](st, s.dep.Registry)
		if err != nil {
			return err
		}
		out = registryView{
			Registry: reg.Contract,
			Factory:  reg.GetFactory(),
			Approval: reg.GetApproval(),
			Revenue:  reg.GetRevenue(),
			Height:   st.Height,
		}
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type approvalView struct {
	Address  ledger.Address `json:"address"`
	Approved bool           `json:"approved"`
}

// GET /approvals/{address}
// Answers through whatever allow-list the registry currently points at.
func (s *Server) getApproval(w http.ResponseWriter, r *http.Request) {
	addr, err := addressParam(r, "address")
	if err != nil {
		writeError(w, err)
		return
	}
	var out approvalView
	err = s.world.View(func(st *chain.State) error {
		list, _, err := registry.Lookup[*allowlist.AllowList](st, s.dep.Registry, registry.Approval)
		if err != nil {
			return err
		}
		out = approvalView{Address: addr, Approved: list.Check(addr)}
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// GET /properties
func (s *Server) listProperties(w http.ResponseWriter, r *http.Request) {
	recs, err := s.props.ListProperties()
	if err != nil {
		writeError(w, err)
		return
	}
	if recs == nil {
		recs = []*store.PropertyRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}

type propertyView struct {
	ID           uint64         `json:"id"`
	Asset        ledger.Address `json:"asset"`
	Token        ledger.Address `json:"token"`
	Factory      ledger.Address `json:"factory"`
	Owner        ledger.Address `json:"owner"`
	Name         string         `json:"name"`
	Symbol       string         `json:"symbol"`
	MetadataHash ledger.Hash    `json:"metadata_hash"`
	Valuation    uint64         `json:"valuation"`
	Status       asset.Status   `json:"status"`
	CreatedAt    uint64         `json:"created_at"`
	TotalSupply  uint64         `json:"total_supply"`
	Restricted   bool           `json:"restricted"`
}

// GET /properties/{asset}
// Reads live state rather than the projection.
func (s *Server) getProperty(w http.ResponseWriter, r *http.Request) {
	addr, err := addressParam(r, "asset")
	if err != nil {
		writeError(w, err)
		return
	}
	var out propertyView
	err = s.world.View(func(st *chain.State) error {
		p, err := chain.Get[*asset.PropertyAsset](st, addr)
		if err != nil {
			return err
		}
		out = propertyView{
			ID:           p.ID,
			Asset:        p.Contract,
			Token:        p.Token,
			Factory:      p.Factory,
			Owner:        p.Owner,
			Name:         p.Name,
			Symbol:       p.Symbol,
			MetadataHash: p.MetadataHash,
			Valuation:    p.Valuation,
			Status:       p.Status,
			CreatedAt:    p.CreatedAt,
		}
		if tok, err := chain.Get[*asset.ShareToken](st, p.Token); err == nil {
			out.TotalSupply = tok.TotalSupply
			out.Restricted = tok.Restricted
		}
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// GET /documents/{hash}
// Serves the metadata document a property's hash commits to.
func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	hash, err := ledger.ParseHash(chi.URLParam(r, "hash"))
	if err != nil {
		writeError(w, err)
		return
	}
	doc, err := s.docs.Get(hash)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(doc))
	w.Header().Set("ETag", `"`+hash.String()+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

type holdersView struct {
	Token       ledger.Address  `json:"token"`
	TotalSupply uint64          `json:"total_supply"`
	Holders     []asset.Holding `json:"holders"`
}

// GET /tokens/{token}/holders
func (s *Server) getHolders(w http.ResponseWriter, r *http.Request) {
	addr, err := addressParam(r, "token")
	if err != nil {
		writeError(w, err)
		return
	}
	var out holdersView
	err = s.world.View(func(st *chain.State) error {
		tok, err := chain.Get[*asset.ShareToken](st, addr)
		if err != nil {
			return err
		}
		out = holdersView{Token: tok.Contract, TotalSupply: tok.TotalSupply, Holders: tok.Holdings()}
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) revenue(st *chain.State) (*revshare.Revenue, error) {
	rev, _, err := registry.Lookup[*revshare.Revenue](st, s.dep.Registry, registry.Revenue)
	return rev, err
}

// GET /rounds/{id}
func (s *Server) getRound(w http.ResponseWriter, r *http.Request) {
	id, err := uintParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var out revshare.Round
	err = s.world.View(func(st *chain.State) error {
		rev, err := s.revenue(st)
		if err != nil {
			return err
		}
		out, err = rev.Round(id)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type claimableView struct {
	Round     uint64         `json:"round"`
	Holder    ledger.Address `json:"holder"`
	Claimable uint64         `json:"claimable"`
}

// GET /rounds/{id}/claimable/{holder}
func (s *Server) getClaimable(w http.ResponseWriter, r *http.Request) {
	id, err := uintParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	holder, err := addressParam(r, "holder")
	if err != nil {
		writeError(w, err)
		return
	}
	out := claimableView{Round: id, Holder: holder}
	err = s.world.View(func(st *chain.State) error {
		rev, err := s.revenue(st)
		if err != nil {
			return err
		}
		out.Claimable, err = rev.Claimable(id, holder)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// GET /events?after=N&limit=M
func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var after uint64
	if v := q.Get("after"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			writeError(w, errors.Join(ledger.ErrInvalidArgument, err))
			return
		}
		after = n
	}
	limit := defaultEventLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, errors.Join(ledger.ErrInvalidArgument, errors.New("limit must be a positive integer")))
			return
		}
		limit = min(n, maxEventLimit)
	}
	events, err := s.world.Events(after, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if events == nil {
		events = []ledger.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}
