package revshare

import "github.com/bitfsorg/propshare-go/ledger"

// RevShareEntry represents a shareholder's record in a frozen snapshot.
type RevShareEntry struct {
	Address ledger.Address `json:"address"`
	Share   uint64         `json:"share"` // Number of shares held
}

// Distribution represents a single payout in revenue distribution.
type Distribution struct {
	Address ledger.Address `json:"address"`
	Amount  uint64         `json:"amount"`
}

// TotalShares sums the shares of entries.
func TotalShares(entries []RevShareEntry) uint64 {
	var total uint64
	for _, e := range entries {
		total += e.Share
	}
	return total
}

// TotalAmount sums the payouts of distributions.
func TotalAmount(dists []Distribution) uint64 {
	var total uint64
	for _, d := range dists {
		total += d.Amount
	}
	return total
}
