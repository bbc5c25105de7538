package revshare

import "math/bits"

// DistributeRevenue calculates per-shareholder payouts as
// floor(totalPayment * share / totalShares). Whatever the floors leave behind
// is returned as remainder; no shareholder is favoured with it.
func DistributeRevenue(totalPayment uint64, entries []RevShareEntry, totalShares uint64) ([]Distribution, uint64, error) {
	if totalPayment == 0 {
		return nil, 0, ErrInsufficientPayment
	}
	if len(entries) == 0 {
		return nil, 0, ErrNoEntries
	}
	if totalShares == 0 {
		return nil, 0, ErrZeroTotalShares
	}
	if sum, overflow := sumShares(entries); overflow || sum > totalShares {
		return nil, 0, ErrSharesExceedTotal
	}

	distributions := make([]Distribution, len(entries))
	var distributed uint64
	for i, entry := range entries {
		distributions[i].Address = entry.Address
		distributions[i].Amount = floorShare(totalPayment, entry.Share, totalShares)
		distributed += distributions[i].Amount
	}
	return distributions, totalPayment - distributed, nil
}

// floorShare computes floor(amount*share/total) without overflowing.
// share <= total keeps the high word below total, so Div64 cannot panic.
func floorShare(amount, share, total uint64) uint64 {
	hi, lo := bits.Mul64(amount, share)
	q, _ := bits.Div64(hi, lo, total)
	return q
}

func sumShares(entries []RevShareEntry) (uint64, bool) {
	var sum uint64
	for _, e := range entries {
		var carry uint64
		sum, carry = bits.Add64(sum, e.Share, 0)
		if carry != 0 {
			return 0, true
		}
	}
	return sum, false
}
