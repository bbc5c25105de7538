package revshare

import "fmt"

// ValidateShareConservation checks that total input shares equal total output shares.
func ValidateShareConservation(inputs []RevShareEntry, outputs []RevShareEntry) error {
	inputTotal, outputTotal := TotalShares(inputs), TotalShares(outputs)
	if inputTotal != outputTotal {
		return fmt.Errorf("%w: input=%d output=%d", ErrShareConservationViolation, inputTotal, outputTotal)
	}
	return nil
}

// ValidateDistribution checks that distribution amounts match snapshot
// proportions and never pay out more than the pool.
func ValidateDistribution(distributions []Distribution, entries []RevShareEntry, totalPayment, totalShares uint64) error {
	if len(distributions) != len(entries) {
		return fmt.Errorf("%w: distribution count %d != entry count %d", ErrDistributionMismatch, len(distributions), len(entries))
	}

	expected, _, err := DistributeRevenue(totalPayment, entries, totalShares)
	if err != nil {
		return err
	}

	for i := range distributions {
		if distributions[i].Address != expected[i].Address {
			return fmt.Errorf("%w: entry %d: address mismatch", ErrDistributionMismatch, i)
		}
		if distributions[i].Amount != expected[i].Amount {
			return fmt.Errorf("%w: entry %d: amount %d != expected %d", ErrDistributionMismatch, i, distributions[i].Amount, expected[i].Amount)
		}
	}
	if paid := TotalAmount(distributions); paid > totalPayment {
		return fmt.Errorf("%w: paid %d from pool %d", ErrDistributionMismatch, paid, totalPayment)
	}
	return nil
}
