package ledger

const (
	// AccountStorageOverhead is charged on top of an account's data length.
	AccountStorageOverhead = 128
	// LamportsPerByteYear is the rent rate.
	LamportsPerByteYear = 3480
	// ExemptionThresholdYears of rent make an account rent exempt.
	ExemptionThresholdYears = 2
)

// MinimumBalance returns the lamports needed for an account of space bytes to be rent exempt.
func MinimumBalance(space uint64) uint64 {
	return (space + AccountStorageOverhead) * LamportsPerByteYear * ExemptionThresholdYears
}

// TopUp returns the lamports a payer still owes to bring an account holding prefunded lamports
// up to rent.
func TopUp(rent, prefunded uint64) uint64 {
	if prefunded >= rent {
		return 0
	}
	return rent - prefunded
}
