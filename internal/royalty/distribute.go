package royalty

// Payout is the share of a revenue amount owed to one ledger entry.
type Payout struct {
	SubjectRef  string `json:"subject_ref,omitempty"`
	Role        Role   `json:"role,omitempty"`
	Distributor bool   `json:"distributor"`
	Percentage  int    `json:"percentage"`
	Amount      int64  `json:"amount"`
}

// Distribute splits amount (minor currency units) across the distributor
// and every participant of a balanced ledger. The last entry takes the
// remainder so payouts always sum to amount.
func Distribute(amount int64, l *Ledger) ([]Payout, error) {
	if amount < 0 {
		return nil, ErrInvalidAmount
	}
	if l == nil || !l.IsBalanced() {
		return nil, ErrUnbalancedLedger
	}

	payouts := make([]Payout, 0, l.Len()+1)
	payouts = append(payouts, Payout{
		Distributor: true,
		Percentage:  l.distributor,
	})
	for _, p := range l.participants {
		payouts = append(payouts, Payout{
			SubjectRef: p.SubjectRef,
			Role:       p.Role,
			Percentage: p.Percentage,
		})
	}

	var distributed int64
	last := len(payouts) - 1
	for i := range payouts {
		if i == last {
			payouts[i].Amount = amount - distributed
			continue
		}
		share := amount * int64(payouts[i].Percentage) / TotalPercentage
		payouts[i].Amount = share
		distributed += share
	}
	return payouts, nil
}
