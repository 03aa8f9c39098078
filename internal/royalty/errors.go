package royalty

import "errors"

var (
	ErrOutOfRange           = errors.New("out_of_range")
	ErrDuplicateParticipant = errors.New("duplicate_participant")
	ErrNotFound             = errors.New("participant_not_found")
	ErrUnbalancedLedger     = errors.New("unbalanced_ledger")
	ErrEmptyLedger          = errors.New("empty_ledger")
	ErrInvalidSubject       = errors.New("invalid_subject")
	ErrInvalidRole          = errors.New("invalid_role")
	ErrInvalidDistributor   = errors.New("invalid_distributor")
	ErrInvalidAmount        = errors.New("invalid_amount")
)

// IsLedgerError reports whether err is one of the ledger validation failures.
func IsLedgerError(err error) bool {
	switch {
	case errors.Is(err, ErrOutOfRange),
		errors.Is(err, ErrDuplicateParticipant),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrUnbalancedLedger),
		errors.Is(err, ErrEmptyLedger),
		errors.Is(err, ErrInvalidSubject),
		errors.Is(err, ErrInvalidRole),
		errors.Is(err, ErrInvalidDistributor),
		errors.Is(err, ErrInvalidAmount):
		return true
	default:
		return false
	}
}
