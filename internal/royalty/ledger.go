// Package royalty holds the royalty-split ledger of a song: a fixed
// distributor share plus an ordered list of participant shares that must
// add up to exactly 100% before a song can be saved.
package royalty

import (
	"strings"

	"github.com/oklog/ulid/v2"
)

const (
	TotalPercentage              = 100
	MinPercentage                = 1
	DefaultDistributorPercentage = 40
)

// Participant is one artist's share on a song.
type Participant struct {
	ID         string `json:"id"`
	SubjectRef string `json:"subject_ref"`
	Role       Role   `json:"role"`
	Percentage int    `json:"percentage"`
}

// Summary is the live view of a ledger rendered next to the song form.
type Summary struct {
	Distributor  int           `json:"distributor_percentage"`
	Participants []Participant `json:"participants"`
	Total        int           `json:"total"`
	Balanced     bool          `json:"balanced"`
	Headroom     int           `json:"headroom"`
}

// Ledger is the in-memory royalty split of one song. A Ledger has a single
// owner and is not safe for concurrent use.
type Ledger struct {
	distributor  int
	participants []Participant
	roles        RoleSet
	newID        func() string
}

type Option func(*Ledger)

// WithRoles restricts accepted participant roles.
func WithRoles(roles RoleSet) Option {
	return func(l *Ledger) {
		l.roles = roles
	}
}

// WithIDGenerator overrides the participant id generator.
func WithIDGenerator(fn func() string) Option {
	return func(l *Ledger) {
		if fn != nil {
			l.newID = fn
		}
	}
}

// New returns an empty ledger holding only the distributor share.
func New(distributor int, opts ...Option) (*Ledger, error) {
	if distributor < 0 || distributor > TotalPercentage-MinPercentage {
		return nil, ErrInvalidDistributor
	}
	l := &Ledger{
		distributor: distributor,
		roles:       NewRoleSet(DefaultRoles...),
		newID:       func() string { return ulid.Make().String() },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// NewDefault returns an empty ledger with the default 40% distributor share.
func NewDefault(opts ...Option) *Ledger {
	l, _ := New(DefaultDistributorPercentage, opts...)
	return l
}

// FromParticipants rebuilds a ledger from persisted shares. Rows go through
// the same checks as Add, in order; ids are kept when present.
func FromParticipants(distributor int, rows []Participant, opts ...Option) (*Ledger, error) {
	l, err := New(distributor, opts...)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if _, err := l.add(row.ID, row.SubjectRef, row.Role, row.Percentage); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (l *Ledger) Distributor() int {
	return l.distributor
}

func (l *Ledger) Len() int {
	return len(l.participants)
}

// Participants returns a copy of the participant shares in order.
func (l *Ledger) Participants() []Participant {
	out := make([]Participant, len(l.participants))
	copy(out, l.participants)
	return out
}

// Get returns the participant with the given id.
func (l *Ledger) Get(id string) (Participant, bool) {
	idx := l.indexOf(id)
	if idx < 0 {
		return Participant{}, false
	}
	return l.participants[idx], true
}

// Headroom is the largest percentage assignable to a slot without pushing
// the total past 100. The participant named by excludingID does not count
// against itself. The result is never below MinPercentage.
func (l *Ledger) Headroom(excludingID string) int {
	used := l.distributor
	for _, p := range l.participants {
		if excludingID != "" && p.ID == excludingID {
			continue
		}
		used += p.Percentage
	}
	headroom := TotalPercentage - used
	if headroom < MinPercentage {
		return MinPercentage
	}
	return headroom
}

// Clamp bounds a requested percentage to [MinPercentage, Headroom(excludingID)].
func (l *Ledger) Clamp(percentage int, excludingID string) int {
	if percentage < MinPercentage {
		return MinPercentage
	}
	if limit := l.Headroom(excludingID); percentage > limit {
		return limit
	}
	return percentage
}

// Add appends a new participant share.
func (l *Ledger) Add(subjectRef string, role Role, percentage int) (Participant, error) {
	return l.add("", subjectRef, role, percentage)
}

func (l *Ledger) add(id, subjectRef string, role Role, percentage int) (Participant, error) {
	subjectRef = strings.TrimSpace(subjectRef)
	if subjectRef == "" {
		return Participant{}, ErrInvalidSubject
	}
	role = NormalizeRole(string(role))
	if role == "" || !l.roles.Contains(role) {
		return Participant{}, ErrInvalidRole
	}
	for _, p := range l.participants {
		if p.SubjectRef == subjectRef {
			return Participant{}, ErrDuplicateParticipant
		}
	}
	if percentage < MinPercentage || percentage > l.Headroom("") {
		return Participant{}, ErrOutOfRange
	}

	id = strings.TrimSpace(id)
	if id == "" || l.indexOf(id) >= 0 {
		id = l.newID()
	}
	p := Participant{
		ID:         id,
		SubjectRef: subjectRef,
		Role:       role,
		Percentage: percentage,
	}
	l.participants = append(l.participants, p)
	return p, nil
}

// Update replaces the percentage of an existing participant in place.
func (l *Ledger) Update(id string, percentage int) error {
	idx := l.indexOf(id)
	if idx < 0 {
		return ErrNotFound
	}
	if percentage < MinPercentage || percentage > l.Headroom(id) {
		return ErrOutOfRange
	}
	l.participants[idx].Percentage = percentage
	return nil
}

// Remove deletes a participant. Removing an absent id is a no-op.
func (l *Ledger) Remove(id string) bool {
	idx := l.indexOf(id)
	if idx < 0 {
		return false
	}
	l.participants = append(l.participants[:idx], l.participants[idx+1:]...)
	return true
}

// Total is the distributor share plus every participant share.
func (l *Ledger) Total() int {
	total := l.distributor
	for _, p := range l.participants {
		total += p.Percentage
	}
	return total
}

func (l *Ledger) IsBalanced() bool {
	return l.Total() == TotalPercentage
}

// ValidateForSubmit reports whether the ledger may be persisted.
// A ledger without participants reports ErrEmptyLedger even though the
// distributor share alone is also unbalanced.
func (l *Ledger) ValidateForSubmit() error {
	if len(l.participants) == 0 {
		return ErrEmptyLedger
	}
	if !l.IsBalanced() {
		return ErrUnbalancedLedger
	}
	return nil
}

func (l *Ledger) Snapshot() Summary {
	return Summary{
		Distributor:  l.distributor,
		Participants: l.Participants(),
		Total:        l.Total(),
		Balanced:     l.IsBalanced(),
		Headroom:     l.Headroom(""),
	}
}

func (l *Ledger) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, p := range l.participants {
		if p.ID == id {
			return i
		}
	}
	return -1
}
