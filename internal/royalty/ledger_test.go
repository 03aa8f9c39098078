package royalty

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_SingleParticipantBalances(t *testing.T) {
	l := NewDefault()

	_, err := l.Add("artist-a", RoleVocalist, 60)
	require.NoError(t, err)

	assert.Equal(t, 100, l.Total())
	assert.True(t, l.IsBalanced())
	assert.NoError(t, l.ValidateForSubmit())
}

func TestLedger_UnderAllocatedIsUnbalanced(t *testing.T) {
	l := NewDefault()

	_, err := l.Add("artist-a", RoleVocalist, 50)
	require.NoError(t, err)

	assert.Equal(t, 90, l.Total())
	assert.ErrorIs(t, l.ValidateForSubmit(), ErrUnbalancedLedger)
}

func TestLedger_AddBeyondHeadroomRejected(t *testing.T) {
	l := NewDefault()

	_, err := l.Add("artist-a", RoleVocalist, 55)
	require.NoError(t, err)
	assert.Equal(t, 5, l.Headroom(""))

	_, err = l.Add("artist-b", RoleProducer, 10)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.Equal(t, 1, l.Len(), "rejected add must not change the ledger")
	assert.Equal(t, 95, l.Total())

	_, err = l.Add("artist-b", RoleProducer, 5)
	require.NoError(t, err)
	assert.Equal(t, 100, l.Total())
}

func TestLedger_UpdateBoundedByOthers(t *testing.T) {
	l := NewDefault()

	a, err := l.Add("artist-a", RoleVocalist, 30)
	require.NoError(t, err)
	_, err = l.Add("artist-b", RoleProducer, 30)
	require.NoError(t, err)
	require.Equal(t, 100, l.Total())

	assert.Equal(t, 30, l.Headroom(a.ID))
	assert.ErrorIs(t, l.Update(a.ID, 35), ErrOutOfRange)

	got, ok := l.Get(a.ID)
	require.True(t, ok)
	assert.Equal(t, 30, got.Percentage)
}

func TestLedger_UpdateKeepsPosition(t *testing.T) {
	l := NewDefault()

	a, _ := l.Add("artist-a", RoleVocalist, 20)
	b, _ := l.Add("artist-b", RoleProducer, 20)
	c, _ := l.Add("artist-c", RoleMixer, 10)

	require.NoError(t, l.Update(b.ID, 30))

	ids := []string{}
	for _, p := range l.Participants() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, ids)
	assert.Equal(t, 100, l.Total())
}

func TestLedger_UpdateUnknownParticipant(t *testing.T) {
	l := NewDefault()
	assert.ErrorIs(t, l.Update("missing", 10), ErrNotFound)
}

func TestLedger_EmptyLedgerCannotSubmit(t *testing.T) {
	l := NewDefault()
	assert.Equal(t, 40, l.Total())
	assert.ErrorIs(t, l.ValidateForSubmit(), ErrEmptyLedger)

	l, err := New(100 - MinPercentage)
	require.NoError(t, err)
	assert.ErrorIs(t, l.ValidateForSubmit(), ErrEmptyLedger)
}

func TestLedger_UnbalancedWithParticipants(t *testing.T) {
	l := NewDefault()
	_, err := l.Add("artist-a", RoleVocalist, 59)
	require.NoError(t, err)
	assert.ErrorIs(t, l.ValidateForSubmit(), ErrUnbalancedLedger)
}

func TestLedger_RemoveIsIdempotent(t *testing.T) {
	l := NewDefault()

	a, err := l.Add("artist-a", RoleVocalist, 60)
	require.NoError(t, err)
	require.Equal(t, 100, l.Total())

	assert.True(t, l.Remove(a.ID))
	assert.Equal(t, 40, l.Total())
	assert.False(t, l.IsBalanced())

	assert.False(t, l.Remove(a.ID))
	assert.Equal(t, 40, l.Total())
	assert.Equal(t, 0, l.Len())
	assert.ErrorIs(t, l.ValidateForSubmit(), ErrEmptyLedger)
}

func TestLedger_DuplicateSubjectRejected(t *testing.T) {
	l := NewDefault()

	_, err := l.Add("artist-a", RoleVocalist, 10)
	require.NoError(t, err)

	_, err = l.Add("artist-a", RoleProducer, 10)
	assert.ErrorIs(t, err, ErrDuplicateParticipant)
	assert.Equal(t, 1, l.Len())
}

func TestLedger_InvalidInputs(t *testing.T) {
	l := NewDefault()

	_, err := l.Add("  ", RoleVocalist, 10)
	assert.ErrorIs(t, err, ErrInvalidSubject)

	_, err = l.Add("artist-a", Role("dancer"), 10)
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = l.Add("artist-a", RoleVocalist, 0)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = l.Add("artist-a", RoleVocalist, -5)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = New(-1)
	assert.ErrorIs(t, err, ErrInvalidDistributor)
	_, err = New(100)
	assert.ErrorIs(t, err, ErrInvalidDistributor)
}

func TestLedger_CustomRoles(t *testing.T) {
	l := NewDefault(WithRoles(NewRoleSet("DJ")))

	_, err := l.Add("artist-a", RoleVocalist, 10)
	assert.ErrorIs(t, err, ErrInvalidRole)

	p, err := l.Add("artist-a", Role(" dj "), 10)
	require.NoError(t, err)
	assert.Equal(t, Role("dj"), p.Role)
}

func TestLedger_HeadroomFloor(t *testing.T) {
	l := NewDefault()
	_, err := l.Add("artist-a", RoleVocalist, 60)
	require.NoError(t, err)

	assert.Equal(t, MinPercentage, l.Headroom(""))
	assert.Equal(t, MinPercentage, l.Clamp(50, ""))
}

func TestLedger_Clamp(t *testing.T) {
	l := NewDefault()
	a, _ := l.Add("artist-a", RoleVocalist, 20)

	assert.Equal(t, 1, l.Clamp(0, ""))
	assert.Equal(t, 40, l.Clamp(90, ""))
	assert.Equal(t, 60, l.Clamp(90, a.ID))
	assert.Equal(t, 15, l.Clamp(15, a.ID))
}

func TestLedger_Snapshot(t *testing.T) {
	l := NewDefault()
	_, _ = l.Add("artist-a", RoleVocalist, 25)

	s := l.Snapshot()
	assert.Equal(t, 40, s.Distributor)
	assert.Equal(t, 65, s.Total)
	assert.False(t, s.Balanced)
	assert.Equal(t, 35, s.Headroom)
	require.Len(t, s.Participants, 1)

	s.Participants[0].Percentage = 99
	p := l.Participants()[0]
	assert.Equal(t, 25, p.Percentage, "snapshot must not alias ledger state")
}

func TestLedger_GeneratedIDsAreUnique(t *testing.T) {
	seq := 0
	l := NewDefault(WithIDGenerator(func() string {
		seq++
		return fmt.Sprintf("p-%d", seq)
	}))

	a, _ := l.Add("artist-a", RoleVocalist, 10)
	b, _ := l.Add("artist-b", RoleVocalist, 10)
	assert.Equal(t, "p-1", a.ID)
	assert.Equal(t, "p-2", b.ID)
}

func TestLedger_RoundTrip(t *testing.T) {
	l := NewDefault()
	_, _ = l.Add("artist-a", RoleVocalist, 30)
	_, _ = l.Add("artist-b", RoleProducer, 20)
	_, _ = l.Add("artist-c", RoleComposer, 10)
	require.True(t, l.IsBalanced())

	rows := l.Participants()
	for i := range rows {
		rows[i].ID = ""
	}

	rebuilt, err := FromParticipants(l.Distributor(), rows)
	require.NoError(t, err)

	assert.Equal(t, l.Total(), rebuilt.Total())
	assert.ElementsMatch(t, tuples(l), tuples(rebuilt))
}

func TestFromParticipants_RejectsInvalidRows(t *testing.T) {
	_, err := FromParticipants(40, []Participant{
		{SubjectRef: "artist-a", Role: RoleVocalist, Percentage: 50},
		{SubjectRef: "artist-b", Role: RoleVocalist, Percentage: 20},
	})
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = FromParticipants(40, []Participant{
		{SubjectRef: "artist-a", Role: RoleVocalist, Percentage: 10},
		{SubjectRef: "artist-a", Role: RoleMixer, Percentage: 10},
	})
	assert.ErrorIs(t, err, ErrDuplicateParticipant)
}

func TestFromParticipants_KeepsIDs(t *testing.T) {
	l, err := FromParticipants(40, []Participant{
		{ID: "row-1", SubjectRef: "artist-a", Role: RoleVocalist, Percentage: 30},
		{ID: "row-2", SubjectRef: "artist-b", Role: RoleVocalist, Percentage: 30},
	})
	require.NoError(t, err)

	_, ok := l.Get("row-2")
	assert.True(t, ok)
}

func TestLedger_InvariantsUnderRandomOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for run := 0; run < 50; run++ {
		l := NewDefault()
		for step := 0; step < 200; step++ {
			ids := participantIDs(l)
			switch op := rng.Intn(3); {
			case op == 0 || len(ids) == 0:
				_, _ = l.Add(fmt.Sprintf("artist-%d", rng.Intn(20)), RoleVocalist, rng.Intn(70)-5)
			case op == 1:
				_ = l.Update(ids[rng.Intn(len(ids))], rng.Intn(70)-5)
			default:
				l.Remove(ids[rng.Intn(len(ids))])
			}

			headroom := l.Headroom("")
			require.GreaterOrEqual(t, headroom, MinPercentage)
			require.LessOrEqual(t, headroom, TotalPercentage-l.Distributor())

			sum := l.Distributor()
			for _, p := range l.Participants() {
				require.GreaterOrEqual(t, p.Percentage, MinPercentage)
				sum += p.Percentage
			}
			require.Equal(t, sum, l.Total())
		}
	}
}

type shareTuple struct {
	Subject    string
	Role       Role
	Percentage int
}

func tuples(l *Ledger) []shareTuple {
	out := make([]shareTuple, 0, l.Len())
	for _, p := range l.Participants() {
		out = append(out, shareTuple{Subject: p.SubjectRef, Role: p.Role, Percentage: p.Percentage})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Subject < out[j].Subject })
	return out
}

func participantIDs(l *Ledger) []string {
	ids := make([]string, 0, l.Len())
	for _, p := range l.Participants() {
		ids = append(ids, p.ID)
	}
	return ids
}
