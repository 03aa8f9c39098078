package royalty

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistribute_SplitsByPercentage(t *testing.T) {
	l := NewDefault()
	_, _ = l.Add("artist-a", RoleVocalist, 30)
	_, _ = l.Add("artist-b", RoleProducer, 30)

	payouts, err := Distribute(10_000, l)
	require.NoError(t, err)
	require.Len(t, payouts, 3)

	assert.True(t, payouts[0].Distributor)
	assert.Equal(t, int64(4_000), payouts[0].Amount)
	assert.Equal(t, "artist-a", payouts[1].SubjectRef)
	assert.Equal(t, int64(3_000), payouts[1].Amount)
	assert.Equal(t, int64(3_000), payouts[2].Amount)
}

func TestDistribute_LastEntryTakesRemainder(t *testing.T) {
	l := NewDefault()
	_, _ = l.Add("artist-a", RoleVocalist, 33)
	_, _ = l.Add("artist-b", RoleProducer, 27)

	payouts, err := Distribute(101, l)
	require.NoError(t, err)

	var sum int64
	for _, p := range payouts {
		sum += p.Amount
	}
	assert.Equal(t, int64(101), sum)
	assert.Equal(t, int64(40), payouts[0].Amount)
	assert.Equal(t, int64(33), payouts[1].Amount)
	assert.Equal(t, int64(28), payouts[2].Amount)
}

func TestDistribute_Rejections(t *testing.T) {
	l := NewDefault()
	_, _ = l.Add("artist-a", RoleVocalist, 50)

	_, err := Distribute(100, l)
	assert.ErrorIs(t, err, ErrUnbalancedLedger)

	_, err = Distribute(100, nil)
	assert.ErrorIs(t, err, ErrUnbalancedLedger)

	_ = l.Update(l.Participants()[0].ID, 60)
	_, err = Distribute(-1, l)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	payouts, err := Distribute(0, l)
	require.NoError(t, err)
	for _, p := range payouts {
		assert.Zero(t, p.Amount)
	}
}
