package pdf

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateStatement(t *testing.T) {
	provider := New()

	r, err := provider.GenerateStatement(context.Background(), StatementData{
		Title:       "Noite de Verão",
		Genre:       "Funk",
		Status:      "published",
		Streams:     "12000",
		Revenue:     "100.00",
		Distributor: "40%",
		Lines: []StatementLine{
			{Party: "Distributor", Role: "distributor", Percentage: "40%", Amount: "40.00"},
			{Party: "MC Maria", Role: "vocalist", Percentage: "60%", Amount: "60.00"},
		},
		TotalPercent: "100%",
		TotalAmount:  "100.00",
	})
	require.NoError(t, err)

	body, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

func TestGenerateStatementCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().GenerateStatement(ctx, StatementData{})
	assert.ErrorIs(t, err, context.Canceled)
}
