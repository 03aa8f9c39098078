package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), " req-1 ")
	assert.Equal(t, "req-1", RequestIDFromContext(ctx))

	ctx = WithRequestID(context.Background(), "  ")
	assert.Empty(t, RequestIDFromContext(ctx))
}

func TestActor(t *testing.T) {
	id, role := ActorFromContext(context.Background())
	assert.Empty(t, id)
	assert.Empty(t, role)

	ctx := WithActor(context.Background(), "42", "admin")
	id, role = ActorFromContext(ctx)
	assert.Equal(t, "42", id)
	assert.Equal(t, "admin", role)
}
