package authorization

import (
	"context"
	"testing"

	"github.com/smallbiznis/royalti/internal/principal"
	"github.com/smallbiznis/royalti/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)

	enforcer, err := NewEnforcer(conn)
	require.NoError(t, err)
	return NewService(Params{Log: zap.NewNop(), Enforcer: enforcer})
}

func TestRoleHierarchy(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	assert.NoError(t, svc.Authorize(ctx, principal.RoleUser, ObjectSong, ActionCreate))
	assert.ErrorIs(t, svc.Authorize(ctx, principal.RoleUser, ObjectSong, ActionSongReview), ErrForbidden)
	assert.ErrorIs(t, svc.Authorize(ctx, principal.RoleUser, ObjectAdminDashboard, ActionView), ErrForbidden)

	assert.NoError(t, svc.Authorize(ctx, principal.RoleAdmin, ObjectSong, ActionCreate))
	assert.NoError(t, svc.Authorize(ctx, principal.RoleAdmin, ObjectSong, ActionSongReview))
	assert.ErrorIs(t, svc.Authorize(ctx, principal.RoleAdmin, ObjectUser, ActionUserManageRole), ErrForbidden)

	assert.NoError(t, svc.Authorize(ctx, principal.RoleSuperAdmin, ObjectUser, ActionUserManageRole))
	assert.NoError(t, svc.Authorize(ctx, principal.RoleSuperAdmin, ObjectAdminDashboard, ActionView))
}

func TestAuthorizeRejectsInvalidInput(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Authorize(ctx, principal.Role("owner"), ObjectSong, ActionView), ErrInvalidActor)
	assert.ErrorIs(t, svc.Authorize(ctx, principal.RoleUser, " ", ActionView), ErrInvalidObject)
	assert.ErrorIs(t, svc.Authorize(ctx, principal.RoleUser, ObjectSong, ""), ErrInvalidAction)
}

func TestSeedIsIdempotent(t *testing.T) {
	conn, err := db.NewTest()
	require.NoError(t, err)

	_, err = NewEnforcer(conn)
	require.NoError(t, err)
	enforcer, err := NewEnforcer(conn)
	require.NoError(t, err)

	policies, err := enforcer.GetPolicy()
	require.NoError(t, err)
	assert.Len(t, policies, 18)
}
