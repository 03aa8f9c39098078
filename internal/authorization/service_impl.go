package authorization

import (
	"context"
	_ "embed"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"github.com/smallbiznis/royalti/internal/principal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectSong           = "song"
	ObjectArtist         = "artist"
	ObjectCatalog        = "catalog"
	ObjectDashboard      = "dashboard"
	ObjectAdminDashboard = "admin_dashboard"
	ObjectUser           = "user"
	ObjectReference      = "reference"
)

const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"

	ActionSongReview  = "song.review"
	ActionSongPerform = "song.record_performance"
	ActionSongViewAll = "song.view_all"

	ActionCatalogClear = "catalog.clear"

	ActionUserList       = "user.list"
	ActionUserManageRole = "user.manage_role"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

// NewEnforcer loads policies from the casbin_rule table and seeds the defaults.
func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	if err := enforcer.BuildRoleLinks(); err != nil {
		return nil, err
	}
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, role principal.Role, object string, action string) error {
	if _, ok := principal.ParseRole(string(role)); !ok {
		return ErrInvalidActor
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	allowed, err := s.enforcer.Enforce(subject(role), object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Debug("authorization denied",
			zap.String("role", string(role)),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

func subject(role principal.Role) string {
	return "role:" + string(role)
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	user := subject(principal.RoleUser)
	admin := subject(principal.RoleAdmin)
	superAdmin := subject(principal.RoleSuperAdmin)

	policies := [][]string{
		// Users manage their own artists and songs
		{user, ObjectSong, ActionView},
		{user, ObjectSong, ActionCreate},
		{user, ObjectSong, ActionUpdate},
		{user, ObjectSong, ActionDelete},
		{user, ObjectArtist, ActionView},
		{user, ObjectArtist, ActionCreate},
		{user, ObjectArtist, ActionUpdate},
		{user, ObjectArtist, ActionDelete},
		{user, ObjectCatalog, ActionView},
		{user, ObjectCatalog, ActionCatalogClear},
		{user, ObjectDashboard, ActionView},
		{user, ObjectReference, ActionView},

		// Admin permissions
		{admin, ObjectAdminDashboard, ActionView},
		{admin, ObjectSong, ActionSongViewAll},
		{admin, ObjectSong, ActionSongReview},
		{admin, ObjectSong, ActionSongPerform},
		{admin, ObjectUser, ActionUserList},

		// Super admin permissions
		{superAdmin, ObjectUser, ActionUserManageRole},
	}

	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}

	groupings := [][]string{
		{admin, user},
		{superAdmin, admin},
	}
	for _, grouping := range groupings {
		if _, err := enforcer.AddGroupingPolicy(grouping); err != nil {
			return err
		}
	}
	return nil
}
