package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	authdomain "github.com/smallbiznis/royalti/internal/auth/domain"
	"github.com/smallbiznis/royalti/internal/auth/password"
	"github.com/smallbiznis/royalti/internal/principal"
	"gorm.io/gorm"
)

const seedNodeID = 1

// SuperAdmin is the bootstrap account configured through the environment.
type SuperAdmin struct {
	Email    string
	Password string
}

// EnsureSuperAdmin makes sure the configured account exists with the
// super_admin role. An existing user is promoted and keeps its password.
// Nothing happens when no email is configured, and a missing account is only
// created when a password is configured too.
func EnsureSuperAdmin(ctx context.Context, db *gorm.DB, admin SuperAdmin) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	email := strings.ToLower(strings.TrimSpace(admin.Email))
	if email == "" {
		return nil
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user authdomain.User
		err := tx.Where("email = ?", email).First(&user).Error
		if err == nil {
			if user.Role == principal.RoleSuperAdmin {
				return nil
			}
			return tx.Model(&authdomain.User{}).
				Where("id = ?", user.ID).
				Updates(map[string]any{
					"role":       string(principal.RoleSuperAdmin),
					"updated_at": time.Now().UTC(),
				}).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if admin.Password == "" {
			return nil
		}

		hashed, err := password.Hash(admin.Password)
		if err != nil {
			return err
		}
		node, err := snowflake.NewNode(seedNodeID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		user = authdomain.User{
			ID:           node.Generate(),
			ExternalID:   uuid.NewString(),
			Email:        email,
			FullName:     "Super Admin",
			Role:         principal.RoleSuperAdmin,
			PasswordHash: &hashed,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return tx.Create(&user).Error
	})
}
