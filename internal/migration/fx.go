package migration

import (
	"context"

	"github.com/smallbiznis/royalti/internal/config"
	"github.com/smallbiznis/royalti/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		log = log.Named("migration")
		if !cfg.DBAutoMigrate {
			log.Info("schema migration disabled")
			return nil
		}

		if err := Migrate(conn); err != nil {
			return err
		}
		log.Info("schema up to date", zap.String("dialect", conn.Dialector.Name()))

		return seed.EnsureSuperAdmin(context.Background(), conn, seed.SuperAdmin{
			Email:    cfg.SuperAdminEmail,
			Password: cfg.SuperAdminPassword,
		})
	}),
)
