package migration

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditdomain "github.com/loopworks/therapysync/internal/audit/domain"
	"github.com/loopworks/therapysync/internal/config"
	"github.com/loopworks/therapysync/internal/records/storage"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		if cfg.DBType != "postgres" {
			models := append(storage.AllModels(), &auditdomain.UserEntry{})
			if err := conn.AutoMigrate(models...); err != nil {
				return err
			}
			log.Info("schema auto-migrated", zap.String("db_type", cfg.DBType))
			return nil
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		if err := RunMigrations(sqlDB); err != nil {
			return err
		}
		log.Info("schema migrated")
		return nil
	}),
)
