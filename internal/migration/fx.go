package migration

import (
	"github.com/smallbiznis/clearwire/internal/config"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// Module applies embedded migrations at startup. Schema migrations are
// written for postgres; other dialects are expected to be managed
// externally (tests use AutoMigrate).
var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			return nil
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}

		return RunMigrations(sqlDB)
	}),
)
