package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"peopledesk/internal/tenant"
	"peopledesk/pkg/apperr"
	"peopledesk/pkg/config"
)

// DB is the central database instance
var DB *gorm.DB

// InitDB initializes the central database connection with configuration
func InitDB(dbConfig *config.DBConfig) (*gorm.DB, error) {
	var err error

	// Configure Postgres options
	pgConfig := postgres.Config{
		DSN:                  dbConfig.GetDSN(),
		PreferSimpleProtocol: true, // Disables implicit prepared statement usage
	}

	// Open connection
	DB, err = gorm.Open(postgres.New(pgConfig), &gorm.Config{
		Logger: logger.Default.LogMode(dbConfig.LogLevel),
	})
	if err != nil {
		zap.L().Error("Failed to connect to central database", zap.Error(err))
		return nil, err
	}

	// Get generic database object SQL
	sqlDB, err := DB.DB()
	if err != nil {
		zap.L().Error("Failed to get database object", zap.Error(err))
		return nil, err
	}

	// Set connection pool settings from config
	sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConns)
	sqlDB.SetMaxOpenConns(dbConfig.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)

	return DB, nil
}

// MigrateModels runs migrations for the provided models
func MigrateModels(models ...interface{}) error {
	if DB == nil {
		return fmt.Errorf("%w: central database is not initialized", apperr.ErrNotConnected)
	}

	if err := DB.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	return nil
}

// GetDB returns the central database instance
func GetDB() *gorm.DB {
	return DB
}

// TenantOpener returns the production tenant.OpenFunc: each tenant gets its
// own PostgreSQL database named <prefix><tenantID>, created on first access.
// The tenant id has already passed tenant.ValidID before this runs, so it is
// safe inside an identifier.
func TenantOpener(cfg *config.Config) tenant.OpenFunc {
	return func(tenantID string) (gorm.Dialector, error) {
		dbName := cfg.Tenant.DBPrefix + tenantID
		if err := ensureDatabase(dbName); err != nil {
			return nil, err
		}
		return postgres.New(postgres.Config{
			DSN:                  cfg.DB.TenantDSN(dbName),
			PreferSimpleProtocol: true,
		}), nil
	}
}

// ensureDatabase creates the named database if it does not exist yet.
// CREATE DATABASE cannot be parameterized, so the name is interpolated after
// validation. A create that loses the race to another process falls back to
// an existence re-check.
func ensureDatabase(name string) error {
	if DB == nil {
		return fmt.Errorf("%w: central database is not initialized", apperr.ErrNotConnected)
	}

	var count int64
	res := DB.Raw("SELECT COUNT(*) FROM pg_database WHERE datname = ?", name).Scan(&count)
	if res.Error != nil {
		return fmt.Errorf("check tenant database %s: %w", name, res.Error)
	}
	if count > 0 {
		return nil
	}

	if err := DB.Exec(fmt.Sprintf(`CREATE DATABASE "%s"`, name)).Error; err != nil {
		res = DB.Raw("SELECT COUNT(*) FROM pg_database WHERE datname = ?", name).Scan(&count)
		if res.Error == nil && count > 0 {
			return nil
		}
		return fmt.Errorf("create tenant database %s: %w", name, err)
	}

	zap.L().Info("tenant database created", zap.String("db_name", name))
	return nil
}
