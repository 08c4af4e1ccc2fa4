package db

import (
	"fmt"
	"strings"

	"github.com/shinyyama/revenue-dashboard/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func BuildDSN(cfg *config.Config) string {
	addr := cfg.DBHost

	// Prefer Cloud SQL unix socket when INSTANCE_CONNECTION_NAME is provided.
	if cfg.InstanceConnectionName != "" {
		addr = fmt.Sprintf("unix(/cloudsql/%s)", cfg.InstanceConnectionName)
	} else if strings.HasPrefix(cfg.DBHost, "tcp(") || strings.HasPrefix(cfg.DBHost, "unix(") {
		// already wrapped
	} else if strings.HasPrefix(cfg.DBHost, "/") {
		addr = fmt.Sprintf("unix(%s)", cfg.DBHost)
	} else {
		addr = fmt.Sprintf("tcp(%s:%s)", cfg.DBHost, cfg.DBPort)
	}

	// DATE columns are read and written in UTC so a calendar date never shifts.
	return fmt.Sprintf("%s:%s@%s/%s?charset=utf8mb4&parseTime=True&loc=UTC", cfg.DBUser, cfg.DBPassword, addr, cfg.DBName)
}

// MySQL returns a dialector factory for the configured database.
func MySQL(cfg *config.Config) func() gorm.Dialector {
	dsn := BuildDSN(cfg)
	return func() gorm.Dialector {
		return mysql.Open(dsn)
	}
}
