package postgres

import (
	"database/sql"
	"fmt"

	"github.com/relex/etl-sink-agent/base"
	"github.com/relex/etl-sink-agent/base/bconfig"
	"github.com/relex/gotils/logger"
	"github.com/relex/gotils/promexporter/promreg"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Config defines the configuration for the PostgreSQL batch writer
type Config struct {
	bconfig.Header `yaml:",inline"`
	Connection     string `yaml:"connection"`  // lib/pq connection string or postgres:// URL, may contain environment variables at caller's discretion
	TableSchema    string `yaml:"tableSchema"` // target schema name, default "public"
	TablePrefix    string `yaml:"tablePrefix"` // prefix added to every stream's table name
}

// NewWriter opens the database connection and creates a PostgreSQL batch writer
func (cfg *Config) NewWriter(parentLogger logger.Logger, metricCreator promreg.MetricCreator) (base.BatchWriter, error) {
	db, err := sql.Open("postgres", cfg.Connection)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return newWriter(parentLogger, db, cfg.tableSchemaOrDefault(), cfg.TablePrefix, metricCreator), nil
}

// VerifyConfig checks configuration
func (cfg *Config) VerifyConfig() error {
	if len(cfg.Connection) == 0 {
		return fmt.Errorf(".connection is unspecified")
	}
	return nil
}

func (cfg *Config) tableSchemaOrDefault() string {
	if len(cfg.TableSchema) == 0 {
		return "public"
	}
	return cfg.TableSchema
}
