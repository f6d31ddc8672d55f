// Package postgres provides the PostgreSQL batch writer: one table per stream, bulk loads
// through COPY within a transaction
package postgres

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/relex/etl-sink-agent/base"
	"github.com/relex/etl-sink-agent/defs"
	"github.com/relex/gotils/logger"
	"github.com/relex/gotils/promexporter/promext"
	"github.com/relex/gotils/promexporter/promreg"
)

type writer struct {
	logger      logger.Logger
	db          *sql.DB
	tableSchema string
	tablePrefix string
	metrics     writerMetrics
}

type writerMetrics struct {
	createdTablesTotal promext.RWCounter
	writtenRowsTotal   promext.RWCounter
	writeErrorsTotal   promext.RWCounter
}

func newWriter(parentLogger logger.Logger, db *sql.DB, tableSchema string, tablePrefix string,
	metricCreator promreg.MetricCreator) base.BatchWriter {

	outputMetricCreator := metricCreator.AddOrGetPrefix("output_", []string{defs.LabelOutput}, []string{"postgres"})
	return &writer{
		logger:      parentLogger.WithField(defs.LabelComponent, "PostgresWriter"),
		db:          db,
		tableSchema: tableSchema,
		tablePrefix: tablePrefix,
		metrics: writerMetrics{
			createdTablesTotal: outputMetricCreator.AddOrGetCounter("created_tables_total",
				"Numbers of CREATE TABLE statements issued for declared streams", nil, nil),
			writtenRowsTotal: outputMetricCreator.AddOrGetCounter("written_rows_total",
				"Numbers of rows committed by batch writes", nil, nil),
			writeErrorsTotal: outputMetricCreator.AddOrGetCounter("write_errors_total",
				"Numbers of failed batch writes", nil, nil),
		},
	}
}

// CreateStream creates the stream's backing table if it doesn't exist yet
//
// Schema migration is out of scope: a redeclaration with new properties doesn't alter an
// existing table
func (w *writer) CreateStream(schema base.StreamSchema) error {
	ddl := w.createTableDDL(schema)
	if _, err := w.db.Exec(ddl); err != nil {
		return fmt.Errorf("failed to create table for stream '%s': %w", schema.Stream, err)
	}
	w.metrics.createdTablesTotal.Inc()
	w.logger.Infof("ensured table for stream: %s", schema.Stream)
	return nil
}

// WriteBatch bulk-loads the records in one transaction via COPY
//
// Either the whole batch commits or the transaction rolls back; there is no retry here
func (w *writer) WriteBatch(schema base.StreamSchema, records []base.Record) error {
	if len(records) == 0 {
		return nil
	}

	columns := schema.SortedPropertyNames()

	tx, err := w.db.Begin()
	if err != nil {
		w.metrics.writeErrorsTotal.Inc()
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(pq.CopyInSchema(w.tableSchema, w.tableName(schema.Stream), columns...))
	if err != nil {
		w.metrics.writeErrorsTotal.Inc()
		return fmt.Errorf("failed to prepare COPY: %w", err)
	}

	args := make([]interface{}, len(columns))
	for _, record := range records {
		for i, column := range columns {
			value, cerr := columnValue(schema.Properties[column], record[column])
			if cerr != nil {
				stmt.Close()
				w.metrics.writeErrorsTotal.Inc()
				return fmt.Errorf("column '%s': %w", column, cerr)
			}
			args[i] = value
		}
		if _, err := stmt.Exec(args...); err != nil {
			stmt.Close()
			w.metrics.writeErrorsTotal.Inc()
			return fmt.Errorf("failed to COPY row: %w", err)
		}
	}

	if _, err := stmt.Exec(); err != nil {
		stmt.Close()
		w.metrics.writeErrorsTotal.Inc()
		return fmt.Errorf("failed to finish COPY: %w", err)
	}
	if err := stmt.Close(); err != nil {
		w.metrics.writeErrorsTotal.Inc()
		return fmt.Errorf("failed to close COPY statement: %w", err)
	}
	if err := tx.Commit(); err != nil {
		w.metrics.writeErrorsTotal.Inc()
		return fmt.Errorf("failed to commit batch: %w", err)
	}

	w.metrics.writtenRowsTotal.Add(uint64(len(records)))
	return nil
}

// Close closes the database connection
func (w *writer) Close() error {
	return w.db.Close()
}

func (w *writer) tableName(stream string) string {
	return w.tablePrefix + stream
}

func (w *writer) createTableDDL(schema base.StreamSchema) string {
	columns := schema.SortedPropertyNames()
	definitions := make([]string, 0, len(columns))
	for _, column := range columns {
		prop := schema.Properties[column]
		definition := pq.QuoteIdentifier(column) + " " + columnType(prop)
		if !prop.Nullable() && len(prop.Types) > 0 {
			definition += " NOT NULL"
		}
		definitions = append(definitions, definition)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s.%s (%s)",
		pq.QuoteIdentifier(w.tableSchema),
		pq.QuoteIdentifier(w.tableName(schema.Stream)),
		strings.Join(definitions, ", "))
}
