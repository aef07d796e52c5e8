package telemetry

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig configures database spans
type DBTracingConfig struct {
	Enabled bool
	// LogFullSQL keeps bind variables in span statements
	LogFullSQL      bool
	SlowQueryThresh time.Duration
	DBName          string
	// TracerProvider overrides the global provider
	TracerProvider trace.TracerProvider
}

// DefaultDBTracingConfig returns the production defaults: no bind variables
// and a 200ms slow query threshold
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		SlowQueryThresh: 200 * time.Millisecond,
		DBName:          "stockcore",
	}
}

type queryStartKey struct{}

// RegisterDBTracing installs otelgorm on db plus callbacks that tag row
// lock statements and slow queries on the current span
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		logger.Debug("Database tracing disabled")
		return nil
	}
	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBName)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(cfg.TracerProvider))
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	if err := registerTimingCallbacks(db, cfg.SlowQueryThresh); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
	)
	return nil
}

// otelgorm names its hooks "otel:before:<op>" and "otel:after:<op>", and calls
// the query op "select"
const (
	otelAfterCreate = "otel:after:create"
	otelAfterQuery  = "otel:after:select"
	otelAfterUpdate = "otel:after:update"
	otelAfterDelete = "otel:after:delete"
	otelAfterRow    = "otel:after:row"
	otelAfterRaw    = "otel:after:raw"
)

// registerTimingCallbacks wraps each GORM operation: the before callback
// stamps the start time and the after callback annotates the span before
// otelgorm ends it
func registerTimingCallbacks(db *gorm.DB, slow time.Duration) error {
	after := spanAnnotator(slow)
	cb := db.Callback()
	return errors.Join(
		cb.Create().Before("gorm:create").Register("stock_timing:before_create", markStart),
		cb.Query().Before("gorm:query").Register("stock_timing:before_query", markStart),
		cb.Update().Before("gorm:update").Register("stock_timing:before_update", markStart),
		cb.Delete().Before("gorm:delete").Register("stock_timing:before_delete", markStart),
		cb.Row().Before("gorm:row").Register("stock_timing:before_row", markStart),
		cb.Raw().Before("gorm:raw").Register("stock_timing:before_raw", markStart),
		cb.Create().After("gorm:create").Before(otelAfterCreate).Register("stock_timing:after_create", after),
		cb.Query().After("gorm:query").Before(otelAfterQuery).Register("stock_timing:after_query", after),
		cb.Update().After("gorm:update").Before(otelAfterUpdate).Register("stock_timing:after_update", after),
		cb.Delete().After("gorm:delete").Before(otelAfterDelete).Register("stock_timing:after_delete", after),
		cb.Row().After("gorm:row").Before(otelAfterRow).Register("stock_timing:after_row", after),
		cb.Raw().After("gorm:raw").Before(otelAfterRaw).Register("stock_timing:after_raw", after),
	)
}

func markStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

// spanAnnotator tags the span with the table, affected rows, whether the
// statement took row locks and whether it was slow. Missing rows are not
// span errors.
func spanAnnotator(slow time.Duration) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			return
		}
		span := trace.SpanFromContext(ctx)
		if !span.IsRecording() {
			return
		}
		if db.Statement.Table != "" {
			span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
		}
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
		if strings.Contains(db.Statement.SQL.String(), "FOR UPDATE") {
			span.SetAttributes(attribute.Bool("db.row_lock", true))
		}
		if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, db.Error.Error())
			span.RecordError(db.Error)
		}
		start, ok := ctx.Value(queryStartKey{}).(time.Time)
		if !ok {
			return
		}
		if elapsed := time.Since(start); elapsed > slow {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
		}
	}
}
