package telemetry

import (
	"context"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled         bool          // Enable database tracing
	LogFullSQL      bool          // Include full SQL statements in spans (dev only, security risk in prod)
	SlowQueryThresh time.Duration // Threshold for marking queries as slow (default: 200ms)
	DBSystem        string        // Database system name (default: "postgresql")
}

// DefaultDBTracingConfig returns default configuration for database tracing.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		Enabled:         false,
		LogFullSQL:      false,
		SlowQueryThresh: 200 * time.Millisecond,
		DBSystem:        "postgresql",
	}
}

// DBTracingPlugin wraps the otelgorm plugin with slow query detection.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates a new database tracing plugin with the given configuration.
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	return &DBTracingPlugin{
		config: cfg,
		logger: logger,
	}
}

// RegisterOtelGorm registers the otelgorm plugin with the given GORM DB
// instance, plus callbacks for slow query detection and error marking.
func (p *DBTracingPlugin) RegisterOtelGorm(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{
		otelgorm.WithDBName(p.config.DBSystem),
	}
	if !p.config.LogFullSQL {
		// Don't include query parameters in spans for security
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}

	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	before := func(db *gorm.DB) {
		if db.Statement.Context != nil {
			db.Statement.Context = context.WithValue(db.Statement.Context, queryStartTimeKey, time.Now())
		}
	}
	if err := db.Callback().Create().Before("gorm:create").Register("otel_timing:before_create", before); err != nil {
		return err
	}
	if err := db.Callback().Query().Before("gorm:query").Register("otel_timing:before_query", before); err != nil {
		return err
	}
	if err := db.Callback().Update().Before("gorm:update").Register("otel_timing:before_update", before); err != nil {
		return err
	}
	if err := db.Callback().Delete().Before("gorm:delete").Register("otel_timing:before_delete", before); err != nil {
		return err
	}
	if err := db.Callback().Row().Before("gorm:row").Register("otel_timing:before_row", before); err != nil {
		return err
	}
	if err := db.Callback().Raw().Before("gorm:raw").Register("otel_timing:before_raw", before); err != nil {
		return err
	}

	if err := db.Callback().Create().After("gorm:create").Register("otel_slow_query:create", p.slowQueryCallback); err != nil {
		return err
	}
	if err := db.Callback().Query().After("gorm:query").Register("otel_slow_query:query", p.slowQueryCallback); err != nil {
		return err
	}
	if err := db.Callback().Update().After("gorm:update").Register("otel_slow_query:update", p.slowQueryCallback); err != nil {
		return err
	}
	if err := db.Callback().Delete().After("gorm:delete").Register("otel_slow_query:delete", p.slowQueryCallback); err != nil {
		return err
	}
	if err := db.Callback().Row().After("gorm:row").Register("otel_slow_query:row", p.slowQueryCallback); err != nil {
		return err
	}
	if err := db.Callback().Raw().After("gorm:raw").Register("otel_slow_query:raw", p.slowQueryCallback); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
		zap.String("db_system", p.config.DBSystem),
	)

	return nil
}

// slowQueryCallback runs after each database operation to detect slow
// queries and mark errors on the active span.
func (p *DBTracingPlugin) slowQueryCallback(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}

	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}

	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}

	// ErrRecordNotFound is expected behavior, not a span failure
	if db.Error != nil && db.Error != gorm.ErrRecordNotFound {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	if startTime, ok := ctx.Value(queryStartTimeKey).(time.Time); ok {
		elapsed := time.Since(startTime)
		if elapsed > p.config.SlowQueryThresh {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
			span.AddEvent("slow_query_warning", trace.WithAttributes(
				attribute.Int64("duration_ms", elapsed.Milliseconds()),
				attribute.Int64("threshold_ms", p.config.SlowQueryThresh.Milliseconds()),
			))
		}
	}
}

// queryStartTimeKey is the context key for storing query start time.
type dbContextKey string

const queryStartTimeKey dbContextKey = "otel_query_start_time"
