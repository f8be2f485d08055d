package telemetry

import (
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds database tracing settings
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool // include bind variables in span statements
	SlowQueryThresh time.Duration
	DBSystem        string
}

const startedAtKey = "telemetry:started_at"

// DBTracing registers otelgorm spans plus slow query detection on a gorm.DB
type DBTracing struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracing creates the plugin; a zero SlowQueryThresh means 200ms
func NewDBTracing(cfg DBTracingConfig, logger *zap.Logger) *DBTracing {
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.DBSystem == "" {
		cfg.DBSystem = "postgresql"
	}
	return &DBTracing{config: cfg, logger: logger}
}

// Register installs the callbacks; it is a no-op when tracing is disabled
func (p *DBTracing) Register(db *gorm.DB) error {
	if !p.config.Enabled {
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBSystem)}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	cb := db.Callback()
	if err := cb.Create().Before("gorm:create").Register("telemetry:before_create", p.before); err != nil {
		return err
	}
	if err := cb.Query().Before("gorm:query").Register("telemetry:before_query", p.before); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("telemetry:before_update", p.before); err != nil {
		return err
	}
	if err := cb.Delete().Before("gorm:delete").Register("telemetry:before_delete", p.before); err != nil {
		return err
	}
	if err := cb.Row().Before("gorm:row").Register("telemetry:before_row", p.before); err != nil {
		return err
	}
	if err := cb.Raw().Before("gorm:raw").Register("telemetry:before_raw", p.before); err != nil {
		return err
	}

	if err := cb.Create().After("gorm:create").Register("telemetry:after_create", p.after); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("telemetry:after_query", p.after); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("telemetry:after_update", p.after); err != nil {
		return err
	}
	if err := cb.Delete().After("gorm:delete").Register("telemetry:after_delete", p.after); err != nil {
		return err
	}
	if err := cb.Row().After("gorm:row").Register("telemetry:after_row", p.after); err != nil {
		return err
	}
	if err := cb.Raw().After("gorm:raw").Register("telemetry:after_raw", p.after); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
	)
	return nil
}

func (p *DBTracing) before(db *gorm.DB) {
	db.InstanceSet(startedAtKey, time.Now())
}

func (p *DBTracing) after(db *gorm.DB) {
	v, ok := db.InstanceGet(startedAtKey)
	if !ok {
		return
	}
	startedAt, ok := v.(time.Time)
	if !ok {
		return
	}
	elapsed := time.Since(startedAt)

	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) && db.Statement.Context != nil {
		RecordError(trace.SpanFromContext(db.Statement.Context), db.Error)
	}
	if elapsed < p.config.SlowQueryThresh {
		return
	}

	p.logger.Warn("Slow query",
		zap.String("table", db.Statement.Table),
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", db.Statement.RowsAffected),
	)
	if db.Statement.Context != nil {
		span := trace.SpanFromContext(db.Statement.Context)
		span.AddEvent("slow_query", trace.WithAttributes(
			attribute.String("db.sql.table", db.Statement.Table),
			attribute.Int64("duration_ms", elapsed.Milliseconds()),
		))
	}
}
