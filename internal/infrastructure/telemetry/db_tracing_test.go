package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/stockcore/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Discard,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.StockItemModel{}))
	return db
}

func insertItem(t *testing.T, db *gorm.DB, code string, total, reserved int64) {
	t.Helper()
	now := time.Now()
	m := &models.StockItemModel{
		Kind:             "PRODUCT",
		Code:             code,
		Name:             code,
		Unit:             "pcs",
		TotalQuantity:    decimal.NewFromInt(total),
		ReservedQuantity: decimal.NewFromInt(reserved),
	}
	m.ID = uuid.New()
	m.CreatedAt, m.UpdatedAt, m.Version = now, now, 1
	require.NoError(t, db.Create(m).Error)
}

func attr(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestDefaultDBTracingConfig(t *testing.T) {
	cfg := DefaultDBTracingConfig()

	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.LogFullSQL)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThresh)
}

func TestRegisterDBTracing_Disabled(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, RegisterDBTracing(db, DefaultDBTracingConfig(), zap.NewNop()))

	assert.Nil(t, db.Callback().Query().Get("stock_timing:after_query"))
}

func TestRegisterDBTracing_AnnotatesSpans(t *testing.T) {
	db := newTestDB(t)
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	cfg.SlowQueryThresh = 0
	cfg.TracerProvider = tp
	require.NoError(t, RegisterDBTracing(db, cfg, zap.NewNop()))

	ctx, parent := tp.Tracer("test").Start(context.Background(), "stock.reserve")
	insertItem(t, db.WithContext(ctx), "TRACED-1", 10, 0)
	var count int64
	require.NoError(t, db.WithContext(ctx).Model(&models.StockItemModel{}).Count(&count).Error)
	parent.End()

	byName := map[string]sdktrace.ReadOnlySpan{}
	for _, span := range recorder.Ended() {
		byName[span.Name()] = span
	}
	for _, name := range []string{"gorm.Create", "gorm.Query"} {
		span, ok := byName[name]
		require.True(t, ok, "missing span %s", name)
		table, ok := attr(span.Attributes(), "db.sql.table")
		require.True(t, ok, name)
		assert.Equal(t, "stock_items", table.AsString(), name)
		slow, ok := attr(span.Attributes(), "db.slow_query")
		assert.True(t, ok && slow.AsBool(), "%s: zero threshold marks every statement slow", name)
		_, ok = attr(span.Attributes(), "db.query_duration_ms")
		assert.True(t, ok, name)
	}
}

func TestRegisterDBTracing_TagsRowLocks(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB, DriverName: "postgres"}), &gorm.Config{
		Logger:                 logger.Discard,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	cfg.TracerProvider = tp
	require.NoError(t, RegisterDBTracing(db, cfg, zap.NewNop()))

	id := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "stock_items" WHERE id = \$1 .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code"}).AddRow(id.String(), "LOCKED-1"))

	var m models.StockItemModel
	require.NoError(t, db.WithContext(context.Background()).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&m).Error)
	require.NoError(t, mock.ExpectationsWereMet())

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	lock, ok := attr(spans[0].Attributes(), "db.row_lock")
	assert.True(t, ok && lock.AsBool())
	_, ok = attr(spans[0].Attributes(), "db.slow_query")
	assert.False(t, ok, "fast statements are not slow")
}

func TestRegisterDBTracing_NotFoundIsNotAnError(t *testing.T) {
	db := newTestDB(t)
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	cfg.TracerProvider = tp
	require.NoError(t, RegisterDBTracing(db, cfg, zap.NewNop()))

	var m models.StockItemModel
	err := db.WithContext(context.Background()).Where("code = ?", "MISSING").First(&m).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	for _, span := range recorder.Ended() {
		for _, ev := range span.Events() {
			assert.NotEqual(t, "exception", ev.Name)
		}
	}
}
