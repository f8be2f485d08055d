//go:build integration

// Package integration runs the storefront against a real PostgreSQL started with testcontainers.
// Run with: go test -tags integration ./tests/integration/...
package integration

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sevenext/backend/internal/infrastructure/migration"
	"github.com/sevenext/backend/migrations"
)

var (
	sharedContainer    *tcpostgres.PostgresContainer
	sharedContainerMu  sync.Mutex
	sharedContainerDSN string
)

// TestDB is a migrated database for one test
type TestDB struct {
	DB    *gorm.DB
	SqlDB *sql.DB
	DSN   string
	t     *testing.T
}

// NewTestDB connects to the package-wide container, starting and migrating it on first use,
// and truncates every table so each test starts empty.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	sharedContainerMu.Lock()
	if sharedContainer == nil {
		ctx := context.Background()
		container, err := tcpostgres.Run(ctx,
			"postgres:16-alpine",
			tcpostgres.WithDatabase("sevenext_test"),
			tcpostgres.WithUsername("postgres"),
			tcpostgres.WithPassword("postgres"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second)),
		)
		if err != nil {
			sharedContainerMu.Unlock()
			require.NoError(t, err, "Failed to start PostgreSQL container")
		}
		dsn, err := container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			sharedContainerMu.Unlock()
			require.NoError(t, err, "Failed to get connection string")
		}

		_, sqlDB := connectToDatabase(t, dsn)
		runMigrations(t, sqlDB)
		_ = sqlDB.Close()

		sharedContainer = container
		sharedContainerDSN = dsn
	}
	dsn := sharedContainerDSN
	sharedContainerMu.Unlock()

	db, sqlDB := connectToDatabase(t, dsn)
	testDB := &TestDB{DB: db, SqlDB: sqlDB, DSN: dsn, t: t}
	testDB.CleanTables()

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return testDB
}

// CleanTables truncates every application table
func (tdb *TestDB) CleanTables() {
	tdb.t.Helper()

	var tables []string
	err := tdb.DB.Raw(`
		SELECT tablename FROM pg_tables
		WHERE schemaname = 'public'
		AND tablename != 'schema_migrations'
	`).Scan(&tables).Error
	require.NoError(tdb.t, err, "Failed to list tables")

	for _, table := range tables {
		require.NoError(tdb.t, tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error)
	}
}

func connectToDatabase(t *testing.T, dsn string) (*gorm.DB, *sql.DB) {
	t.Helper()

	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}
	if os.Getenv("TEST_DB_DEBUG") != "" {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(gormpostgres.Open(dsn), gormConfig)
	require.NoError(t, err, "Failed to connect to database")

	sqlDB, err := db.DB()
	require.NoError(t, err, "Failed to get underlying SQL DB")
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return db, sqlDB
}

func runMigrations(t *testing.T, sqlDB *sql.DB) {
	t.Helper()

	m, err := migration.New(sqlDB, migrations.FS, zap.NewNop())
	require.NoError(t, err, "Failed to create migrator")
	require.NoError(t, m.Up(), "Failed to run migrations")
}

// CleanupSharedContainer terminates the shared container; call it from TestMain
func CleanupSharedContainer() {
	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()

	if sharedContainer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = sharedContainer.Terminate(ctx)
		sharedContainer = nil
		sharedContainerDSN = ""
	}
}

// ProductSeed is a product row for SeedProduct
type ProductSeed struct {
	Name        string
	Category    string
	Description string
	Status      string
	B2CPrice    string
	B2BPrice    string
	// B2COffer, when set, is an active consumer offer price with no date window
	B2COffer  string
	CreatedAt time.Time
}

// SeedProduct inserts a product and returns its id
func (tdb *TestDB) SeedProduct(p ProductSeed) uuid.UUID {
	tdb.t.Helper()

	id := uuid.New()
	if p.Status == "" {
		p.Status = "Published"
	}
	if p.B2BPrice == "" {
		p.B2BPrice = p.B2CPrice
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	activeOffer, offerPrice := false, "0"
	if p.B2COffer != "" {
		activeOffer, offerPrice = true, p.B2COffer
	}

	err := tdb.DB.Exec(`
		INSERT INTO products (id, name, category, description, status, stock,
			b2c_price, b2c_active_offer, b2c_offer_price, b2b_price, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 10, ?, ?, ?, ?, ?, ?)
	`, id, p.Name, p.Category, p.Description, p.Status,
		p.B2CPrice, activeOffer, offerPrice, p.B2BPrice, p.CreatedAt, p.CreatedAt).Error
	require.NoError(tdb.t, err, "Failed to seed product")
	return id
}

// SeedCoupon inserts an active coupon
func (tdb *TestDB) SeedCoupon(code, discountType, value, minOrder, usage string) {
	tdb.t.Helper()

	err := tdb.DB.Exec(`
		INSERT INTO coupons (id, code, status, discount_type, discount_value, min_order_value, usage_count)
		VALUES (?, ?, 'Active', ?, ?, ?, ?)
	`, uuid.New(), code, discountType, value, minOrder, usage).Error
	require.NoError(tdb.t, err, "Failed to seed coupon")
}

// CouponUsage reads a coupon's stored usage counter
func (tdb *TestDB) CouponUsage(code string) string {
	tdb.t.Helper()

	var usage string
	require.NoError(tdb.t, tdb.DB.Raw(`SELECT usage_count FROM coupons WHERE code = ?`, code).Scan(&usage).Error)
	return usage
}

// SeedContent inserts a CMS entry
func (tdb *TestDB) SeedContent(slug, title, contentType string, published bool, sortOrder int) {
	tdb.t.Helper()

	err := tdb.DB.Exec(`
		INSERT INTO cms_contents (id, slug, title, body, type, published, sort_order)
		VALUES (?, ?, ?, 'body', ?, ?, ?)
	`, uuid.New(), slug, title, contentType, published, sortOrder).Error
	require.NoError(tdb.t, err, "Failed to seed content")
}

// ApproveB2B marks the user's business application approved
func (tdb *TestDB) ApproveB2B(userID uuid.UUID) {
	tdb.t.Helper()

	res := tdb.DB.Exec(`UPDATE b2b_applications SET status = 'approved' WHERE user_id = ?`, userID)
	require.NoError(tdb.t, res.Error)
	require.Equal(tdb.t, int64(1), res.RowsAffected)
}
