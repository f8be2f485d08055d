package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/sevenext/backend/internal/domain/catalog"
	"github.com/sevenext/backend/internal/domain/cms"
	"github.com/sevenext/backend/internal/domain/identity"
	"github.com/sevenext/backend/internal/domain/pricing"
	"github.com/sevenext/backend/internal/domain/promotion"
	"github.com/sevenext/backend/internal/domain/shared"
	"github.com/sevenext/backend/internal/domain/trade"
)

// newMockGormDB opens GORM on the postgres dialector backed by sqlmock
func newMockGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func TestGormUserRepository_FindByEmail(t *testing.T) {
	t.Run("normalizes the email before lookup", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormUserRepository(db)

		userID := uuid.New()
		rows := sqlmock.NewRows([]string{"id", "email", "full_name", "user_type", "version"}).
			AddRow(userID, "asha@example.com", "Asha", "b2c", 1)

		mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("asha@example.com", 1).
			WillReturnRows(rows)

		user, err := repo.FindByEmail(context.Background(), "  Asha@Example.COM ")

		require.NoError(t, err)
		assert.Equal(t, userID, user.ID)
		assert.Equal(t, pricing.AudienceB2C, user.UserType)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps a missing row to ErrUserNotFound", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormUserRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		user, err := repo.FindByEmail(context.Background(), "ghost@example.com")

		assert.Nil(t, user)
		assert.ErrorIs(t, err, identity.ErrUserNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormUserRepository_Update(t *testing.T) {
	t.Run("bumps the version on success", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormUserRepository(db)

		user := &identity.User{BaseAggregateRoot: shared.NewBaseAggregateRoot(), FullName: "Ravi"}
		mock.ExpectExec(`UPDATE "users" SET .* WHERE .*version = `).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Update(context.Background(), user))
		assert.Equal(t, 2, user.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports a stale version", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormUserRepository(db)

		user := &identity.User{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
		mock.ExpectExec(`UPDATE "users" SET .* WHERE .*version = `).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(context.Background(), user)
		assert.ErrorIs(t, err, errConcurrentUpdate)
		assert.Equal(t, 1, user.Version)
	})
}

func TestGormAddressRepository_Delete(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()
	repo := NewGormAddressRepository(db)

	userID, addressID := uuid.New(), uuid.New()
	mock.ExpectExec(`DELETE FROM "addresses" WHERE id = \$1 AND user_id = \$2`).
		WithArgs(addressID, userID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), userID, addressID)
	assert.ErrorIs(t, err, identity.ErrAddressNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormCouponRepository_FindByCodeForUpdate(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()
	repo := NewGormCouponRepository(db)

	couponID := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "code", "status", "discount_type", "discount_value", "min_order_value", "usage_count"}).
		AddRow(couponID, "SAVE10", "Active", "percentage", "10", "0", "3/100")

	mock.ExpectQuery(`SELECT \* FROM "coupons" WHERE UPPER\(code\) = \$1 ORDER BY .* LIMIT .* FOR UPDATE`).
		WithArgs("SAVE10", 1).
		WillReturnRows(rows)

	coupon, err := repo.FindByCodeForUpdate(context.Background(), " save10 ")

	require.NoError(t, err)
	assert.Equal(t, couponID, coupon.ID)
	assert.True(t, coupon.DiscountValue.Equal(decimal.NewFromInt(10)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormCouponRepository_FindByCode_NotFound(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()
	repo := NewGormCouponRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "coupons" WHERE UPPER\(code\) = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByCode(context.Background(), "NOPE")
	assert.ErrorIs(t, err, promotion.ErrInvalidCoupon)
}

func TestGormReviewRepository_Create_Duplicate(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()
	repo := NewGormReviewRepository(db)

	review, err := catalog.NewReview(uuid.New(), uuid.New(), decimal.NewFromInt(4), "nice")
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO "product_reviews"`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err = repo.Create(context.Background(), review)
	assert.ErrorIs(t, err, catalog.ErrAlreadyReviewed)
}

func TestGormReviewRepository_StatsForProducts(t *testing.T) {
	t.Run("aggregates in one grouped query", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormReviewRepository(db)

		p1, p2 := uuid.New(), uuid.New()
		rows := sqlmock.NewRows([]string{"product_id", "count", "average_rating"}).
			AddRow(p1.String(), 3, "4.3333333333")

		mock.ExpectQuery(`SELECT product_id, COUNT\(\*\) AS count, COALESCE\(AVG\(rating\), 0\) AS average_rating FROM "product_reviews" WHERE product_id IN \(\$1,\$2\) GROUP BY .*product_id`).
			WithArgs(p1, p2).
			WillReturnRows(rows)

		stats, err := repo.StatsForProducts(context.Background(), []uuid.UUID{p1, p2, p1})

		require.NoError(t, err)
		require.Len(t, stats, 1)
		assert.Equal(t, int64(3), stats[p1].Count)
		assert.Equal(t, "4.33", stats[p1].Rounded().AverageRating.StringFixed(2))
		_, ok := stats[p2]
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("skips the query without ids", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormReviewRepository(db)

		stats, err := repo.StatsForProducts(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, stats)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormProductRepository_FindAll(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()
	repo := NewGormProductRepository(db)

	minPrice := decimal.NewFromInt(100)
	filter := catalog.ProductFilter{
		Category: "All",
		Audience: pricing.AudienceB2B,
		MinPrice: &minPrice,
	}

	mock.ExpectQuery(`SELECT count\(\*\) FROM "products" WHERE status = \$1 AND b2b_price >= \$2`).
		WithArgs("Published", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT \* FROM "products" WHERE status = \$1 AND b2b_price >= \$2 ORDER BY created_at DESC LIMIT \$3`).
		WithArgs("Published", sqlmock.AnyArg(), 50).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "status"}).AddRow(uuid.New(), "Kurta", "Published"))

	products, total, err := repo.FindAll(context.Background(), filter)

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, products, 1)
	assert.Equal(t, "Kurta", products[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormProductRepository_FindAll_CategoryAndSort(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()
	repo := NewGormProductRepository(db)

	filter := catalog.ProductFilter{Category: "Shirts", SortBy: "price", SortOrder: "asc"}

	mock.ExpectQuery(`SELECT count\(\*\) FROM "products" WHERE status = \$1 AND LOWER\(category\) = \$2`).
		WithArgs("Published", "shirts").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT \* FROM "products" WHERE .* ORDER BY b2c_price ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	products, total, err := repo.FindAll(context.Background(), filter)

	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, products)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormProductRepository_Search(t *testing.T) {
	t.Run("ranks name matches before category matches", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormProductRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "products" WHERE status = \$1 AND \(LOWER\(name\) LIKE \$2 OR LOWER\(category\) LIKE \$3 OR LOWER\(description\) LIKE \$4\) ORDER BY CASE WHEN LOWER\(name\) LIKE \$5 THEN 0 WHEN LOWER\(category\) LIKE \$6 THEN 1 ELSE 2 END, created_at DESC LIMIT \$7`).
			WithArgs("Published", "%shirt%", "%shirt%", "%shirt%", "%shirt%", "%shirt%", 20).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(uuid.New(), "Linen Shirt"))

		products, err := repo.Search(context.Background(), " Shirt ", 0)

		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("blank query returns nothing without querying", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormProductRepository(db)

		products, err := repo.Search(context.Background(), "   ", 10)
		require.NoError(t, err)
		assert.Empty(t, products)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormProductRepository_FindOnSale(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()
	repo := NewGormProductRepository(db)

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT \* FROM "products" WHERE status = \$1 AND b2b_active_offer = \$2 AND b2b_offer_price > 0 .* ORDER BY b2b_price - b2b_offer_price DESC,created_at DESC LIMIT \$5`).
		WithArgs("Published", true, now, now, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindOnSale(context.Background(), pricing.AudienceB2B, now, 0)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOrderRepository_FindByID_NotFound(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()
	repo := NewGormOrderRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE id = \$1 ORDER BY .* LIMIT .*`).
		WithArgs("ORD-1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByID(context.Background(), "ORD-1")
	assert.ErrorIs(t, err, trade.ErrOrderNotFound)
}

func TestGormOrderRepository_FindByCustomer(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()
	repo := NewGormOrderRepository(db)

	customerID := uuid.New()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "orders" WHERE customer_id = \$1`).
		WithArgs(customerID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE customer_id = \$1 ORDER BY created_at DESC LIMIT \$2 OFFSET \$3`).
		WithArgs(customerID, 10, 20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer_id", "items"}).
			AddRow("ORD-9", customerID, `[{"name":"Kurta","quantity":2}]`))

	orders, total, err := repo.FindByCustomer(context.Background(), customerID, shared.Page{Limit: 10, Offset: 20})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, orders, 1)
	require.Len(t, orders[0].Items, 1)
	assert.Equal(t, 2, orders[0].Items[0].Quantity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormReturnRequestRepository_HasOpenForOrder(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()
	repo := NewGormReturnRequestRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "return_requests" WHERE order_id = \$1 AND status IN \(\$2,\$3\)`).
		WithArgs("ORD-1", "REQUESTED", "APPROVED").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	open, err := repo.HasOpenForOrder(context.Background(), "ORD-1")
	require.NoError(t, err)
	assert.True(t, open)
}

func TestGormContentRepository_FindPublishedBySlug(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()
	repo := NewGormContentRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "cms_contents" WHERE slug = \$1 AND published = \$2`).
		WithArgs("about-us", true, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindPublishedBySlug(context.Background(), "about-us")
	assert.ErrorIs(t, err, cms.ErrContentNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
