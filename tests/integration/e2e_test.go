//go:build integration

package integration

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyn062347/Loa-Flow/internal/adapter/repository/postgres"
	"github.com/hyn062347/Loa-Flow/internal/domain"
)

var db *postgres.DB

// TestMain sets up the test environment
func TestMain(m *testing.M) {
	dsn := getDBConnectionString()

	var err error
	db, err = postgres.NewDB(dsn)
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to database: %v", err))
	}
	defer db.Close()

	os.Exit(m.Run())
}

func getDBConnectionString() string {
	if dsn := os.Getenv("DB_CONN_STR"); dsn != "" {
		return dsn
	}
	return "host=localhost port=5432 user=postgres password=postgres dbname=loaflow_test sslmode=disable"
}

func cleanTables(t *testing.T) {
	t.Helper()
	for _, table := range []string{"lostark_market_prices", "lostark_items", "lostark_market_items"} {
		_, err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", table))
		require.NoError(t, err)
	}
}

func testItems() []domain.MarketItem {
	three := int64(3)
	return []domain.MarketItem{
		{
			ID:              1,
			Name:            "Health Potion",
			Grade:           "Rare",
			Icon:            "https://cdn.example/1.png",
			BundleCount:     10,
			YDayAvgPrice:    decimal.RequireFromString("12.34"),
			RecentPrice:     decimal.RequireFromString("11.50"),
			CurrentMinPrice: decimal.RequireFromString("11.00"),
		},
		{
			ID:               2,
			Name:             "Mana Potion",
			Grade:            "Epic",
			Icon:             "https://cdn.example/2.png",
			BundleCount:      1,
			TradeRemainCount: &three,
			YDayAvgPrice:     decimal.RequireFromString("99.99"),
			RecentPrice:      decimal.RequireFromString("100.00"),
			CurrentMinPrice:  decimal.RequireFromString("98.50"),
		},
		{
			ID:              3,
			Name:            "Sword",
			Grade:           "Legendary",
			Icon:            "https://cdn.example/3.png",
			BundleCount:     1,
			YDayAvgPrice:    decimal.RequireFromString("5000.00"),
			RecentPrice:     decimal.RequireFromString("4900.00"),
			CurrentMinPrice: decimal.RequireFromString("4800.00"),
		},
	}
}

func TestSingleTablePolicy_Idempotence(t *testing.T) {
	cleanTables(t)
	ctx := context.Background()

	policy := postgres.NewSnapshotRepository(db)
	require.NoError(t, policy.EnsureSchema(ctx))
	// Concurrent-safe: a second call is a no-op, not an error.
	require.NoError(t, policy.EnsureSchema(ctx))

	items := testItems()

	report, err := policy.Apply(ctx, items, 50000, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Applied)

	// Re-applying the same set must not grow the table.
	report, err = policy.Apply(ctx, items, 50000, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Applied)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM lostark_market_items").Scan(&count))
	assert.Equal(t, 3, count)

	// Null trade_remain_count persists as NULL, not zero.
	var tradeRemain sql.NullInt64
	require.NoError(t, db.QueryRow("SELECT trade_remain_count FROM lostark_market_items WHERE id = 1").Scan(&tradeRemain))
	assert.False(t, tradeRemain.Valid)

	require.NoError(t, db.QueryRow("SELECT trade_remain_count FROM lostark_market_items WHERE id = 2").Scan(&tradeRemain))
	require.True(t, tradeRemain.Valid)
	assert.Equal(t, int64(3), tradeRemain.Int64)
}

func TestSplitPolicy_HistoryGrowsCatalogDoesNot(t *testing.T) {
	cleanTables(t)
	ctx := context.Background()

	policy := postgres.NewCatalogRepository(db)
	require.NoError(t, policy.EnsureSchema(ctx))
	require.NoError(t, policy.EnsureSchema(ctx))

	items := testItems()

	firstRun := time.Now().UTC().Add(-time.Hour)
	_, err := policy.Apply(ctx, items, 50000, firstRun)
	require.NoError(t, err)

	secondRun := time.Now().UTC()
	_, err = policy.Apply(ctx, items, 50000, secondRun)
	require.NoError(t, err)

	var catalogCount, historyCount int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM lostark_items").Scan(&catalogCount))
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM lostark_market_prices").Scan(&historyCount))

	// One catalog row per id; two history rows per id.
	assert.Equal(t, 3, catalogCount)
	assert.Equal(t, 6, historyCount)

	// recorded_at per item is monotonically non-decreasing across runs.
	rows, err := db.Query("SELECT recorded_at FROM lostark_market_prices WHERE item_id = 1 ORDER BY id ASC")
	require.NoError(t, err)
	defer rows.Close()

	var previous time.Time
	for rows.Next() {
		var recordedAt time.Time
		require.NoError(t, rows.Scan(&recordedAt))
		assert.False(t, recordedAt.Before(previous))
		previous = recordedAt
	}
	require.NoError(t, rows.Err())
}

func TestHistoryReads(t *testing.T) {
	cleanTables(t)
	ctx := context.Background()

	policy := postgres.NewCatalogRepository(db)
	require.NoError(t, policy.EnsureSchema(ctx))

	items := testItems()
	_, err := policy.Apply(ctx, items, 50000, time.Now().UTC().Add(-time.Hour))
	require.NoError(t, err)
	_, err = policy.Apply(ctx, items, 50000, time.Now().UTC())
	require.NoError(t, err)

	repo := postgres.NewHistoryRepository(db)

	record, err := repo.GetItem(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Health Potion", record.Name)
	assert.Equal(t, 50000, record.CategoryCode)

	_, err = repo.GetItem(ctx, 999)
	require.ErrorIs(t, err, domain.ErrItemNotFound)

	snapshots, err := repo.LatestSnapshots(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.True(t, snapshots[0].RecentPrice.Equal(decimal.RequireFromString("11.50")))

	snapshots, err = repo.LatestSnapshots(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	// Newest first.
	assert.False(t, snapshots[0].RecordedAt.Before(snapshots[1].RecordedAt))
}

func TestNameSearch_OrderingAndLimit(t *testing.T) {
	cleanTables(t)
	ctx := context.Background()

	policy := postgres.NewCatalogRepository(db)
	require.NoError(t, policy.EnsureSchema(ctx))

	_, err := policy.Apply(ctx, testItems(), 50000, time.Now().UTC())
	require.NoError(t, err)

	repo := postgres.NewSearchRepository(db, policy.CatalogTable())

	matches, err := repo.SearchNames(ctx, "pot", 2)
	require.NoError(t, err)

	require.Len(t, matches, 2)
	assert.Equal(t, "Health Potion", matches[0].Name)
	assert.Equal(t, "Mana Potion", matches[1].Name)

	// Case-insensitive containment.
	matches, err = repo.SearchNames(ctx, "POTION", 10)
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	matches, err = repo.SearchNames(ctx, "sword", 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, int64(3), matches[0].ID)
}
