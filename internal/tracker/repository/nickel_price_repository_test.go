package repository

import (
	"context"
	"database/sql"
	"testing"

	"nickel-price-tracker/internal/entity"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleBatch returns a fresh batch each call; GORM assigns IDs on insert, so
// reusing one slice across upserts would not match what the pipeline does.
func sampleBatch() []entity.NickelPrice {
	return []entity.NickelPrice{
		{
			Date:           "2026-02-10",
			CashSettlement: validDecimal("16100.00"),
			ThreeMonth:     validDecimal("16200.00"),
			Stock:          sql.NullInt64{Int64: 1240, Valid: true},
		},
		{
			Date:           "2026-02-11",
			CashSettlement: validDecimal("16200.00"),
			ThreeMonth:     validDecimal("16300.00"),
			Stock:          sql.NullInt64{Int64: 1245, Valid: true},
			CashChange:     validDecimal("100.00"),
			CashChangePct:  validDecimal("0.62"),
		},
		{
			Date:           "2026-02-12",
			CashSettlement: decimal.NullDecimal{},
			ThreeMonth:     validDecimal("16400.00"),
			Stock:          sql.NullInt64{},
		},
	}
}

func TestNickelPriceRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	repo := NewNickelPriceRepository(testDB.DB)
	ctx := context.Background()

	t.Run("Upsert is idempotent", func(t *testing.T) {
		testDB.Truncate(t)

		require.NoError(t, repo.Upsert(ctx, sampleBatch()))
		require.NoError(t, repo.Upsert(ctx, sampleBatch()))

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count, "re-ingesting an identical batch must not duplicate")

		prices, err := repo.List(ctx, 1, 10)
		require.NoError(t, err)
		require.Len(t, prices, 3)
		require.True(t, prices[1].CashChange.Valid)
		assert.True(t, prices[1].CashChange.Decimal.Equal(decimal.RequireFromString("100.00")))
	})

	t.Run("Upsert overwrites non-key fields", func(t *testing.T) {
		testDB.Truncate(t)
		require.NoError(t, repo.Upsert(ctx, sampleBatch()))

		// A later run with more surrounding context recomputes the derived
		// fields; the stored values must be replaced, not merged.
		require.NoError(t, repo.Upsert(ctx, []entity.NickelPrice{
			{
				Date:           "2026-02-11",
				CashSettlement: validDecimal("16250.00"),
				ThreeMonth:     validDecimal("16350.00"),
				Stock:          sql.NullInt64{Int64: 1300, Valid: true},
				CashChange:     validDecimal("150.00"),
				CashChangePct:  validDecimal("0.93"),
			},
		}))

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)

		prices, err := repo.List(ctx, 1, 10)
		require.NoError(t, err)
		require.Len(t, prices, 3)
		updated := prices[1]
		assert.Equal(t, "2026-02-11", updated.Date)
		assert.True(t, updated.CashSettlement.Decimal.Equal(decimal.RequireFromString("16250.00")))
		assert.True(t, updated.CashChange.Decimal.Equal(decimal.RequireFromString("150.00")))
		assert.True(t, updated.CashChangePct.Decimal.Equal(decimal.RequireFromString("0.93")))
		assert.Equal(t, int64(1300), updated.Stock.Int64)
	})

	t.Run("List returns newest date first", func(t *testing.T) {
		testDB.Truncate(t)
		require.NoError(t, repo.Upsert(ctx, sampleBatch()))

		prices, err := repo.List(ctx, 1, 2)
		require.NoError(t, err)
		require.Len(t, prices, 2)
		assert.Equal(t, "2026-02-12", prices[0].Date)
		assert.Equal(t, "2026-02-11", prices[1].Date)

		prices, err = repo.List(ctx, 2, 2)
		require.NoError(t, err)
		require.Len(t, prices, 1)
		assert.Equal(t, "2026-02-10", prices[0].Date)
	})

	t.Run("Latest returns greatest date", func(t *testing.T) {
		testDB.Truncate(t)
		require.NoError(t, repo.Upsert(ctx, sampleBatch()))

		latest, err := repo.Latest(ctx)
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, "2026-02-12", latest.Date)
	})

	t.Run("Latest on empty store returns nil", func(t *testing.T) {
		testDB.Truncate(t)

		latest, err := repo.Latest(ctx)
		require.NoError(t, err)
		assert.Nil(t, latest)
	})

	t.Run("Stats aggregates non-null cash settlements", func(t *testing.T) {
		testDB.Truncate(t)
		require.NoError(t, repo.Upsert(ctx, sampleBatch()))

		stats, err := repo.Stats(ctx)
		require.NoError(t, err)
		require.True(t, stats.MinPrice.Valid)
		assert.True(t, stats.MinPrice.Decimal.Equal(decimal.RequireFromString("16100.00")))
		assert.True(t, stats.MaxPrice.Decimal.Equal(decimal.RequireFromString("16200.00")))
		assert.True(t, stats.AvgPrice.Decimal.Equal(decimal.RequireFromString("16150.00")))
		assert.Equal(t, "2026-02-10", stats.FirstDate.String)
		assert.Equal(t, "2026-02-11", stats.LastDate.String, "the null-cash row is outside the aggregate")
		assert.Equal(t, int64(2), stats.TotalRecords)
	})
}
