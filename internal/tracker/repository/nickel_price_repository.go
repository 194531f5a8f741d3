package repository

import (
	"context"
	"database/sql"
	"errors"

	"nickel-price-tracker/internal/entity"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PriceStats aggregates the stored cash settlement series.
type PriceStats struct {
	MinPrice     decimal.NullDecimal `gorm:"column:min_price"`
	MaxPrice     decimal.NullDecimal `gorm:"column:max_price"`
	AvgPrice     decimal.NullDecimal `gorm:"column:avg_price"`
	FirstDate    sql.NullString      `gorm:"column:first_date"`
	LastDate     sql.NullString      `gorm:"column:last_date"`
	TotalRecords int64               `gorm:"column:total_records"`
}

// NickelPriceRepository defines the interface for nickel price data operations.
type NickelPriceRepository interface {
	Upsert(ctx context.Context, prices []entity.NickelPrice) error
	List(ctx context.Context, page, perPage int) ([]entity.NickelPrice, error)
	Count(ctx context.Context) (int64, error)
	Latest(ctx context.Context) (*entity.NickelPrice, error)
	Stats(ctx context.Context) (*PriceStats, error)
}

// NewNickelPriceRepository creates a new GORM-based nickel price repository.
func NewNickelPriceRepository(db *gorm.DB) NickelPriceRepository {
	return &nickelPriceRepository{db: db}
}

type nickelPriceRepository struct {
	db *gorm.DB
}

// Upsert writes the batch in a single transaction. Rows that already exist for
// a date get every non-key column overwritten, so a later batch with more
// surrounding context wins, including recomputed change fields.
func (r *nickelPriceRepository) Upsert(ctx context.Context, prices []entity.NickelPrice) error {
	if len(prices) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"cash_settlement", "three_month", "stock",
				"cash_change", "cash_change_pct", "updated_at",
			}),
		}).Create(&prices).Error
	})
}

// List returns one page of records, newest date first.
func (r *nickelPriceRepository) List(ctx context.Context, page, perPage int) ([]entity.NickelPrice, error) {
	var prices []entity.NickelPrice
	offset := (page - 1) * perPage
	err := r.db.WithContext(ctx).
		Order("date DESC").
		Limit(perPage).
		Offset(offset).
		Find(&prices).Error
	if err != nil {
		return nil, err
	}
	return prices, nil
}

// Count returns the total number of stored records.
func (r *nickelPriceRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.NickelPrice{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Latest returns the record with the greatest date, or nil when the store is empty.
func (r *nickelPriceRepository) Latest(ctx context.Context) (*entity.NickelPrice, error) {
	var price entity.NickelPrice
	err := r.db.WithContext(ctx).Order("date DESC").First(&price).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &price, nil
}

// Stats aggregates over rows with a non-null cash settlement.
func (r *nickelPriceRepository) Stats(ctx context.Context) (*PriceStats, error) {
	var stats PriceStats
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			MIN(cash_settlement) AS min_price,
			MAX(cash_settlement) AS max_price,
			ROUND(AVG(cash_settlement), 2) AS avg_price,
			MIN(date) AS first_date,
			MAX(date) AS last_date,
			COUNT(*) AS total_records
		FROM nickel_prices
		WHERE cash_settlement IS NOT NULL
	`).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
