package entity

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// NickelPrice is one trading day of LME nickel quotes. Date is the unique key;
// re-ingesting the same date overwrites every non-key column.
type NickelPrice struct {
	ID             uint                `gorm:"primaryKey"`
	Date           string              `gorm:"uniqueIndex:idx_nickel_prices_date;not null"`
	CashSettlement decimal.NullDecimal `gorm:"type:numeric(14,2)"`
	ThreeMonth     decimal.NullDecimal `gorm:"type:numeric(14,2)"`
	Stock          sql.NullInt64       `gorm:"type:bigint"`
	CashChange     decimal.NullDecimal `gorm:"type:numeric(14,2)"`
	CashChangePct  decimal.NullDecimal `gorm:"type:numeric(10,2)"`
	CreatedAt      time.Time           `gorm:"autoCreateTime"`
	UpdatedAt      time.Time           `gorm:"autoUpdateTime"`
}

// TableName overrides the default GORM table name.
func (NickelPrice) TableName() string {
	return "nickel_prices"
}
