package dto

import (
	"database/sql"

	"nickel-price-tracker/internal/entity"
	"nickel-price-tracker/internal/tracker/repository"

	"github.com/shopspring/decimal"
)

// PriceRecord is one trading day in API responses. Absent source cells and
// underivable change fields serialize as null, never zero.
type PriceRecord struct {
	ID             uint     `json:"id"`
	Date           string   `json:"date"`
	CashSettlement *float64 `json:"cash_settlement"`
	ThreeMonth     *float64 `json:"three_month"`
	Stock          *int64   `json:"stock"`
	CashChange     *float64 `json:"cash_change"`
	CashChangePct  *float64 `json:"cash_change_pct"`
}

// PriceListResponse is one page of records plus pagination math.
type PriceListResponse struct {
	Data       []PriceRecord `json:"data"`
	Page       int           `json:"page"`
	PerPage    int           `json:"per_page"`
	Total      int64         `json:"total"`
	TotalPages int64         `json:"total_pages"`
}

// StatsResponse aggregates the stored cash settlement series.
type StatsResponse struct {
	MinPrice     *float64 `json:"min_price"`
	MaxPrice     *float64 `json:"max_price"`
	AvgPrice     *float64 `json:"avg_price"`
	FirstDate    *string  `json:"first_date"`
	LastDate     *string  `json:"last_date"`
	TotalRecords int64    `json:"total_records"`
}

// ScrapeResponse reports the outcome of an on-demand pipeline run.
type ScrapeResponse struct {
	Status string `json:"status"`
	Rows   int    `json:"rows"`
}

// NewPriceRecord maps a stored entity into its API shape.
func NewPriceRecord(p *entity.NickelPrice) PriceRecord {
	return PriceRecord{
		ID:             p.ID,
		Date:           p.Date,
		CashSettlement: nullDecimalToFloat(p.CashSettlement),
		ThreeMonth:     nullDecimalToFloat(p.ThreeMonth),
		Stock:          nullIntToPtr(p.Stock),
		CashChange:     nullDecimalToFloat(p.CashChange),
		CashChangePct:  nullDecimalToFloat(p.CashChangePct),
	}
}

// NewStatsResponse maps repository aggregates into their API shape.
func NewStatsResponse(s *repository.PriceStats) StatsResponse {
	return StatsResponse{
		MinPrice:     nullDecimalToFloat(s.MinPrice),
		MaxPrice:     nullDecimalToFloat(s.MaxPrice),
		AvgPrice:     nullDecimalToFloat(s.AvgPrice),
		FirstDate:    nullStringToPtr(s.FirstDate),
		LastDate:     nullStringToPtr(s.LastDate),
		TotalRecords: s.TotalRecords,
	}
}

func nullDecimalToFloat(d decimal.NullDecimal) *float64 {
	if !d.Valid {
		return nil
	}
	v := d.Decimal.InexactFloat64()
	return &v
}

func nullIntToPtr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func nullStringToPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
