package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"nickel-price-tracker/internal/entity"

	"github.com/shopspring/decimal"
)

// snapshotPrice is one record in the snapshot file, newest first.
type snapshotPrice struct {
	Date       string   `json:"date"`
	Cash       *float64 `json:"cash"`
	ThreeMonth *float64 `json:"three_month"`
	Stock      *int64   `json:"stock"`
	Change     *float64 `json:"change"`
	ChangePct  *float64 `json:"change_pct"`
}

// snapshotStats summarizes the batch, embedded at the top of the snapshot file.
type snapshotStats struct {
	MinPrice     *float64 `json:"min_price"`
	MaxPrice     *float64 `json:"max_price"`
	AvgPrice     *float64 `json:"avg_price"`
	TotalRecords int      `json:"total_records"`
	FirstDate    *string  `json:"first_date"`
	LastDate     *string  `json:"last_date"`
	UpdatedAt    string   `json:"updated_at"`
}

type snapshotFile struct {
	Stats  snapshotStats   `json:"stats"`
	Prices []snapshotPrice `json:"prices"`
}

// SnapshotSink writes a scraped batch to a single JSON file instead of a
// database. It is the static-deployment variant of the reconciler; each write
// replaces the whole file, which makes re-runs trivially idempotent.
type SnapshotSink struct {
	path string
	now  func() time.Time
}

// NewSnapshotSink creates a sink that writes to the given file path.
func NewSnapshotSink(path string) *SnapshotSink {
	return &SnapshotSink{path: path, now: time.Now}
}

// Upsert serializes the batch newest-first with embedded stats.
func (s *SnapshotSink) Upsert(ctx context.Context, prices []entity.NickelPrice) error {
	out := snapshotFile{
		Prices: make([]snapshotPrice, 0, len(prices)),
	}

	var (
		sum      decimal.Decimal
		count    int64
		min, max decimal.Decimal
	)
	// Input batch is ascending by date; the snapshot is served newest first.
	for i := len(prices) - 1; i >= 0; i-- {
		p := prices[i]
		out.Prices = append(out.Prices, snapshotPrice{
			Date:       p.Date,
			Cash:       nullDecimalToFloat(p.CashSettlement),
			ThreeMonth: nullDecimalToFloat(p.ThreeMonth),
			Stock:      nullIntToPtr(p.Stock),
			Change:     nullDecimalToFloat(p.CashChange),
			ChangePct:  nullDecimalToFloat(p.CashChangePct),
		})
		if p.CashSettlement.Valid {
			v := p.CashSettlement.Decimal
			if count == 0 || v.LessThan(min) {
				min = v
			}
			if count == 0 || v.GreaterThan(max) {
				max = v
			}
			sum = sum.Add(v)
			count++
		}
	}

	if count > 0 {
		minF := min.InexactFloat64()
		maxF := max.InexactFloat64()
		avgF := sum.Div(decimal.NewFromInt(count)).Round(2).InexactFloat64()
		out.Stats.MinPrice = &minF
		out.Stats.MaxPrice = &maxF
		out.Stats.AvgPrice = &avgF
	}
	out.Stats.TotalRecords = len(prices)
	if len(prices) > 0 {
		out.Stats.FirstDate = &prices[0].Date
		out.Stats.LastDate = &prices[len(prices)-1].Date
	}
	out.Stats.UpdatedAt = s.now().UTC().Format("2006-01-02T15:04:05Z")

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
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
