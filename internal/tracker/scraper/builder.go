package scraper

import (
	"sort"

	"nickel-price-tracker/internal/entity"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// BuildRecords turns raw extracted rows into the final record batch: rows with
// malformed fields are dropped, the rest are sorted ascending by date and the
// day-over-day change fields are derived against the sorted predecessor.
// Both change fields are rounded to 2 decimals (half away from zero).
func BuildRecords(rows [][]string) []entity.NickelPrice {
	records := make([]entity.NickelPrice, 0, len(rows))
	for _, row := range rows {
		record, err := buildRecord(row)
		if err != nil {
			// A single corrupt row never aborts the batch.
			continue
		}
		records = append(records, record)
	}

	// ISO dates sort lexicographically in chronological order.
	sort.Slice(records, func(i, j int) bool {
		return records[i].Date < records[j].Date
	})

	for i := range records {
		if i == 0 || !records[i].CashSettlement.Valid {
			continue
		}
		prev := records[i-1].CashSettlement
		if !prev.Valid || prev.Decimal.IsZero() {
			continue
		}
		diff := records[i].CashSettlement.Decimal.Sub(prev.Decimal)
		records[i].CashChange = decimal.NullDecimal{Decimal: diff.Round(2), Valid: true}
		records[i].CashChangePct = decimal.NullDecimal{
			Decimal: diff.Div(prev.Decimal).Mul(hundred).Round(2),
			Valid:   true,
		}
	}

	return records
}

func buildRecord(row []string) (entity.NickelPrice, error) {
	date, err := ParseDate(row[0])
	if err != nil {
		return entity.NickelPrice{}, err
	}
	cash, err := ParsePrice(row[1])
	if err != nil {
		return entity.NickelPrice{}, err
	}
	threeMonth, err := ParsePrice(row[2])
	if err != nil {
		return entity.NickelPrice{}, err
	}
	stock, err := ParseStock(row[3])
	if err != nil {
		return entity.NickelPrice{}, err
	}

	return entity.NickelPrice{
		Date:           date,
		CashSettlement: cash,
		ThreeMonth:     threeMonth,
		Stock:          stock,
	}, nil
}
