package scraper

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decimalFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestBuildRecordsSortsBeforeDeriving(t *testing.T) {
	// Page order is deliberately not chronological.
	rows := [][]string{
		{"10. February 2026", "100", "110", "1,000"},
		{"12. February 2026", "110", "120", "1,002"},
		{"11. February 2026", "105", "115", "1,001"},
	}

	records := BuildRecords(rows)
	require.Len(t, records, 3)
	assert.Equal(t, "2026-02-10", records[0].Date)
	assert.Equal(t, "2026-02-11", records[1].Date)
	assert.Equal(t, "2026-02-12", records[2].Date)

	// First record in the batch never has change fields.
	assert.False(t, records[0].CashChange.Valid)
	assert.False(t, records[0].CashChangePct.Valid)

	// 02-11 is derived against 02-10 (100), not 02-12.
	require.True(t, records[1].CashChange.Valid)
	assert.True(t, records[1].CashChange.Decimal.Equal(decimalFromString(t, "5")))
	assert.True(t, records[1].CashChangePct.Decimal.Equal(decimalFromString(t, "5.00")))

	// 02-12 against 02-11: 5 / 105 * 100 = 4.76 after rounding.
	require.True(t, records[2].CashChange.Valid)
	assert.True(t, records[2].CashChange.Decimal.Equal(decimalFromString(t, "5")))
	assert.True(t, records[2].CashChangePct.Decimal.Equal(decimalFromString(t, "4.76")))
}

func TestBuildRecordsSingleRecord(t *testing.T) {
	records := BuildRecords([][]string{{"13. February 2026", "16,250.00", "-", "1,234"}})
	require.Len(t, records, 1)
	assert.False(t, records[0].CashChange.Valid)
	assert.False(t, records[0].CashChangePct.Valid)
}

func TestBuildRecordsAbsentPredecessorCash(t *testing.T) {
	rows := [][]string{
		{"10. February 2026", "-", "110", "1,000"},
		{"11. February 2026", "105", "115", "1,001"},
	}

	records := BuildRecords(rows)
	require.Len(t, records, 2)
	assert.False(t, records[1].CashChange.Valid, "no change against an absent predecessor")
	assert.False(t, records[1].CashChangePct.Valid)
}

func TestBuildRecordsZeroPredecessorCash(t *testing.T) {
	rows := [][]string{
		{"10. February 2026", "0", "110", "1,000"},
		{"11. February 2026", "105", "115", "1,001"},
	}

	records := BuildRecords(rows)
	require.Len(t, records, 2)
	assert.False(t, records[1].CashChange.Valid, "no change against a zero predecessor")
}

func TestBuildRecordsDropsCorruptRow(t *testing.T) {
	rows := [][]string{
		{"10. February 2026", "100", "110", "1,000"},
		{"not a date", "100", "110", "1,000"},
		{"11. February 2026", "garbage", "115", "1,001"},
		{"12. February 2026", "110", "120", "1,002"},
	}

	records := BuildRecords(rows)
	require.Len(t, records, 2)
	assert.Equal(t, "2026-02-10", records[0].Date)
	assert.Equal(t, "2026-02-12", records[1].Date)

	// With the corrupt 02-11 row gone, 02-12 derives against 02-10.
	require.True(t, records[1].CashChange.Valid)
	assert.True(t, records[1].CashChange.Decimal.Equal(decimalFromString(t, "10")))
	assert.True(t, records[1].CashChangePct.Decimal.Equal(decimalFromString(t, "10.00")))
}

func TestBuildRecordsEmptyInput(t *testing.T) {
	assert.Empty(t, BuildRecords(nil))
}
