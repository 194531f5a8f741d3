package scraper

import (
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// ParseDate converts a Westmetall date cell like "13. February 2026" into ISO
// form "2026-02-13". Internal whitespace runs are collapsed before parsing.
func ParseDate(raw string) (string, error) {
	cleaned := whitespaceRun.ReplaceAllString(strings.TrimSpace(raw), " ")
	t, err := time.Parse("2. January 2006", cleaned)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", raw, err)
	}
	return t.Format("2006-01-02"), nil
}

// ParsePrice converts a price cell into a decimal. Empty cells and the "-"
// placeholder are valid and yield a null value. The source locale uses "," as
// a grouping separator only, so it is stripped before parsing.
func ParsePrice(raw string) (decimal.NullDecimal, error) {
	text := strings.TrimSpace(raw)
	if text == "" || text == "-" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(text, ",", ""))
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("invalid price %q: %w", raw, err)
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}

// ParseStock converts a warehouse stock cell into an integer, with the same
// absence rule as ParsePrice.
func ParseStock(raw string) (sql.NullInt64, error) {
	text := strings.TrimSpace(raw)
	if text == "" || text == "-" {
		return sql.NullInt64{}, nil
	}
	n, err := strconv.ParseInt(strings.ReplaceAll(text, ",", ""), 10, 64)
	if err != nil {
		return sql.NullInt64{}, fmt.Errorf("invalid stock %q: %w", raw, err)
	}
	return sql.NullInt64{Int64: n, Valid: true}, nil
}
