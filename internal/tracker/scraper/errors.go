package scraper

import "errors"

// Structural errors mean the whole extraction target is missing and the run
// must abort; they are never recovered by skipping rows.
var (
	ErrPriceTableNotFound = errors.New("price table not found on source page")
	ErrTableBodyMissing   = errors.New("price table has no body section")
)
