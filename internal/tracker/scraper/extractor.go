package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// minRowCells is the number of data cells a row needs to be a candidate
// record: date, cash settlement, three-month, stock. Trailing cells are
// ignored; shorter rows are footnotes or spacers and are skipped.
const minRowCells = 4

// FindPriceTable returns the first table in document order whose header cell
// text contains "date" (case-insensitive).
func FindPriceTable(doc *goquery.Document) (*goquery.Selection, error) {
	tables := FindPriceTables(doc)
	if len(tables) == 0 {
		return nil, ErrPriceTableNotFound
	}
	return tables[0], nil
}

// FindPriceTables returns all tables whose header cell text contains "date",
// in document order. Used by the snapshot variant, which dumps every matching
// table on the page.
func FindPriceTables(doc *goquery.Document) []*goquery.Selection {
	var tables []*goquery.Selection
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		header := table.Find("th").First()
		if header.Length() == 0 {
			return
		}
		if strings.Contains(strings.ToLower(strings.TrimSpace(header.Text())), "date") {
			tables = append(tables, table)
		}
	})
	return tables
}

// ExtractRows iterates the body rows of the selected table and returns the
// raw cell texts of every candidate row. Positional mapping: cell 0 = date,
// 1 = cash settlement, 2 = three-month, 3 = stock.
func ExtractRows(table *goquery.Selection) ([][]string, error) {
	tbody := table.Find("tbody").First()
	if tbody.Length() == 0 {
		return nil, ErrTableBodyMissing
	}

	var rows [][]string
	tbody.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() < minRowCells {
			return
		}
		row := make([]string, minRowCells)
		for i := 0; i < minRowCells; i++ {
			row[i] = cells.Eq(i).Text()
		}
		rows = append(rows, row)
	})
	return rows, nil
}
