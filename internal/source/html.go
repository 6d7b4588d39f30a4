package source

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// defaultTableSelector picks the first table in the document.
const defaultTableSelector = "table"

// decodeHTML reads the first table matching selector. Header cells come from
// "thead th" when present, otherwise from the first row.
func decodeHTML(r io.Reader, selector string) ([]string, [][]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("parse html: %w", err)
	}
	if selector == "" {
		selector = defaultTableSelector
	}

	table := doc.Find(selector).First()
	if table.Length() == 0 {
		return nil, nil, fmt.Errorf("%w: no element matches %q", ErrNotFound, selector)
	}
	if !table.Is("table") {
		table = table.Find("table").First()
		if table.Length() == 0 {
			return nil, nil, fmt.Errorf("%w: no table under %q", ErrNotFound, selector)
		}
	}

	var header []string
	table.Find("thead th").Each(func(_ int, th *goquery.Selection) {
		header = append(header, cellText(th))
	})

	var records [][]string
	rowSel := table.Find("tbody tr")
	if rowSel.Length() == 0 {
		rowSel = table.Find("tr")
	}
	rowSel.Each(func(_ int, tr *goquery.Selection) {
		if tr.ParentsFiltered("thead").Length() > 0 {
			return
		}
		var row []string
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			row = append(row, cellText(cell))
		})
		records = append(records, row)
	})

	if len(header) == 0 {
		header, records = splitHeader(records)
	}
	return header, records, nil
}

func cellText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}
