package source

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// decodeXLSX reads sheet (or the first sheet when empty) of a workbook.
func decodeXLSX(r io.Reader, sheet string) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil, fmt.Errorf("%w: workbook has no sheets", ErrNotFound)
		}
		sheet = sheets[0]
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, nil, fmt.Errorf("%w: sheet %q", ErrNotFound, sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	header, body := splitHeader(rows)
	return header, body, nil
}
