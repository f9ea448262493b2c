package gateway

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"ledger-reconciliation/internal/domain"
)

// readXLSX parses the first worksheet of a workbook. The first row is the
// header.
func readXLSX(name string, r io.Reader) (*domain.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", name, err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in %s", name)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows from %s: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s has no header row", name)
	}
	raw, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to get raw rows from %s: %w", name, err)
	}
	restoreLongNumbers(rows, raw)

	table := &domain.Table{Name: name, Columns: rows[0]}
	for _, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// restoreLongNumbers replaces cells the General format rendered in exponent
// form (16+ digit identifiers) with their stored value written out in full.
// Text cells read the same raw and formatted, so they are never touched.
func restoreLongNumbers(formatted, raw [][]string) {
	for i, row := range formatted {
		if i >= len(raw) {
			return
		}
		for j, cell := range row {
			if j >= len(raw[i]) || raw[i][j] == cell || !strings.ContainsAny(cell, "eE") {
				continue
			}
			if full, ok := plainNumber(raw[i][j]); ok {
				row[j] = full
			}
		}
	}
}

// plainNumber writes a stored numeric value without exponent.
func plainNumber(v string) (string, bool) {
	if v == "" {
		return "", false
	}
	if _, err := strconv.ParseInt(v, 10, 64); err == nil {
		return v, true
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return "", false
	}
	return strconv.FormatFloat(f, 'f', -1, 64), true
}
