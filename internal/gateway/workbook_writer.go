package gateway

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"ledger-reconciliation/internal/domain"
)

// MaxSheetNameLength is the spreadsheet format's limit on sheet names.
const MaxSheetNameLength = 31

// XLSXContentType is the MIME type of the rendered workbook.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const defaultSheet = "Sheet1"

var errNoSheets = errors.New("report has no sheets to write")

// WorkbookWriter renders report sheets into a single .xlsx workbook.
type WorkbookWriter struct {
	columnWidth float64
}

// NewWorkbookWriter creates a writer with the default column width.
func NewWorkbookWriter() *WorkbookWriter {
	return &WorkbookWriter{columnWidth: 18}
}

// WriteFile renders sheets to path.
func (w *WorkbookWriter) WriteFile(path string, sheets []domain.Sheet) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := w.Write(file, sheets); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Write renders sheets to out, in order. Sheet names are sanitized,
// truncated and de-duplicated; see SheetNames.
func (w *WorkbookWriter) Write(out io.Writer, sheets []domain.Sheet) error {
	if len(sheets) == 0 {
		return errNoSheets
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	names := SheetNames(sheets)
	for i, sheet := range sheets {
		name := names[i]
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return fmt.Errorf("failed to rename sheet %q: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", name, err)
		}
		if err := w.writeSheet(f, name, sheet, headerStyle); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (w *WorkbookWriter) writeSheet(f *excelize.File, name string, sheet domain.Sheet, headerStyle int) error {
	if len(sheet.Header) > 0 {
		header := make([]any, len(sheet.Header))
		for i, h := range sheet.Header {
			header[i] = h
		}
		if err := f.SetSheetRow(name, "A1", &header); err != nil {
			return fmt.Errorf("failed to write header of %q: %w", name, err)
		}
		last, _ := excelize.CoordinatesToCellName(len(sheet.Header), 1)
		if err := f.SetCellStyle(name, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("failed to style header of %q: %w", name, err)
		}
		lastCol, _ := excelize.ColumnNumberToName(len(sheet.Header))
		if err := f.SetColWidth(name, "A", lastCol, w.columnWidth); err != nil {
			return fmt.Errorf("failed to size columns of %q: %w", name, err)
		}
	}

	for i := range sheet.Rows {
		row := sheet.Rows[i]
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %q: %w", i+2, name, err)
		}
	}
	return nil
}

// SheetNames returns a valid, unique sheet name for each sheet, in order.
// Forbidden characters become "_", names are cut to MaxSheetNameLength and
// collisions (compared case-insensitively, as spreadsheet apps do) get a
// "~N" suffix.
func SheetNames(sheets []domain.Sheet) []string {
	names := make([]string, len(sheets))
	taken := make(map[string]bool, len(sheets))
	for i, s := range sheets {
		base := sanitizeSheetName(s.Name)
		name := base
		for n := 2; taken[strings.ToLower(name)]; n++ {
			suffix := "~" + strconv.Itoa(n)
			name = truncateRunes(base, MaxSheetNameLength-len(suffix)) + suffix
		}
		taken[strings.ToLower(name)] = true
		names[i] = name
	}
	return names
}

func sanitizeSheetName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, name)
	cleaned = strings.Trim(cleaned, "'")
	cleaned = truncateRunes(cleaned, MaxSheetNameLength)
	cleaned = strings.Trim(cleaned, "'")
	if strings.TrimSpace(cleaned) == "" {
		return "Sheet"
	}
	return cleaned
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
