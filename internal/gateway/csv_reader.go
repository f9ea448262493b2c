package gateway

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"ledger-reconciliation/internal/domain"
)

const utf8BOM = "\ufeff"

// readCSV parses a comma-separated export. The first record is the header;
// rows may have fewer or more fields than the header.
func readCSV(name string, r io.Reader) (*domain.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s has no header row", name)
		}
		return nil, fmt.Errorf("failed to read header from %s: %w", name, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	table := &domain.Table{Name: name, Columns: header}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading record from %s: %w", name, err)
		}
		if blankRow(record) {
			continue
		}
		table.Rows = append(table.Rows, record)
	}
	return table, nil
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
