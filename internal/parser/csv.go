package parser

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/rgoodwin/lexchunk/internal/docmodel"
)

// CSVParser handles CSV files: the whole file becomes a single table
// block, first record included (header detection happens downstream in
// the entitlements extractor).
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*docmodel.Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	var b blockBuilder
	if len(records) > 0 {
		b.add(docmodel.BlockTable, "", 0, &docmodel.Table{Rows: records})
	}
	return b.document(filename, 0), nil
}
