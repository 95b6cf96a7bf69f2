package render

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/rgoodwin/lexchunk/internal/extract"
)

// Tabular exports for review tooling. Column layouts are stable; consumers
// key on the header row.

// WriteDefinitionsCSV renders extracted definitions as CSV.
func WriteDefinitionsCSV(w io.Writer, docID string, definitions []extract.Definition) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"doc_id", "term", "definition", "confidence",
		"page_start", "clause_ref", "section_path",
	}); err != nil {
		return err
	}
	for _, d := range definitions {
		var ev extract.Evidence
		if len(d.Evidence) > 0 {
			ev = d.Evidence[0]
		}
		record := []string{
			docID,
			d.Term,
			d.Definition,
			formatConfidence(d.Confidence),
			pageField(ev.PageStart),
			ev.ClauseRef,
			strings.Join(d.Location.SectionPath, " > "),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteEntitlementsCSV renders normalized product rows as CSV.
func WriteEntitlementsCSV(w io.Writer, docID string, products []extract.EntitlementProduct) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"doc_id", "product_name", "metric", "quantity",
		"unit", "term", "restrictions", "page_start",
	}); err != nil {
		return err
	}
	for _, p := range products {
		var ev extract.Evidence
		if len(p.Evidence) > 0 {
			ev = p.Evidence[0]
		}
		record := []string{
			docID,
			p.Name,
			p.Metric,
			quantityField(p.Quantity),
			p.Unit,
			p.Term,
			strings.Join(p.Restrictions, "; "),
			pageField(ev.PageStart),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatConfidence(c float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", c), "0"), ".")
}

func pageField(page int) string {
	if page == 0 {
		return ""
	}
	return fmt.Sprintf("%d", page)
}

func quantityField(q *extract.Quantity) string {
	if q == nil {
		return ""
	}
	if q.Parsed {
		return fmt.Sprintf("%d", q.Value)
	}
	return q.Raw
}
