package render

import (
	"strings"

	"github.com/rgoodwin/lexchunk/internal/extract"
)

// The review pack is a human-readable markdown document with one section
// per extraction kind. Re-rendering a section replaces it in place so
// reviewer notes elsewhere in the pack survive re-runs.

const (
	definitionsHeader  = "## Definitions"
	entitlementsHeader = "## Entitlements & Schedules"
)

// DefinitionsSection renders the definitions table.
func DefinitionsSection(definitions []extract.Definition) string {
	lines := []string{
		definitionsHeader,
		"",
		"| Term | Definition | Page | Clause |",
		"| --- | --- | --- | --- |",
	}
	for _, d := range definitions {
		var ev extract.Evidence
		if len(d.Evidence) > 0 {
			ev = d.Evidence[0]
		}
		page := "—"
		if ev.PageStart != 0 {
			page = pageField(ev.PageStart)
		}
		clause := ev.ClauseRef
		if clause == "" {
			clause = "—"
		}
		lines = append(lines, "| "+escapeCell(d.Term)+" | "+escapeCell(d.Definition)+
			" | "+page+" | "+clause+" |")
	}
	return strings.Join(lines, "\n") + "\n"
}

// EntitlementsSection renders recognized tables and the normalized
// product list.
func EntitlementsSection(ents extract.Entitlements) string {
	lines := []string{entitlementsHeader, ""}
	if ents.Status != extract.StatusOK {
		lines = append(lines, "**Status:** "+ents.Status, "")
	}

	for _, t := range ents.Tables {
		title := t.Title
		if title == "" {
			title = "Table"
		}
		lines = append(lines, "### "+title)
		if len(t.Headers) > 0 {
			lines = append(lines, "| "+strings.Join(t.Headers, " | ")+" |")
			seps := make([]string, len(t.Headers))
			for i := range seps {
				seps[i] = "---"
			}
			lines = append(lines, "| "+strings.Join(seps, " | ")+" |")
			for _, row := range t.Rows {
				cells := make([]string, len(t.Headers))
				for i, h := range t.Headers {
					cells[i] = escapeCell(row[extract.NormalizeHeaderKey(h)])
				}
				lines = append(lines, "| "+strings.Join(cells, " | ")+" |")
			}
		}
		lines = append(lines, "")
	}

	if len(ents.Products) > 0 {
		lines = append(lines,
			"### Normalized Products",
			"| Product | Metric | Qty | Term |",
			"| --- | --- | --- | --- |",
		)
		for _, p := range ents.Products {
			metric := orDash(p.Metric)
			qty := quantityField(p.Quantity)
			if qty == "" {
				qty = "—"
			}
			lines = append(lines, "| "+escapeCell(p.Name)+" | "+metric+
				" | "+qty+" | "+orDash(p.Term)+" |")
		}
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n") + "\n"
}

// UpdateReviewPack replaces the section starting at header within content,
// or appends it. Empty content starts a fresh pack.
func UpdateReviewPack(content, header, section string) string {
	if content == "" {
		return "# Review Pack\n\n" + section
	}
	idx := strings.Index(content, header)
	if idx == -1 {
		return strings.TrimRight(content, "\n") + "\n\n" + section
	}

	before := content[:idx]
	rest := content[idx:]
	nextIdx := strings.Index(rest, "\n## ")
	if nextIdx != -1 {
		after := rest[nextIdx+1:]
		return before + section + "\n" + after
	}
	return before + section
}

// BuildReviewPack applies both extraction sections to an existing pack.
func BuildReviewPack(content string, definitions []extract.Definition, ents extract.Entitlements) string {
	content = UpdateReviewPack(content, definitionsHeader, DefinitionsSection(definitions))
	content = UpdateReviewPack(content, entitlementsHeader, EntitlementsSection(ents))
	return content
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
