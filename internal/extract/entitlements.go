package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rgoodwin/lexchunk/internal/docmodel"
)

// EntitlementsVocabulary holds the header-synonym map and the
// ordering-document reference keywords. Injected so tests can substitute
// vocabularies.
type EntitlementsVocabulary struct {
	// HeaderSynonyms maps lowercased header cells to canonical field keys.
	HeaderSynonyms map[string]string
	// RefKeywords indicate a textual reference to an external ordering
	// document.
	RefKeywords []string
}

func DefaultEntitlementsVocabulary() EntitlementsVocabulary {
	return EntitlementsVocabulary{
		HeaderSynonyms: map[string]string{
			"program":           "product",
			"product":           "product",
			"service":           "product",
			"licensed program":  "product",
			"item":              "product",
			"metric":            "metric",
			"license metric":    "metric",
			"measure":           "metric",
			"qty":               "quantity",
			"quantity":          "quantity",
			"units":             "quantity",
			"number":            "quantity",
			"term":              "term",
			"subscription term": "term",
			"start":             "term",
			"end":               "term",
			"territory":         "territory",
			"region":            "territory",
			"restriction":       "restrictions",
			"restrictions":      "restrictions",
			"limitations":       "restrictions",
			"notes":             "restrictions",
			"sku":               "sku",
			"part":              "sku",
			"item code":         "sku",
			"csi":               "csi",
			"support id":        "csi",
			"price":             "price",
			"rate":              "price",
			"total":             "price",
		},
		RefKeywords: []string{
			"order form", "ordering document", "sow", "statement of work",
			"schedule", "ordering", "order",
		},
	}
}

// EntitlementsExtractor recovers licensed-product entitlements from
// table-bearing chunks, with a textual-reference fallback when the whole
// document yields no structured rows.
type EntitlementsExtractor struct {
	vocab EntitlementsVocabulary
}

func NewEntitlementsExtractor(vocab EntitlementsVocabulary) *EntitlementsExtractor {
	return &EntitlementsExtractor{vocab: vocab}
}

// ExtractEntitlements runs the default extractor over a chunk set.
func ExtractEntitlements(chunked *docmodel.ChunkSet) (*EntitlementsResult, error) {
	return NewEntitlementsExtractor(DefaultEntitlementsVocabulary()).Extract(chunked)
}

func (e *EntitlementsExtractor) Extract(chunked *docmodel.ChunkSet) (*EntitlementsResult, error) {
	if chunked == nil {
		return nil, ErrNoChunks
	}

	var (
		tables     []EntitlementTable
		products   []EntitlementProduct
		references []EntitlementReference
	)

	for _, ch := range chunked.Chunks {
		if ch.Type != docmodel.ChunkTable && ch.Table == nil {
			continue
		}
		rows := tableRows(&ch)
		headers, dataRows := e.detectHeaderRow(rows)
		tableType := e.classifyTable(headers)
		normalized := e.normalizeRows(headers, dataRows)

		ev := Evidence{
			ChunkID:   ch.ChunkID,
			PageStart: ch.PageStart,
			PageEnd:   ch.PageEnd,
		}

		confidence := 0.6
		if tableType != TableUnknown {
			confidence = 0.8
		}
		tables = append(tables, EntitlementTable{
			Title:      tableTitle(&ch),
			TableType:  tableType,
			Headers:    headers,
			Rows:       normalized,
			Confidence: confidence,
			Evidence:   []Evidence{ev},
		})

		for _, row := range normalized {
			if p, ok := inferProduct(row, ev); ok {
				products = append(products, p)
			}
		}
	}

	if len(products) == 0 {
		references = e.collectReferences(chunked.Chunks)
	}

	status := StatusOK
	if len(products) == 0 {
		status = StatusNoEntitlements
	}

	return &EntitlementsResult{
		DocID:       chunked.DocID,
		ExtractedAt: time.Now().UTC(),
		Pipeline:    currentRunMeta(),
		Entitlements: Entitlements{
			Status:     status,
			Tables:     tables,
			Products:   products,
			References: references,
		},
	}, nil
}

// tableRows extracts canonical rows: the structured payload when present,
// otherwise the chunk text split on pipe-delimited lines.
func tableRows(ch *docmodel.Chunk) [][]string {
	if ch.Table != nil && len(ch.Table.Rows) > 0 {
		return ch.Table.Rows
	}
	var rows [][]string
	for _, line := range strings.Split(ch.Text, "\n") {
		if strings.Contains(line, "|") {
			var cells []string
			for _, p := range strings.Split(line, "|") {
				p = strings.TrimSpace(p)
				if p != "" {
					cells = append(cells, p)
				}
			}
			rows = append(rows, cells)
		} else {
			rows = append(rows, []string{strings.TrimSpace(line)})
		}
	}
	var out [][]string
	for _, r := range rows {
		for _, c := range r {
			if c != "" {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// detectHeaderRow scores the first two rows against the header-synonym
// vocabulary; the higher scorer with at least two recognized cells is the
// header. With no qualifying row, positional col_N headers are
// synthesized and every row is data.
func (e *EntitlementsExtractor) detectHeaderRow(rows [][]string) ([]string, [][]string) {
	if len(rows) == 0 {
		return nil, nil
	}

	s0 := e.headerScore(rows[0])
	s1 := 0
	if len(rows) >= 2 {
		s1 = e.headerScore(rows[1])
	}
	if s0 >= 2 && s0 >= s1 {
		return rows[0], rows[1:]
	}
	if s1 >= 2 && s1 > s0 {
		return rows[1], rows[2:]
	}

	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	headers := make([]string, width)
	for i := range headers {
		headers[i] = "col_" + strconv.Itoa(i+1)
	}
	return headers, rows
}

func (e *EntitlementsExtractor) headerScore(row []string) int {
	score := 0
	for _, cell := range row {
		if cell == "" {
			continue
		}
		c := strings.ToLower(cell)
		for k := range e.vocab.HeaderSynonyms {
			if strings.Contains(c, k) {
				score++
				break
			}
		}
	}
	return score
}

func (e *EntitlementsExtractor) classifyTable(headers []string) string {
	h := strings.ToLower(strings.Join(headers, " "))
	switch {
	case strings.Contains(h, "metric") &&
		(strings.Contains(h, "program") || strings.Contains(h, "product")):
		return TableLicensedPrograms
	case strings.Contains(h, "price") || strings.Contains(h, "rate") || strings.Contains(h, "total"):
		return TablePricing
	case strings.Contains(h, "support") || strings.Contains(h, "csi"):
		return TableSupport
	default:
		return TableUnknown
	}
}

// normalizeRows converts data rows into key→value maps using the synonym
// mapping, padding short rows and dropping rows that are entirely blank.
func (e *EntitlementsExtractor) normalizeRows(headers []string, rows [][]string) []map[string]string {
	keys := make([]string, len(headers))
	for i, h := range headers {
		keys[i] = e.normalizeHeader(h)
	}

	var normalized []map[string]string
	for _, row := range rows {
		item := make(map[string]string, len(keys))
		blank := true
		for i, key := range keys {
			cell := ""
			if i < len(row) {
				cell = strings.TrimSpace(row[i])
			}
			item[key] = cell
			if cell != "" {
				blank = false
			}
		}
		if !blank {
			normalized = append(normalized, item)
		}
	}
	return normalized
}

// NormalizeHeaderKey maps a display header cell to the canonical row key
// under the default vocabulary. Renderers use it to look up row values by
// their original table headers.
func NormalizeHeaderKey(cell string) string {
	e := EntitlementsExtractor{vocab: DefaultEntitlementsVocabulary()}
	return e.normalizeHeader(cell)
}

func (e *EntitlementsExtractor) normalizeHeader(cell string) string {
	c := innerSpaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(cell)), " ")
	if mapped, ok := e.vocab.HeaderSynonyms[c]; ok {
		return mapped
	}
	return c
}

var (
	hasLetterRe = regexp.MustCompile(`[A-Za-z]`)
	hasDigitRe  = regexp.MustCompile(`\d`)
	digitRunRe  = regexp.MustCompile(`\d+`)
)

// inferProduct builds a product entry from a normalized row. Rows without
// a resolvable name are dropped.
func inferProduct(row map[string]string, ev Evidence) (EntitlementProduct, bool) {
	name := firstNonEmpty(row["product"], row["program"], row["service"])
	metric := row["metric"]
	quantityRaw := row["quantity"]
	quantity, parsed := parseQuantity(quantityRaw)

	if name == "" {
		name = row["col_1"]
	}
	if metric == "" {
		if col2 := row["col_2"]; col2 != "" && hasLetterRe.MatchString(col2) {
			metric = col2
		}
	}
	if quantityRaw == "" {
		col2 := row["col_2"]
		col3 := row["col_3"]
		if col2 != "" && hasDigitRe.MatchString(col2) && metric == "" {
			quantityRaw = col2
			quantity, parsed = parseQuantity(quantityRaw)
		} else if col3 != "" && hasDigitRe.MatchString(col3) {
			quantityRaw = col3
			quantity, parsed = parseQuantity(quantityRaw)
		}
	}
	if name == "" {
		return EntitlementProduct{}, false
	}

	confidence := 0.6
	if metric != "" {
		confidence += 0.1
	}
	if parsed {
		confidence += 0.1
	}
	if confidence > 0.95 {
		confidence = 0.95
	}

	var qty *Quantity
	if parsed {
		qty = &Quantity{Value: quantity, Parsed: true}
	} else if quantityRaw != "" {
		qty = &Quantity{Raw: quantityRaw}
	}

	var restrictions []string
	if row["restrictions"] != "" {
		restrictions = []string{row["restrictions"]}
	}

	return EntitlementProduct{
		Name:         name,
		Metric:       metric,
		Quantity:     qty,
		Unit:         metric,
		Term:         row["term"],
		Territory:    row["territory"],
		Restrictions: restrictions,
		Source:       "table",
		Confidence:   confidence,
		Evidence:     []Evidence{ev},
	}, true
}

// parseQuantity extracts the first run of digits, commas stripped.
func parseQuantity(value string) (int, bool) {
	if value == "" {
		return 0, false
	}
	m := digitRunRe.FindString(strings.ReplaceAll(value, ",", ""))
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// collectReferences scans all chunks for ordering-document indicators and
// emits low-confidence textual references.
func (e *EntitlementsExtractor) collectReferences(chunks []docmodel.Chunk) []EntitlementReference {
	var refs []EntitlementReference
	for _, ch := range chunks {
		text := strings.ToLower(ch.Text)
		found := false
		for _, k := range e.vocab.RefKeywords {
			if strings.Contains(text, k) {
				found = true
				break
			}
		}
		if !found {
			continue
		}
		snippet := truncateRunes(ch.Text, 240)
		refs = append(refs, EntitlementReference{
			RefType:    "ordering_document",
			RefText:    snippet,
			Confidence: 0.6,
			Evidence: []Evidence{{
				ChunkID:   ch.ChunkID,
				PageStart: ch.PageStart,
				PageEnd:   ch.PageEnd,
				Snippet:   snippet,
			}},
		})
	}
	return refs
}

func tableTitle(ch *docmodel.Chunk) string {
	if ch.Heading != "" {
		return ch.Heading
	}
	if len(ch.SectionPath) > 0 {
		return ch.SectionPath[len(ch.SectionPath)-1]
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
