package extract

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/rgoodwin/lexchunk/internal/docmodel"
)

// ErrNoChunks is returned when an extractor is invoked without a prior
// chunk set. That indicates a pipeline ordering bug upstream, so it fails
// loudly instead of silently producing empty output.
var ErrNoChunks = errors.New("extract: no chunk set")

// Evidence points back at the originating chunk so a reviewer can verify
// an extracted fact.
type Evidence struct {
	ChunkID   string `json:"chunk_id"`
	PageStart int    `json:"page_start"`
	PageEnd   int    `json:"page_end"`
	ClauseRef string `json:"clause_ref,omitempty"`
	Snippet   string `json:"snippet,omitempty"`
}

// Location records where in the document structure a fact was found.
type Location struct {
	SectionPath []string `json:"section_path"`
	ClauseRef   string   `json:"clause_ref,omitempty"`
}

// Definition is a recovered (term, definition) pair with a heuristic
// confidence score, not a calibrated probability.
type Definition struct {
	Term       string     `json:"term"`
	Definition string     `json:"definition"`
	Confidence float64    `json:"confidence"`
	Location   Location   `json:"location"`
	Evidence   []Evidence `json:"evidence"`
}

// DefinitionsResult is the output envelope of a definitions run.
type DefinitionsResult struct {
	DocID       string       `json:"doc_id"`
	ExtractedAt time.Time    `json:"extracted_at"`
	Pipeline    RunMeta      `json:"pipeline"`
	Definitions []Definition `json:"definitions"`
}

// RunMeta tags extraction outputs with the pattern revision that produced
// them.
type RunMeta struct {
	Version string `json:"version"`
	Ruleset string `json:"ruleset"`
}

func currentRunMeta() RunMeta {
	return RunMeta{Version: docmodel.RulesVersion, Ruleset: docmodel.Ruleset}
}

// Table type classifications.
const (
	TableLicensedPrograms = "licensed_programs"
	TablePricing          = "pricing"
	TableSupport          = "support"
	TableUnknown          = "unknown"
)

// Entitlements extraction statuses.
const (
	StatusOK             = "OK"
	StatusNoEntitlements = "NO_ENTITLEMENTS_FOUND_IN_DOCUMENT"
)

// EntitlementTable is a recognized table with normalized rows.
type EntitlementTable struct {
	Title      string              `json:"title,omitempty"`
	TableType  string              `json:"table_type"`
	Headers    []string            `json:"headers"`
	Rows       []map[string]string `json:"rows"`
	Confidence float64             `json:"confidence"`
	Evidence   []Evidence          `json:"evidence"`
}

// Quantity carries a parsed count when one could be recovered, or the raw
// cell text otherwise. It marshals as the int when parsed, else the raw
// string.
type Quantity struct {
	Value  int
	Raw    string
	Parsed bool
}

func (q Quantity) MarshalJSON() ([]byte, error) {
	if q.Parsed {
		return []byte(strconv.Itoa(q.Value)), nil
	}
	return json.Marshal(q.Raw)
}

func (q *Quantity) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		q.Value = n
		q.Parsed = true
		return nil
	}
	q.Parsed = false
	return json.Unmarshal(data, &q.Raw)
}

// EntitlementProduct is a normalized licensed-product row.
type EntitlementProduct struct {
	Name         string     `json:"name"`
	Metric       string     `json:"metric,omitempty"`
	Quantity     *Quantity  `json:"quantity,omitempty"`
	Unit         string     `json:"unit,omitempty"`
	Term         string     `json:"term,omitempty"`
	Territory    string     `json:"territory,omitempty"`
	Restrictions []string   `json:"restrictions"`
	Source       string     `json:"source"`
	Confidence   float64    `json:"confidence"`
	Evidence     []Evidence `json:"evidence"`
}

// EntitlementReference is a fallback pointer to an external ordering
// document, emitted only when no structured product rows were found.
type EntitlementReference struct {
	RefType    string     `json:"ref_type"`
	RefText    string     `json:"ref_text"`
	Confidence float64    `json:"confidence"`
	Evidence   []Evidence `json:"evidence"`
}

// Entitlements groups the three entitlement result kinds with an overall
// status.
type Entitlements struct {
	Status     string                 `json:"status"`
	Tables     []EntitlementTable     `json:"tables"`
	Products   []EntitlementProduct   `json:"products"`
	References []EntitlementReference `json:"references"`
}

// EntitlementsResult is the output envelope of an entitlements run.
type EntitlementsResult struct {
	DocID        string       `json:"doc_id"`
	ExtractedAt  time.Time    `json:"extracted_at"`
	Pipeline     RunMeta      `json:"pipeline"`
	Entitlements Entitlements `json:"entitlements"`
}
