package docmodel

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Table holds tabular block payload in canonical row-of-strings form.
// Parsing collaborators emit rows in several shapes (objects keyed by
// header, arrays of cells, bare scalars); UnmarshalJSON converts any of
// them into Rows, preserving cell order as it appears in the input.
type Table struct {
	Rows [][]string `json:"rows"`
}

// Serialize renders the table as pipe-joined lines, one row per line.
// Used as chunk text when a table block carries no direct text.
func (t *Table) Serialize() string {
	if t == nil || len(t.Rows) == 0 {
		return ""
	}
	lines := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		lines = append(lines, strings.Join(row, " | "))
	}
	return strings.Join(lines, "\n")
}

// IsEmpty reports whether the table has no rows.
func (t *Table) IsEmpty() bool {
	return t == nil || len(t.Rows) == 0
}

func (t *Table) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	var rawRows []json.RawMessage
	switch trimmed[0] {
	case '{':
		var wrapper struct {
			Rows []json.RawMessage `json:"rows"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return fmt.Errorf("table object: %w", err)
		}
		rawRows = wrapper.Rows
	case '[':
		if err := json.Unmarshal(trimmed, &rawRows); err != nil {
			return fmt.Errorf("table array: %w", err)
		}
	default:
		// Scalar table payloads are malformed input; tolerate as empty.
		return nil
	}

	t.Rows = t.Rows[:0]
	for _, raw := range rawRows {
		cells, err := cellsFromRaw(raw)
		if err != nil {
			return err
		}
		t.Rows = append(t.Rows, cells)
	}
	return nil
}

// cellsFromRaw converts one row in any accepted shape into ordered cells.
// Object rows keep key order as written in the JSON document, so header
// alignment survives the round trip.
func cellsFromRaw(raw json.RawMessage) ([]string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil
	}
	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("table row: %w", err)
		}
		cells := make([]string, 0, len(items))
		for _, item := range items {
			cells = append(cells, scalarString(item))
		}
		return cells, nil
	case '{':
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		if _, err := dec.Token(); err != nil { // consume '{'
			return nil, fmt.Errorf("table row: %w", err)
		}
		var cells []string
		for dec.More() {
			if _, err := dec.Token(); err != nil { // key
				return nil, fmt.Errorf("table row key: %w", err)
			}
			var value json.RawMessage
			if err := dec.Decode(&value); err != nil {
				return nil, fmt.Errorf("table row value: %w", err)
			}
			cells = append(cells, scalarString(value))
		}
		return cells, nil
	default:
		return []string{scalarString(trimmed)}, nil
	}
}

// scalarString renders a JSON scalar (or any nested value) as cell text.
func scalarString(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	return string(trimmed)
}
