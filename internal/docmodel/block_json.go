package docmodel

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Parsing collaborators are inconsistent about page fields: some emit
// "page" or "page_no" instead of "page_start", some emit numbers as
// strings, some omit them. Malformed page info degrades to 0 (unknown)
// rather than failing the whole document.

type blockJSON struct {
	BlockID   string          `json:"block_id"`
	Type      string          `json:"type"`
	Text      string          `json:"text"`
	PageStart json.RawMessage `json:"page_start"`
	PageEnd   json.RawMessage `json:"page_end"`
	Page      json.RawMessage `json:"page"`
	PageNo    json.RawMessage `json:"page_no"`
	BBox      []float64       `json:"bbox"`
	Table     *Table          `json:"table"`
}

func (b *Block) UnmarshalJSON(data []byte) error {
	var raw blockJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	b.BlockID = raw.BlockID
	b.Type = BlockType(strings.ToLower(strings.TrimSpace(raw.Type)))
	b.Text = raw.Text
	b.BBox = raw.BBox
	b.Table = raw.Table

	start := coerceInt(raw.PageStart)
	if start == 0 {
		start = coerceInt(raw.Page)
	}
	if start == 0 {
		start = coerceInt(raw.PageNo)
	}
	end := coerceInt(raw.PageEnd)
	if end == 0 {
		end = start
	}
	b.PageStart = start
	b.PageEnd = end
	return nil
}

// coerceInt reads a JSON number or numeric string; anything else is 0.
func coerceInt(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return v
		}
	}
	return 0
}
