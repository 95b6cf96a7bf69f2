package extract

import "strings"

// Result validation applied by the pipeline before publication. Extractors
// already bound their own output; these checks are the contract the rest
// of the system relies on (confidence in [0,1], evidence present).

// ValidateDefinition checks an extracted definition. Returns true if valid.
func ValidateDefinition(d *Definition) bool {
	if d == nil {
		return false
	}
	term := strings.TrimSpace(d.Term)
	if term == "" || len(term) > 80 || strings.Contains(term, "\n") {
		return false
	}
	if strings.TrimSpace(d.Definition) == "" {
		return false
	}
	if d.Confidence < 0.0 || d.Confidence > 1.0 {
		return false
	}
	if len(d.Evidence) == 0 {
		return false
	}
	return true
}

// ValidateProduct checks an extracted product entry. Returns true if valid.
func ValidateProduct(p *EntitlementProduct) bool {
	if p == nil {
		return false
	}
	if strings.TrimSpace(p.Name) == "" {
		return false
	}
	if p.Confidence < 0.0 || p.Confidence > 1.0 {
		return false
	}
	if len(p.Evidence) == 0 {
		return false
	}
	if p.Source != "table" {
		return false
	}
	return true
}

// ValidateReference checks a fallback reference entry.
func ValidateReference(r *EntitlementReference) bool {
	if r == nil {
		return false
	}
	if strings.TrimSpace(r.RefText) == "" {
		return false
	}
	if r.Confidence < 0.0 || r.Confidence > 1.0 {
		return false
	}
	return len(r.Evidence) > 0
}
