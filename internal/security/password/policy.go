package password

import (
	"strings"
	"unicode"
)

// Policy valida passwords elegidas por el usuario.
type Policy struct {
	MinLength     int
	RequireUpper  bool
	RequireLower  bool
	RequireDigit  bool
	RequireSymbol bool

	// Blacklist son passwords prohibidas (comparación case-insensitive).
	Blacklist []string
}

// Validate retorna ok=false y los motivos (too_short, missing_upper, ...).
func (p Policy) Validate(s string) (ok bool, reasons []string) {
	if len([]rune(s)) < p.MinLength {
		reasons = append(reasons, "too_short")
	}
	var hasU, hasL, hasD, hasS bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			hasU = true
		case unicode.IsLower(r):
			hasL = true
		case unicode.IsDigit(r):
			hasD = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasS = true
		}
	}
	if p.RequireUpper && !hasU {
		reasons = append(reasons, "missing_upper")
	}
	if p.RequireLower && !hasL {
		reasons = append(reasons, "missing_lower")
	}
	if p.RequireDigit && !hasD {
		reasons = append(reasons, "missing_digit")
	}
	if p.RequireSymbol && !hasS {
		reasons = append(reasons, "missing_symbol")
	}
	lower := strings.ToLower(strings.TrimSpace(s))
	for _, b := range p.Blacklist {
		if lower == strings.ToLower(strings.TrimSpace(b)) {
			reasons = append(reasons, "blacklisted")
			break
		}
	}
	return len(reasons) == 0, reasons
}
