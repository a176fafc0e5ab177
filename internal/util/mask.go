// Package util agrupa helpers chicos sin dependencias del dominio.
package util

import "strings"

// MaskEmail oculta el local-part y el primer label del dominio para logs:
// "john.doe@gmail.com" -> "j…@g….com". Entradas sin '@' se enmascaran enteras.
func MaskEmail(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	at := strings.LastIndexByte(s, '@')
	if at <= 0 {
		return maskPart(s)
	}
	local, domain := s[:at], s[at+1:]
	labels := strings.Split(domain, ".")
	if len(labels) > 1 {
		labels[0] = maskPart(labels[0])
	}
	return maskPart(local) + "@" + strings.Join(labels, ".")
}

func maskPart(p string) string {
	r := []rune(p)
	if len(r) <= 1 {
		return "*"
	}
	return string(r[0]) + "…"
}
