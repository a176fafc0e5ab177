// Package validation agrupa las reglas de formato compartidas.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once sync.Once
	v    *validator.Validate
)

// V retorna el validator compartido. Los errores usan el nombre del tag json.
func V() *validator.Validate {
	once.Do(func() {
		v = validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return v
}

// Email reporta si s es un email válido (RFC 5322, sin display name).
func Email(s string) bool {
	return V().Var(s, "required,email") == nil
}

// HTTPURL reporta si s es una URL absoluta http/https con host.
func HTTPURL(s string) bool {
	return V().Var(s, "required,http_url") == nil
}

// FieldError es el primer campo inválido de un struct.
type FieldError struct {
	Field string
	Tag   string
}

// Struct valida s y retorna el primer campo inválido (nil si todo ok).
func Struct(s any) *FieldError {
	err := V().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &FieldError{Field: verrs[0].Field(), Tag: verrs[0].Tag()}
	}
	return &FieldError{Tag: "invalid"}
}

// Provider key rules:
// - Lowercase only.
// - Start and end with [a-z0-9]; middle may include [a-z0-9_-].
// - Length 1..32.
var providerKeyRe = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9_-]{0,30}[a-z0-9])?$`)

// ValidProviderKey reporta si key es una clave de provider aceptable ("google", "azure-ad").
func ValidProviderKey(key string) bool {
	return providerKeyRe.MatchString(key)
}
