// Package i18n arma los mensajes localizados de la API (en, es).
package i18n

import (
	"net/http"
	"strings"

	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

const keyLockout = "lockout"

var (
	supported = []language.Tag{language.English, language.Spanish}
	matcher   = language.NewMatcher(supported)
	cat       = mustCatalog()
)

func mustCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	set := func(tag language.Tag, msg catalog.Message) {
		if err := b.Set(tag, keyLockout, msg); err != nil {
			panic(err)
		}
	}
	set(language.English, plural.Selectf(1, "%d",
		"one", "Too many attempts. Try again in %d minute.",
		"other", "Too many attempts. Try again in %d minutes.",
	))
	set(language.Spanish, plural.Selectf(1, "%d",
		"one", "Demasiados intentos. Intente de nuevo en %d minuto.",
		"other", "Demasiados intentos. Intente de nuevo en %d minutos.",
	))
	return b
}

// Tag elige el idioma según Accept-Language; default en.
func Tag(r *http.Request) language.Tag {
	accept := ""
	if r != nil {
		accept = strings.TrimSpace(r.Header.Get("Accept-Language"))
	}
	if accept == "" {
		return language.English
	}
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return language.English
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return language.English
	}
	return supported[idx]
}

// Lockout redacta el aviso de bloqueo. Los segundos se redondean a minutos hacia arriba.
func Lockout(tag language.Tag, seconds int) string {
	minutes := (seconds + 59) / 60
	if minutes < 1 {
		minutes = 1
	}
	return message.NewPrinter(tag, message.Catalog(cat)).Sprintf(keyLockout, minutes)
}
