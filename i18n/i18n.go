// Package i18n translates autopo's own user-facing strings.
//
// It wraps the gotext library to provide simple T() and N() functions.
// Catalogs are embedded in the binary and loaded at startup via Init().
//
// Usage:
//
//	import "github.com/minios-linux/autopo/i18n"
//
//	func main() {
//	    i18n.Init("")  // auto-detect from LANGUAGE/LC_ALL/LC_MESSAGES/LANG
//	    fmt.Println(i18n.T("Translation complete"))
//	    fmt.Printf(i18n.N("%d catalog", "%d catalogs", n), n)
//	}
package i18n

import (
	"embed"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/leonelquinteros/gotext"

	"github.com/minios-linux/autopo/langcode"
)

// locales embeds the translation catalogs.
// Directory structure: locales/{lang}/LC_MESSAGES/autopo.po
//
//go:embed all:locales
var locales embed.FS

// domain is the gettext domain name.
const domain = "autopo"

// po is the gotext locale object used for translations.
var po *gotext.Locale

// Init loads the catalog for lang, or for the environment's language when
// lang is empty, and returns the language used: the normalised code
// ("ru_RU" for "ru-ru"), or "en" when no embedded catalog covers it. It
// should run before the first T or N call.
func Init(lang string) string {
	if lang == "" {
		lang = detectLanguage()
	}
	// gotext looks up "pt_BR" and then "pt"
	lang = strings.ReplaceAll(langcode.Canonical(lang), "-", "_")
	if !hasCatalog(lang) {
		lang = "en"
	}

	po = gotext.NewLocaleFSWithPath(lang, locales, "locales")
	po.AddDomain(domain)
	po.SetDomain(domain)
	return lang
}

// hasCatalog reports whether a catalog exists for lang or its base language.
func hasCatalog(lang string) bool {
	for _, l := range []string{lang, langcode.Base(lang)} {
		if _, err := fs.Stat(locales, path.Join("locales", l, "LC_MESSAGES", domain+".po")); err == nil {
			return true
		}
	}
	return false
}

// T translates a string. If no translation is available, returns the
// original string unchanged (standard gettext passthrough behavior).
func T(msgid string) string {
	if po == nil {
		return msgid
	}
	return po.Get(msgid)
}

// N translates a string with plural forms. The singular form is used
// when n == 1, the plural form otherwise (exact rules depend on the
// target language's plural formula).
func N(singular, plural string, n int) string {
	if po == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return po.GetN(singular, plural, n)
}

// detectLanguage reads environment variables to determine the user's
// preferred language, following GNU gettext conventions.
func detectLanguage() string {
	// GNU gettext priority: LANGUAGE > LC_ALL > LC_MESSAGES > LANG
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		if val := os.Getenv(env); val != "" {
			// LANGUAGE can be a colon-separated list; take the first
			if env == "LANGUAGE" {
				parts := strings.SplitN(val, ":", 2)
				val = parts[0]
			}
			// Strip encoding suffix (e.g. "ru_RU.UTF-8" -> "ru_RU")
			if idx := strings.IndexByte(val, '.'); idx >= 0 {
				val = val[:idx]
			}
			// "C" and "POSIX" mean no translation
			if val == "C" || val == "POSIX" || val == "" {
				continue
			}
			return val
		}
	}
	return "en"
}
