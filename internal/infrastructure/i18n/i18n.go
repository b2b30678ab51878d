// Package i18n renders user-facing notification text in Vietnamese (default)
// or English using golang.org/x/text message catalogs.
package i18n

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// DefaultLocale is used when no locale is configured
const DefaultLocale = "vi"

var (
	supported = []language.Tag{language.Vietnamese, language.English}
	matcher   = language.NewMatcher(supported)
	messages  = buildCatalog()
)

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.Vietnamese))
	for key, msg := range vietnamese {
		if err := b.SetString(language.Vietnamese, key, msg); err != nil {
			panic(fmt.Sprintf("i18n: register %s: %v", key, err))
		}
	}
	for key, msg := range english {
		if err := b.SetString(language.English, key, msg); err != nil {
			panic(fmt.Sprintf("i18n: register %s: %v", key, err))
		}
	}
	return b
}

// Localizer formats catalog messages for one language
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
}

// New creates a localizer for a BCP 47 locale such as "vi", "en" or "en-US".
// Unknown locales fall back to Vietnamese.
func New(locale string) *Localizer {
	tag := language.Vietnamese
	if locale != "" {
		if parsed, err := language.Parse(locale); err == nil {
			_, idx, conf := matcher.Match(parsed)
			if conf != language.No {
				tag = supported[idx]
			}
		}
	}
	return &Localizer{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(messages)),
	}
}

// Message returns the localized text for key, formatted with args.
// Unknown keys are returned unchanged.
func (l *Localizer) Message(key string, args ...any) string {
	if !Has(key) {
		if len(args) == 0 {
			return key
		}
		return fmt.Sprintf("%s %v", key, args)
	}
	return l.printer.Sprintf(key, args...)
}

// Language returns the resolved language tag
func (l *Localizer) Language() language.Tag {
	return l.tag
}

// Has reports whether key is registered in the catalog
func Has(key string) bool {
	_, ok := vietnamese[key]
	return ok
}
