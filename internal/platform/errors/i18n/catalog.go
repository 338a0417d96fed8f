// Package i18n provides localized user-facing messages for error codes.
package i18n

import (
	"bytes"
	"strings"
	"text/template"

	"golang.org/x/text/language"
)

// Code is a machine-readable error code (duplicated from errors package to avoid cycle).
type Code = string

// BaseLocale is the fallback locale when no supported match exists.
const BaseLocale = "en-US"

// Catalog maps error codes to message templates for a specific locale.
type Catalog struct {
	locale   string
	messages map[Code]string
}

var catalogs = map[string]*Catalog{
	"en-US": NewCatalog("en-US", messagesEnUS),
	"pt-BR": NewCatalog("pt-BR", messagesPtBR),
}

var matcher = language.NewMatcher([]language.Tag{
	language.AmericanEnglish,
	language.BrazilianPortuguese,
})

// NewCatalog creates a new catalog with the given locale and messages.
func NewCatalog(locale string, messages map[Code]string) *Catalog {
	cloned := make(map[Code]string, len(messages))
	for key, value := range messages {
		cloned[key] = value
	}
	return &Catalog{
		locale:   locale,
		messages: cloned,
	}
}

// GetCatalog returns the catalog for the given locale.
// Falls back to en-US if the locale is not found.
func GetCatalog(locale string) *Catalog {
	requested := strings.TrimSpace(locale)
	if requested == "" {
		requested = BaseLocale
	}
	if c, ok := catalogs[requested]; ok {
		return c
	}
	tag, err := language.Parse(requested)
	if err != nil {
		return catalogs[BaseLocale]
	}
	return matchCatalog([]language.Tag{tag})
}

// MatchAcceptLanguage resolves the best catalog for an Accept-Language header.
func MatchAcceptLanguage(header string) *Catalog {
	header = strings.TrimSpace(header)
	if header == "" {
		return catalogs[BaseLocale]
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil {
		return catalogs[BaseLocale]
	}
	return matchCatalog(tags)
}

func matchCatalog(tags []language.Tag) *Catalog {
	_, index, _ := matcher.Match(tags...)
	switch index {
	case 1:
		return catalogs["pt-BR"]
	default:
		return catalogs[BaseLocale]
	}
}

// Locale returns the locale of this catalog.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message template with the given metadata.
// Falls back to the error code itself if no template is found.
// Templates are always executed even with nil/empty metadata to ensure
// consistent output (template variables without metadata render as empty).
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	tmpl, ok := c.messages[code]
	if !ok {
		return code
	}

	if metadata == nil {
		metadata = map[string]string{}
	}

	t, err := template.New("msg").Parse(tmpl)
	if err != nil {
		return tmpl
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, metadata); err != nil {
		return tmpl
	}
	return buf.String()
}
