package kerrors

import (
	"embed"
	"fmt"

	i18n "github.com/kaptinlin/go-i18n"
)

//go:embed locales/*.json
var localesFS embed.FS

// Catalog renders diagnostic messages in the caller's locale. English is
// the default locale; additional bundles can be embedded the same way
// the teacher's jsonschema package embeds its own locales/*.json.
type Catalog struct {
	bundle *i18n.I18n
	locale string
}

// NewCatalog loads the embedded locale bundle, defaulting to English.
func NewCatalog() (*Catalog, error) {
	bundle := i18n.NewBundle(
		i18n.WithDefaultLocale("en"),
		i18n.WithLocales("en"),
	)
	if err := bundle.LoadFS(localesFS, "locales/*.json"); err != nil {
		return nil, err
	}
	return &Catalog{bundle: bundle, locale: "en"}, nil
}

// SetLocale switches the active locale for subsequent Render calls.
func (c *Catalog) SetLocale(locale string) {
	c.locale = locale
}

// Render produces a localized rendering of a diagnostic's message,
// falling back to the diagnostic's own message if no translation for
// its code is registered in the active locale.
func (c *Catalog) Render(d *Diagnostic) string {
	if c == nil || c.bundle == nil {
		return d.Message
	}
	localizer := c.bundle.NewLocalizer(c.locale)
	msg := localizer.Get(d.Code, i18n.Vars(translateParams(d)))
	if msg == "" || msg == d.Code {
		return d.Message
	}
	return msg
}

func translateParams(d *Diagnostic) map[string]any {
	params := make(map[string]any, len(d.Data)+1)
	for k, v := range d.Data {
		params[k] = fmt.Sprintf("%v", v)
	}
	params["message"] = d.Message
	return params
}
