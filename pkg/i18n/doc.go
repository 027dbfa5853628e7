// Package i18n holds localized message catalogs for outgoing mail and the
// locale switching used while a message is rendered and delivered.
//
// # Catalogs
//
// A Catalog is built once and is read-only afterwards:
//
//	catalog, err := i18n.New(
//		i18n.WithDefaultLocale("en"),
//		i18n.WithMessages("en", map[string]any{
//			"welcome": map[string]any{
//				"subject": "Welcome, {{name}}",
//				"items":   map[string]any{"one": "{{count}} item", "other": "{{count}} items"},
//			},
//		}),
//		i18n.WithYAMLDir(localesFS), // en/welcome.yaml, de/welcome.yaml ...
//	)
//
//	catalog.T("de-AT", "welcome.subject", i18n.M{"name": "Ada"})
//	catalog.Tn("en", "welcome.items", 3)
//
// Lookups fall back from the requested locale to its base language
// ("de-AT" to "de") and then to the default locale. A key that is found
// nowhere is returned unchanged.
//
// # Locale switching
//
// Switcher tracks the active locale. Switch reports whether it changed
// anything so callers restore only what they switched:
//
//	if sw.Switch("fr") {
//		defer sw.Restore()
//	}
//
// The active locale of a single send also travels in the context via
// WithLocale and LocaleFromContext, which is what template helpers read.
package i18n
