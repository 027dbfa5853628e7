package i18n

import "context"

type localeKey struct{}

// WithLocale returns a context carrying locale.
func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, localeKey{}, locale)
}

// LocaleFromContext returns the locale stored by WithLocale.
func LocaleFromContext(ctx context.Context) (string, bool) {
	locale, ok := ctx.Value(localeKey{}).(string)
	return locale, ok && locale != ""
}
