package i18n

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// DefaultLocale is used when no default locale is configured.
const DefaultLocale = "en"

// M holds placeholder values for a translation.
type M map[string]any

// Catalog stores localized message strings keyed by locale and dotted key.
// It is immutable after New returns and safe for concurrent use.
type Catalog struct {
	// "locale:key.path" -> message
	messages map[string]string
	plurals  map[string]PluralRule
	missing  func(locale, key string)

	defaultLocale string
	locales       []string
}

// Option configures a Catalog during construction.
type Option func(*Catalog) error

// New builds a catalog from the given options.
func New(opts ...Option) (*Catalog, error) {
	c := &Catalog{
		messages:      make(map[string]string),
		plurals:       make(map[string]PluralRule),
		defaultLocale: DefaultLocale,
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	c.locales = c.collectLocales()
	return c, nil
}

// WithDefaultLocale sets the fallback locale.
func WithDefaultLocale(locale string) Option {
	return func(c *Catalog) error {
		canonical, ok := Canonical(locale)
		if !ok {
			return fmt.Errorf("%w: %q", ErrInvalidLocale, locale)
		}
		c.defaultLocale = canonical
		return nil
	}
}

// WithMessages adds messages for a locale. Nested maps are flattened into
// dotted keys: {"welcome": {"subject": "Hi"}} becomes "welcome.subject".
func WithMessages(locale string, messages map[string]any) Option {
	return func(c *Catalog) error {
		canonical, ok := Canonical(locale)
		if !ok {
			return fmt.Errorf("%w: %q", ErrInvalidLocale, locale)
		}
		c.add(canonical, "", messages)
		return nil
	}
}

// WithPluralRule overrides the plural rule for a locale.
func WithPluralRule(locale string, rule PluralRule) Option {
	return func(c *Catalog) error {
		if rule == nil {
			return ErrNilPluralRule
		}
		canonical, ok := Canonical(locale)
		if !ok {
			return fmt.Errorf("%w: %q", ErrInvalidLocale, locale)
		}
		c.plurals[canonical] = rule
		return nil
	}
}

// WithMissingKeyHandler registers a callback invoked when a key is absent
// from the requested locale, its base language and the default locale.
func WithMissingKeyHandler(fn func(locale, key string)) Option {
	return func(c *Catalog) error {
		c.missing = fn
		return nil
	}
}

// T returns the message for key in locale, falling back to the base
// language and then the default locale. The key itself is returned when
// nothing matches.
func (c *Catalog) T(locale, key string, placeholders ...M) string {
	msg, ok := c.lookup(locale, key)
	if !ok {
		c.reportMissing(locale, key)
		return key
	}
	return ReplacePlaceholders(msg, merge(nil, placeholders))
}

// Tn returns the plural form of key for n. Forms are stored as
// "key.one", "key.other" and so on; {{count}} is set to n.
func (c *Catalog) Tn(locale, key string, n int, placeholders ...M) string {
	form := c.pluralRule(locale)(n)

	for _, candidate := range append([]string{form}, fallbackForms(form)...) {
		if msg, ok := c.lookup(locale, key+"."+candidate); ok {
			return ReplacePlaceholders(msg, merge(M{"count": n}, placeholders))
		}
	}

	c.reportMissing(locale, key)
	return key
}

// Locales returns the locales the catalog holds messages for, default first.
func (c *Catalog) Locales() []string {
	return slices.Clone(c.locales)
}

// DefaultLocale returns the fallback locale.
func (c *Catalog) DefaultLocale() string {
	return c.defaultLocale
}

func (c *Catalog) lookup(locale, key string) (string, bool) {
	for _, candidate := range c.chain(locale) {
		if msg, ok := c.messages[candidate+":"+key]; ok {
			return msg, true
		}
	}
	return "", false
}

// chain lists the locales tried for a lookup, most specific first.
func (c *Catalog) chain(locale string) []string {
	out := make([]string, 0, 3)
	if canonical, ok := Canonical(locale); ok {
		out = append(out, canonical)
		if base := Base(canonical); base != canonical {
			out = append(out, base)
		}
	}
	if !slices.Contains(out, c.defaultLocale) {
		out = append(out, c.defaultLocale)
	}
	return out
}

func (c *Catalog) pluralRule(locale string) PluralRule {
	for _, candidate := range c.chain(locale) {
		if rule, ok := c.plurals[candidate]; ok {
			return rule
		}
	}
	return RuleFor(locale)
}

func (c *Catalog) reportMissing(locale, key string) {
	if c.missing != nil {
		c.missing(locale, key)
	}
}

func (c *Catalog) add(locale, prefix string, messages map[string]any) {
	for key, value := range messages {
		if prefix != "" {
			key = prefix + "." + key
		}
		switch v := value.(type) {
		case string:
			c.messages[locale+":"+key] = v
		case map[string]any:
			c.add(locale, key, v)
		case map[string]string:
			for sub, msg := range v {
				c.messages[locale+":"+key+"."+sub] = msg
			}
		default:
			c.messages[locale+":"+key] = fmt.Sprint(v)
		}
	}
}

func (c *Catalog) collectLocales() []string {
	seen := map[string]bool{c.defaultLocale: true}
	var others []string
	for compound := range c.messages {
		if l, _, _ := strings.Cut(compound, ":"); !seen[l] {
			seen[l] = true
			others = append(others, l)
		}
	}
	slices.Sort(others)
	return append([]string{c.defaultLocale}, others...)
}

func merge(base M, extra []M) M {
	if base == nil && len(extra) == 0 {
		return nil
	}
	out := make(M, len(base))
	maps.Copy(out, base)
	for _, p := range extra {
		maps.Copy(out, p)
	}
	return out
}
