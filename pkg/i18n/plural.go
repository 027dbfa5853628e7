package i18n

// PluralRule picks the CLDR plural category for a count.
type PluralRule func(n int) string

// CLDR plural categories. A language uses a subset of them.
const (
	PluralZero  = "zero"
	PluralOne   = "one"
	PluralTwo   = "two"
	PluralFew   = "few"
	PluralMany  = "many"
	PluralOther = "other"
)

// OneOtherRule covers English, German, Dutch, the Nordic languages and most
// others with a singular/plural split. Zero gets its own form so catalogs
// can say "no messages"; lookups fall back to "other" when it is absent.
var OneOtherRule PluralRule = func(n int) string {
	switch abs(n) {
	case 0:
		return PluralZero
	case 1:
		return PluralOne
	default:
		return PluralOther
	}
}

// FrenchRule treats 0 and 1 as singular.
var FrenchRule PluralRule = func(n int) string {
	if abs(n) <= 1 {
		return PluralOne
	}
	return PluralOther
}

// EastSlavicRule covers Russian, Ukrainian and Belarusian.
var EastSlavicRule PluralRule = func(n int) string {
	n = abs(n)
	mod10, mod100 := n%10, n%100
	switch {
	case mod10 == 1 && mod100 != 11:
		return PluralOne
	case mod10 >= 2 && mod10 <= 4 && (mod100 < 12 || mod100 > 14):
		return PluralFew
	default:
		return PluralMany
	}
}

// PolishRule differs from EastSlavicRule in that only 1 is singular.
var PolishRule PluralRule = func(n int) string {
	n = abs(n)
	mod10, mod100 := n%10, n%100
	switch {
	case n == 1:
		return PluralOne
	case mod10 >= 2 && mod10 <= 4 && (mod100 < 12 || mod100 > 14):
		return PluralFew
	default:
		return PluralMany
	}
}

// CzechRule covers Czech and Slovak.
var CzechRule PluralRule = func(n int) string {
	switch n = abs(n); {
	case n == 1:
		return PluralOne
	case n >= 2 && n <= 4:
		return PluralFew
	default:
		return PluralOther
	}
}

// ArabicRule uses all six categories.
var ArabicRule PluralRule = func(n int) string {
	n = abs(n)
	mod100 := n % 100
	switch {
	case n == 0:
		return PluralZero
	case n == 1:
		return PluralOne
	case n == 2:
		return PluralTwo
	case mod100 >= 3 && mod100 <= 10:
		return PluralFew
	case mod100 >= 11:
		return PluralMany
	default:
		return PluralOther
	}
}

// NoPluralRule is for languages without grammatical number.
var NoPluralRule PluralRule = func(int) string { return PluralOther }

// RuleFor returns the built-in rule for a locale's base language.
func RuleFor(locale string) PluralRule {
	switch Base(locale) {
	case "fr", "pt":
		return FrenchRule
	case "ru", "uk", "be":
		return EastSlavicRule
	case "pl":
		return PolishRule
	case "cs", "sk":
		return CzechRule
	case "ar":
		return ArabicRule
	case "ja", "zh", "ko", "th", "vi", "id", "ms":
		return NoPluralRule
	default:
		return OneOtherRule
	}
}

// fallbackForms lists the forms tried when a catalog lacks the exact one.
func fallbackForms(form string) []string {
	switch form {
	case PluralTwo:
		return []string{PluralFew, PluralMany, PluralOther}
	case PluralFew:
		return []string{PluralMany, PluralOther}
	case PluralOther:
		return nil
	default:
		return []string{PluralOther}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
