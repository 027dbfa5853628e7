package i18n

import "errors"

var (
	ErrInvalidLocale = errors.New("i18n: invalid locale")
	ErrNilPluralRule = errors.New("i18n: plural rule cannot be nil")
	ErrInvalidFile   = errors.New("i18n: invalid translation file")
)
