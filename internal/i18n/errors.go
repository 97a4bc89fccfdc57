// AngelaMos | 2026
// errors.go

package i18n

import (
	"errors"
	"fmt"
)

var ErrMissingTranslation = errors.New("translation missing")

// MissingTranslationError carries the fully-qualified key the lookup tried,
// after scope resolution and without the locale prefix.
type MissingTranslationError struct {
	Locale string
	Key    string
}

func (e *MissingTranslationError) Error() string {
	return fmt.Sprintf("translation missing: %s.%s", e.Locale, e.Key)
}

func (e *MissingTranslationError) Is(target error) bool {
	return target == ErrMissingTranslation
}
