package interfaces

// Translator resolves a message key for a locale. Args are applied as
// fmt verbs when present.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}
