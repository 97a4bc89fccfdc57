// AngelaMos | 2026
// interpolation.go

package i18n

import (
	"maps"
	"strings"
)

// ModelName holds the singular and plural element names used to derive
// interpolation keys, e.g. {"team", "teams"}.
type ModelName struct {
	Element    string
	Collection string
}

// Model is anything that can name itself inside a translated sentence.
type Model interface {
	ModelName() ModelName
	LabelString() string
}

// Possessive inflects name for English only; other locales get the name
// back unchanged.
func Possessive(locale, name string) string {
	if locale != "en" {
		return name
	}
	if strings.HasSuffix(name, "s") {
		return name + "'"
	}
	return name + "'s"
}

// ModelVars returns <element>_name and <collection>_possessive for m, or
// nothing when m has no label.
func ModelVars(locale string, m Model) map[string]string {
	if isNil(m) {
		return nil
	}
	label := strings.TrimSpace(m.LabelString())
	if label == "" {
		return nil
	}
	name := m.ModelName()
	return map[string]string{
		name.Element + "_name":          label,
		name.Collection + "_possessive": Possessive(locale, label),
	}
}

// Build merges ModelVars for each model in order; later models win.
func Build(locale string, models ...Model) map[string]string {
	out := map[string]string{}
	for _, m := range models {
		maps.Copy(out, ModelVars(locale, m))
	}
	return out
}
