package transcript

import (
	"strings"

	"bitbucket.org/creachadair/stringset"
	"golang.org/x/text/language"
)

// DefaultLanguages are the preferred languages used when none are given.
var DefaultLanguages = []string{"en"}

// NormalizeLanguages cleans up a list of preferred language codes. Blank
// entries and repeats are dropped, keeping the first occurrence, and codes
// that parse as BCP 47 tags are rewritten in canonical case ("EN" becomes
// "en", "zh_hans" becomes "zh-Hans"). Codes that do not parse are kept as
// given. If nothing is left, a copy of DefaultLanguages is returned.
//
// Deprecated codes are not replaced by their modern forms, since YouTube
// still uses some of them (e.g. "iw" for Hebrew).
func NormalizeLanguages(langs []string) []string {
	var seen stringset.Set
	var out []string
	for _, lang := range langs {
		lang = strings.TrimSpace(lang)
		if lang == "" {
			continue
		}
		if tag, err := language.Raw.Parse(lang); err == nil {
			lang = tag.String()
		}
		if seen.Add(lang) {
			out = append(out, lang)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), DefaultLanguages...)
	}
	return out
}
