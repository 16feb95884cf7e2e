// Package guess expands free-text title guesses into spelling variants and
// fuzzily matches them against song file names.
package guess

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Abbreviation is one fixed substitution applied to a guess. WholeWord
// substitutions only replace complete words.
type Abbreviation struct {
	From, To  string
	WholeWord bool
}

// DefaultAbbreviations is the built-in substitution list.
var DefaultAbbreviations = []Abbreviation{
	{From: "super", To: "s"},
	{From: "bros", To: "brothers"},
	{From: "brothers", To: "bros"},
	{From: "and", To: "&", WholeWord: true},
	{From: "&", To: "and", WholeWord: true},
	{From: "ii", To: "2", WholeWord: true},
	{From: "iii", To: "3", WholeWord: true},
	{From: "iv", To: "4", WholeWord: true},
	{From: "2", To: "ii", WholeWord: true},
	{From: "3", To: "iii", WholeWord: true},
	{From: "4", To: "iv", WholeWord: true},
}

// Expander produces the textual variants of a guess.
type Expander struct {
	aliases       map[string][]string
	keys          []string
	abbreviations []Abbreviation
}

// NewExpander builds an expander over DefaultAliases with extra merged on
// top; extra entries replace built-in entries with the same key.
func NewExpander(extra map[string][]string) *Expander {
	e := &Expander{
		aliases:       make(map[string][]string, len(DefaultAliases)+len(extra)),
		abbreviations: DefaultAbbreviations,
	}
	for _, table := range []map[string][]string{DefaultAliases, extra} {
		for k, alts := range table {
			key := lower(strings.TrimSpace(k))
			if key == "" {
				continue
			}
			lowered := make([]string, 0, len(alts))
			for _, a := range alts {
				lowered = append(lowered, lower(a))
			}
			e.aliases[key] = lowered
		}
	}
	for k := range e.aliases {
		e.keys = append(e.keys, k)
	}
	sort.Strings(e.keys)
	return e
}

// Expand returns the sorted, de-duplicated variants of text. Empty strings
// are never part of the result.
func (e *Expander) Expand(text string) []string {
	set := map[string]struct{}{}
	add := func(s string) {
		if s != "" {
			set[s] = struct{}{}
		}
	}

	base := lower(strings.TrimSpace(text))
	forms := []string{base}
	if folded := fold(base); folded != base {
		forms = append(forms, folded)
	}

	for _, s := range forms {
		add(s)
		for _, k := range e.keys {
			if strings.Contains(s, k) {
				for _, alt := range e.aliases[k] {
					add(alt)
				}
			}
		}

		add(strings.Map(keepAlnum, s))
		add(strings.Map(dropSpace, s))
		add(strings.Join(strings.Fields(s), "-"))

		if words := strings.Fields(s); len(words) > 1 {
			reversed := make([]string, len(words))
			for i, w := range words {
				reversed[len(words)-1-i] = w
			}
			add(strings.Join(reversed, " "))
			add(strings.Join(words, ""))
			add(strings.Join(words, "-"))
		}

		for _, a := range e.abbreviations {
			add(a.apply(s))
		}

		for _, w := range strings.FieldsFunc(s, func(r rune) bool { return keepAlnum(r) < 0 }) {
			if utf8.RuneCountInString(w) > 3 {
				add(w)
			}
		}
	}

	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// apply returns s with the substitution made, or "" when it does not occur.
func (a Abbreviation) apply(s string) string {
	if !a.WholeWord {
		if !strings.Contains(s, a.From) {
			return ""
		}
		return strings.ReplaceAll(s, a.From, a.To)
	}
	words := strings.Fields(s)
	hit := false
	for i, w := range words {
		if w == a.From {
			words[i] = a.To
			hit = true
		}
	}
	if !hit {
		return ""
	}
	return strings.Join(words, " ")
}

func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// fold strips combining marks, so "pokémon" becomes "pokemon".
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func keepAlnum(r rune) rune {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return r
	}
	return -1
}

func dropSpace(r rune) rune {
	if unicode.IsSpace(r) {
		return -1
	}
	return r
}
