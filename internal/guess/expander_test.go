package guess

import (
	"reflect"
	"sort"
	"strings"
	"testing"
)

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func TestExpandSuperMarioBros(t *testing.T) {
	got := NewExpander(nil).Expand("Super Mario Bros")
	for _, want := range []string{
		"super mario bros",
		"supermariobros",
		"super-mario-bros",
		"s mario bros",
		"super mario brothers",
		"mario",
		"bros mario super",
		"super",
		"bros",
	} {
		if !contains(got, want) {
			t.Errorf("Expand(%q) missing %q; got %q", "Super Mario Bros", want, got)
		}
	}
}

func TestExpandIsSortedAndDeterministic(t *testing.T) {
	e := NewExpander(nil)
	a := e.Expand("The Legend of Zelda: Ocarina of Time")
	b := e.Expand("The Legend of Zelda: Ocarina of Time")
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("two expansions differ:\n%q\n%q", a, b)
	}
	if !sort.StringsAreSorted(a) {
		t.Fatalf("expansion not sorted: %q", a)
	}
	seen := map[string]bool{}
	for _, s := range a {
		if seen[s] {
			t.Fatalf("duplicate variant %q", s)
		}
		seen[s] = true
	}
}

func TestExpandAliases(t *testing.T) {
	got := NewExpander(nil).Expand("zelda 2")
	for _, want := range []string{"the legend of zelda", "loz", "zelda ii", "zelda-2", "zelda2"} {
		if !contains(got, want) {
			t.Errorf("missing %q in %q", want, got)
		}
	}
}

func TestExpandExtraAliasesReplaceBuiltins(t *testing.T) {
	got := NewExpander(map[string][]string{"Halo": {"Master Chief"}}).Expand("halo 2")
	if !contains(got, "master chief") {
		t.Fatalf("extra alias missing: %q", got)
	}
	if contains(got, "halo theme") {
		t.Fatalf("built-in alias not replaced: %q", got)
	}
	if !contains(got, "halo ii") {
		t.Fatalf("numeral substitution missing: %q", got)
	}
}

func TestExpandFoldsAccents(t *testing.T) {
	got := NewExpander(nil).Expand("Pokémon Stadium")
	for _, want := range []string{"pokémon stadium", "pokemon stadium", "pocket monsters", "stadium"} {
		if !contains(got, want) {
			t.Errorf("missing %q in %q", want, got)
		}
	}
}

func TestExpandWholeWordSubstitutions(t *testing.T) {
	got := NewExpander(nil).Expand("Banjo and Kazooie")
	if !contains(got, "banjo & kazooie") {
		t.Fatalf("and -> & missing: %q", got)
	}
	for _, s := range got {
		if s == "b&jo and kazooie" || s == "banjo & k&ooie" {
			t.Fatalf("whole-word substitution applied inside a word: %q", s)
		}
	}
}

func TestExpandShortWords(t *testing.T) {
	got := NewExpander(nil).Expand("Lost in Time")
	if !contains(got, "lost") || !contains(got, "time") {
		t.Fatalf("long words missing: %q", got)
	}
	if contains(got, "in") {
		t.Fatalf("short word emitted: %q", got)
	}
}

func TestExpandEmpty(t *testing.T) {
	if got := NewExpander(nil).Expand("   "); len(got) != 0 {
		t.Fatalf("Expand(blank) = %q, want empty", got)
	}
}

func TestExpandTrimsInput(t *testing.T) {
	got := NewExpander(nil).Expand("  Ys \t")
	if !contains(got, "ys") {
		t.Fatalf("Expand missing trimmed lower-case form; got %q", got)
	}
	for _, s := range got {
		if strings.TrimSpace(s) != s {
			t.Fatalf("Expand produced untrimmed variant %q", s)
		}
	}
}
