package guess

import (
	"path"
	"strings"
	"unicode/utf8"

	"github.com/leandrodaf/midiguess/sdk/contracts"
)

// DefaultMatchConfig accepts scores below 0.8 anywhere in the target.
func DefaultMatchConfig() contracts.MatchConfig {
	return contracts.MatchConfig{
		Threshold:          0.8,
		Distance:           100,
		IgnoreLocation:     true,
		MinCandidateLength: 3,
	}
}

// Matcher decides whether any guess variant resembles a target name.
type Matcher struct {
	cfg contracts.MatchConfig
}

// NewMatcher returns a matcher with the given tuning.
func NewMatcher(cfg contracts.MatchConfig) *Matcher {
	return &Matcher{cfg: cfg}
}

// TargetName turns a song file name into the string guesses are matched
// against: base name, no .mid/.midi extension, lower case.
func TargetName(file string) string {
	base := path.Base(strings.ReplaceAll(file, "\\", "/"))
	ext := strings.ToLower(path.Ext(base))
	if ext == ".mid" || ext == ".midi" {
		base = base[:len(base)-len(ext)]
	}
	return lower(base)
}

// Match scores every candidate against target and keeps the best one.
// Candidates shorter than MinCandidateLength are skipped unless they equal
// target.
func (m *Matcher) Match(target string, candidates []string) contracts.GuessResult {
	var best *float64
	for _, c := range candidates {
		if c == "" || (c != target && utf8.RuneCountInString(c) < m.cfg.MinCandidateLength) {
			continue
		}
		s := m.Score(target, c)
		if best == nil || s < *best {
			v := s
			best = &v
		}
	}
	return contracts.GuessResult{
		Matched: best != nil && *best < m.cfg.Threshold,
		Score:   best,
	}
}

// Score returns how badly pattern fits somewhere inside target: 0 is an exact
// occurrence, 1 is no resemblance. The error count of the best approximate
// occurrence is divided by the pattern length; unless IgnoreLocation is set,
// the distance of that occurrence from the start of target is added,
// scaled by Distance.
func (m *Matcher) Score(target, pattern string) float64 {
	p := []rune(pattern)
	if len(p) == 0 {
		return 1
	}
	errs, start := approximateOccurrence([]rune(target), p)
	score := float64(errs) / float64(len(p))
	if !m.cfg.IgnoreLocation {
		if m.cfg.Distance <= 0 {
			if start > 0 {
				return 1
			}
		} else {
			score += float64(start) / float64(m.cfg.Distance)
		}
	}
	if score > 1 {
		score = 1
	}
	return score
}

// approximateOccurrence finds the substring of text with the smallest edit
// distance to pattern. It returns that distance and the substring's start
// offset, preferring the leftmost start on ties.
func approximateOccurrence(text, pattern []rune) (errs, start int) {
	n := len(text)
	prev := make([]int, n+1)
	prevStart := make([]int, n+1)
	cur := make([]int, n+1)
	curStart := make([]int, n+1)
	for j := 0; j <= n; j++ {
		prevStart[j] = j
	}
	for i := 1; i <= len(pattern); i++ {
		cur[0] = i
		curStart[0] = 0
		for j := 1; j <= n; j++ {
			cost := 1
			if pattern[i-1] == text[j-1] {
				cost = 0
			}
			d, s := prev[j-1]+cost, prevStart[j-1]
			if v := prev[j] + 1; v < d || (v == d && prevStart[j] < s) {
				d, s = v, prevStart[j]
			}
			if v := cur[j-1] + 1; v < d || (v == d && curStart[j-1] < s) {
				d, s = v, curStart[j-1]
			}
			cur[j], curStart[j] = d, s
		}
		prev, cur = cur, prev
		prevStart, curStart = curStart, prevStart
	}
	errs, start = prev[0], prevStart[0]
	for j := 1; j <= n; j++ {
		if prev[j] < errs || (prev[j] == errs && prevStart[j] < start) {
			errs, start = prev[j], prevStart[j]
		}
	}
	return errs, start
}
