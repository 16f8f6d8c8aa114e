package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripDiacritics decomposes accented characters and drops the combining
// marks, so "José" and "Jose" compare equal.
var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Email lowercases and trims an email address. Missing input stays "".
func Email(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Name canonicalizes a person/company name: lowercase, diacritics stripped,
// punctuation stripped, internal whitespace collapsed to single spaces.
func Name(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	stripped, _, err := transform.String(stripDiacritics, lowered)
	if err != nil {
		stripped = lowered
	}
	var b strings.Builder
	b.Grow(len(stripped))
	lastSpace := true
	for _, r := range stripped {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
		// punctuation and symbols are dropped
	}
	return strings.TrimRight(b.String(), " ")
}

// NameSimilarity scores two names in [0,1] by token containment: tokens of
// length > 2 from a count as hits when they contain, or are contained in,
// some token of b; the hit count is divided by the larger token count.
//
// The metric is directional by construction (a's tokens are the ones
// counted); both sides of the matching cascade call it with the ledger name
// first, so the asymmetry is deliberate here rather than averaged away.
func NameSimilarity(a, b string) float64 {
	tokensA := similarityTokens(Name(a))
	tokensB := similarityTokens(Name(b))
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}
	hits := 0
	for _, ta := range tokensA {
		for _, tb := range tokensB {
			if strings.Contains(ta, tb) || strings.Contains(tb, ta) {
				hits++
				break
			}
		}
	}
	max := len(tokensA)
	if len(tokensB) > max {
		max = len(tokensB)
	}
	return float64(hits) / float64(max)
}

func similarityTokens(name string) []string {
	var tokens []string
	for _, word := range strings.Fields(name) {
		if len(word) > 2 {
			tokens = append(tokens, word)
		}
	}
	return tokens
}
