package rag

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Index ranks documents by how many distinct query terms they contain.
// Terms are lowercased and stripped of diacritics so "envío" matches "envio".
type Index struct {
	docs  []string
	terms []map[string]struct{}
}

func NewIndex(docs []string) *Index {
	idx := &Index{
		docs:  append([]string(nil), docs...),
		terms: make([]map[string]struct{}, len(docs)),
	}
	for i, d := range docs {
		set := make(map[string]struct{})
		for _, t := range Tokenize(d) {
			set[t] = struct{}{}
		}
		idx.terms[i] = set
	}
	return idx
}

func (idx *Index) Len() int { return len(idx.docs) }

// Search returns up to k documents sharing at least one term with query,
// best first. Ties keep file order.
func (idx *Index) Search(query string, k int) []string {
	if k <= 0 || len(idx.docs) == 0 {
		return nil
	}
	queryTerms := make(map[string]struct{})
	for _, t := range Tokenize(query) {
		queryTerms[t] = struct{}{}
	}

	type hit struct {
		pos   int
		score int
	}
	var hits []hit
	for i, set := range idx.terms {
		score := 0
		for t := range queryTerms {
			if _, ok := set[t]; ok {
				score++
			}
		}
		if score > 0 {
			hits = append(hits, hit{pos: i, score: score})
		}
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].score > hits[b].score })

	if len(hits) > k {
		hits = hits[:k]
	}
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = idx.docs[h.pos]
	}
	return out
}

var stopwords = map[string]struct{}{
	"el": {}, "la": {}, "los": {}, "las": {}, "de": {}, "del": {}, "y": {},
	"a": {}, "en": {}, "un": {}, "una": {}, "es": {}, "que": {}, "por": {},
	"con": {}, "para": {}, "al": {}, "lo": {}, "se": {}, "su": {},
	"the": {}, "of": {}, "and": {}, "is": {}, "to": {},
}

// Tokenize splits text into folded terms, dropping stopwords.
func Tokenize(text string) []string {
	folded := fold(text)
	fields := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if _, stop := stopwords[f]; stop {
			continue
		}
		out = append(out, f)
	}
	return out
}

func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}
