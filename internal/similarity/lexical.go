// Package similarity provides the text similarity backends used by the
// greedy assignment policy.
package similarity

import (
	"context"
	"strings"
	"unicode"

	"gonum.org/v1/gonum/floats"

	"github.com/dyluth/prdflow/pkg/assign"
)

// stopwords are dropped before vectorizing. Generated stories share the
// "As a user, I want ... so that I can improve productivity." frame, which
// would otherwise dominate every comparison.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true, "be": true,
	"by": true, "can": true, "for": true, "from": true, "i": true, "improve": true,
	"in": true, "is": true, "it": true, "of": true, "on": true, "or": true,
	"productivity": true, "so": true, "that": true, "the": true, "to": true,
	"user": true, "want": true, "with": true,
}

// Lexical scores texts by cosine similarity of their term-frequency vectors.
// It needs no network access and is deterministic.
type Lexical struct{}

var _ assign.Similarity = (*Lexical)(nil)

// NewLexical creates a lexical similarity backend.
func NewLexical() *Lexical {
	return &Lexical{}
}

// Scores returns cosine(text, candidate) for each candidate.
func (l *Lexical) Scores(ctx context.Context, text string, candidates []string) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vocab := make(map[string]int)
	docs := make([][]string, 0, len(candidates)+1)
	for _, doc := range append([]string{text}, candidates...) {
		tokens := Tokenize(doc)
		for _, tok := range tokens {
			if _, ok := vocab[tok]; !ok {
				vocab[tok] = len(vocab)
			}
		}
		docs = append(docs, tokens)
	}

	query := termVector(docs[0], vocab)
	scores := make([]float64, len(candidates))
	for i, tokens := range docs[1:] {
		scores[i] = Cosine(query, termVector(tokens, vocab))
	}
	return scores, nil
}

// Tokenize lowercases s, splits it on anything that is not a letter or digit
// and drops stopwords.
func Tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := fields[:0]
	for _, f := range fields {
		if !stopwords[f] {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

func termVector(tokens []string, vocab map[string]int) []float64 {
	v := make([]float64, len(vocab))
	for _, tok := range tokens {
		v[vocab[tok]]++
	}
	return v
}

// Cosine returns the cosine similarity of a and b, or 0 when either has no
// magnitude. a and b must have the same length.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(a, b) / (na * nb)
}
