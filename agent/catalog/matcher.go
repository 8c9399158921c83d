package catalog

import (
	"sort"
	"strings"
	"unicode"
)

// Scored pairs a catalog item with its relevance to a query.
type Scored struct {
	Item  Item
	Score float64
}

const (
	DefaultTopK = 3

	tagWeight         = 3.0
	nameWeight        = 2.0
	descriptionWeight = 1.0
	phraseBonus       = 2.0

	// Anything below this is noise: a lone description-token overlap does
	// not count as a match.
	minRelevanceScore = 2.0
)

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "any": {}, "are": {}, "for": {},
	"i": {}, "im": {}, "in": {}, "is": {}, "it": {}, "me": {}, "my": {},
	"of": {}, "on": {}, "or": {}, "some": {}, "that": {}, "the": {},
	"to": {}, "want": {}, "with": {}, "you": {}, "your": {},
	"good": {}, "looking": {}, "need": {}, "recommend": {}, "suggest": {},
}

// Match ranks catalog items against a free-text query. It is pure and
// deterministic: same query plus same snapshot always yields the same
// ordered result. Ties keep catalog insertion order. An empty result means
// nothing scored above the relevance threshold; it is never an error.
func Match(query string, items []Item, topK int) []Scored {
	if topK <= 0 {
		topK = DefaultTopK
	}

	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return nil
	}
	normalizedQuery := strings.Join(queryTokens, " ")

	scored := make([]Scored, 0, len(items))
	for _, item := range items {
		score := scoreItem(queryTokens, normalizedQuery, item)
		if score < minRelevanceScore {
			continue
		}
		scored = append(scored, Scored{Item: item, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}

func scoreItem(queryTokens []string, normalizedQuery string, item Item) float64 {
	tags := make(map[string]struct{}, len(item.Tags))
	for _, tag := range item.Tags {
		tags[strings.ToLower(strings.TrimSpace(tag))] = struct{}{}
	}
	nameTokens := tokenSet(item.Name)
	descTokens := tokenSet(item.Description)

	var score float64
	for _, tok := range queryTokens {
		if _, ok := tags[tok]; ok {
			score += tagWeight
			continue
		}
		if _, ok := nameTokens[tok]; ok {
			score += nameWeight
			continue
		}
		if _, ok := descTokens[tok]; ok {
			score += descriptionWeight
		}
	}

	// Exact phrase hits outrank accumulated single-token overlap.
	if normalizedQuery != "" {
		loweredName := strings.ToLower(item.Name)
		if strings.Contains(loweredName, normalizedQuery) {
			score += phraseBonus
		}
		if _, ok := tags[normalizedQuery]; ok {
			score += phraseBonus
		}
	}
	return score
}

// Popular returns the fallback picks shown when nothing matches. Catalog
// order stands in for popularity.
func Popular(items []Item, n int) []Item {
	if n <= 0 || len(items) == 0 {
		return nil
	}
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, skip := stopwords[f]; skip {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

func tokenSet(text string) map[string]struct{} {
	tokens := tokenize(text)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}
