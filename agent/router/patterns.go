package router

import (
	"strings"
	"unicode"

	contractx "github.com/tanpawarit/sierra-agent/agent/contract"
)

// High-confidence trigger vocabulary. Phrases are matched against the
// normalized utterance, single words against its token set. Anything softer
// than these goes to the model collaborator.
var (
	orderPhrases = []string{
		"order status", "where is my order", "track my order", "my order",
		"order number", "delivery date", "has my order shipped",
	}
	orderWords = []string{"track", "tracking", "shipment", "shipped", "delivery"}

	promoPhrases = []string{"early riser", "discount code", "promo code", "any deals"}
	promoWords   = []string{"discount", "promo", "promotion", "coupon", "deal", "deals", "sale"}

	gearPhrases = []string{"looking for", "what should i buy", "do you have any"}
	gearWords   = []string{
		"recommend", "recommendation", "suggestion", "gear",
		"backpack", "backpacks", "tent", "tents", "jacket", "jackets",
		"boots", "sandals", "headlamp", "stove", "kayak", "binoculars",
	}

	cancelPhrases = []string{"never mind", "nevermind", "forget it", "start over"}
	cancelWords   = []string{"cancel", "stop"}
)

// keywordIntent applies the pattern pass. IntentNone means no pattern fired
// with enough confidence and the model should decide.
func keywordIntent(utterance string) contractx.Intent {
	normalized, tokens := normalize(utterance)

	switch {
	case matches(normalized, tokens, orderPhrases, orderWords):
		return contractx.IntentOrderTracking
	case matches(normalized, tokens, promoPhrases, promoWords):
		return contractx.IntentPromoCheck
	case matches(normalized, tokens, gearPhrases, gearWords):
		return contractx.IntentGearRecommendation
	default:
		return contractx.IntentNone
	}
}

func isCancellation(utterance string) bool {
	normalized, tokens := normalize(utterance)
	return matches(normalized, tokens, cancelPhrases, cancelWords)
}

func matches(normalized string, tokens map[string]struct{}, phrases, words []string) bool {
	for _, p := range phrases {
		if strings.Contains(normalized, p) {
			return true
		}
	}
	for _, w := range words {
		if _, ok := tokens[w]; ok {
			return true
		}
	}
	return false
}

func normalize(utterance string) (string, map[string]struct{}) {
	var b strings.Builder
	for _, r := range strings.ToLower(utterance) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	fields := strings.Fields(b.String())
	tokens := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		tokens[f] = struct{}{}
	}
	return strings.Join(fields, " "), tokens
}
