package orchestratornode

import (
	"fmt"
	"strings"
	"time"

	catalogx "github.com/tanpawarit/sierra-agent/agent/catalog"
	contractx "github.com/tanpawarit/sierra-agent/agent/contract"
	promox "github.com/tanpawarit/sierra-agent/agent/promo"
)

// User-facing copy lives here so handlers stay logic-only and tests can
// assert on exact strings.
const (
	ReplyApology = "Oops! Looks like I'm having trouble reaching the trailhead 🥾. Try again in a moment?"

	// ReplyDidntCatch answers an empty utterance.
	ReplyDidntCatch = "I didn't catch that — what can I help you with? 🏕️"

	askEmail                = "Happy to check on your order! 📦 What's the email address on the order?"
	askOrderNumber          = "Got it! And what's your order number?"
	replyInvalidEmail       = "Hmm, that doesn't look like an email address — I need something like you@example.com to find the order."
	replyInvalidOrderNumber = "That order number doesn't look right — it should be letters and numbers, like W0001. Mind double-checking?"

	// replyOrderMiss is identical no matter which field failed to match.
	replyOrderMiss = "We couldn't find an order with that email and order number. Double-check both and try again! 🧭"

	replyClarify = "I can track an order 📦, recommend gear 🎒, or check our current promotions 🏷️ — which would you like?"
)

func formatOrderReply(record contractx.OrderRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order #%s is %s. 🏔️", record.OrderNumber, humanStatus(record.Status))
	if url := record.TrackingURL(); url != "" {
		fmt.Fprintf(&b, " Track it here: %s", url)
	}
	return b.String()
}

func humanStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "in-transit", "in transit":
		return "on its way"
	case "delivered":
		return "delivered"
	case "fulfilled":
		return "fulfilled and heading out"
	case "error":
		return "held up — our trail crew is on it"
	default:
		return strings.ToLower(strings.TrimSpace(status))
	}
}

func formatGearReply(matches []catalogx.Scored) string {
	var b strings.Builder
	b.WriteString("Here's what I'd grab for that: 🎒")
	for _, m := range matches {
		fmt.Fprintf(&b, "\n• %s — %s", m.Item.Name, m.Item.Description)
	}
	return b.String()
}

func formatPopularFallback(picks []catalogx.Item) string {
	if len(picks) == 0 {
		return "I couldn't find a close match for that — tell me a bit more about the adventure you're planning? ⛰️"
	}
	var b strings.Builder
	b.WriteString("I couldn't find a close match, but here are some trail favorites: 🌲")
	for _, item := range picks {
		fmt.Fprintf(&b, "\n• %s — %s", item.Name, item.Description)
	}
	return b.String()
}

func formatPromoActive(code string) string {
	return fmt.Sprintf(
		"Rise and shine — you've caught the Early Riser promotion! 🌄 Use code %s for %d%% off.",
		code, promox.DiscountPercent,
	)
}

func formatPromoInactive(window promox.Window, now time.Time) string {
	next := window.Next(now)
	return fmt.Sprintf(
		"The Early Riser promotion runs %s daily. The next window opens %s — set an alarm! ⏰",
		window.Describe(),
		next.Format("Monday at 3:04 PM MST"),
	)
}
