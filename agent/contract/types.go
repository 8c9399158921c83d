package contract

import "fmt"

type AgentType string

const (
	AgentTypeClassifier AgentType = "classifier"
	AgentTypeResponder  AgentType = "responder"
)

// Intent is the fulfillment category a user utterance routes to.
type Intent string

const (
	IntentNone               Intent = ""
	IntentOrderTracking      Intent = "order_tracking"
	IntentGearRecommendation Intent = "gear_recommendation"
	IntentPromoCheck         Intent = "promo_check"
	IntentGeneral            Intent = "general"
	IntentUnknown            Intent = "unknown"
)

// LabelNone is what the classifier answers when no intent applies. The
// router maps it to IntentUnknown.
const LabelNone = "none"

// ClassifierLabels is the fixed label set handed to the model collaborator.
// The classifier must answer with exactly one of these.
func ClassifierLabels() []string {
	return []string{
		string(IntentOrderTracking),
		string(IntentGearRecommendation),
		string(IntentPromoCheck),
		string(IntentGeneral),
		LabelNone,
	}
}

// OrderRecord is the read-only order row surfaced by the lookup collaborator.
type OrderRecord struct {
	OrderNumber    string `json:"OrderNumber"`
	Email          string `json:"Email"`
	Status         string `json:"Status"`
	TrackingNumber string `json:"TrackingNumber,omitempty"`
}

// TrackingURL returns the carrier tracking link, or "" when no tracking
// number has been assigned yet.
func (r OrderRecord) TrackingURL() string {
	if r.TrackingNumber == "" {
		return ""
	}
	return fmt.Sprintf("https://tools.usps.com/go/TrackConfirmAction?tLabels=%s", r.TrackingNumber)
}

// ChatTurn is one user or assistant message kept for persona context.
type ChatTurn struct {
	Role    string `json:"role"` // "user" | "assistant"
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
