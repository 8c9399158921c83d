package router

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/sierra-agent/agent/contract"
	statex "github.com/tanpawarit/sierra-agent/agent/state"
)

// Decision is the routing outcome for one utterance. Continue means "keep
// slot filling, treat the utterance as the awaited field value". Switched
// marks a mid-collection cancellation or topic change; the orchestrator
// resets the session before acting on the fresh intent.
type Decision struct {
	Continue bool
	Switched bool
	Intent   contractx.Intent
}

// Router classifies utterances with a keyword pass first and the model
// collaborator for everything ambiguous. It never mutates the session.
type Router struct {
	classifier contractx.Classifier
}

func New(classifier contractx.Classifier) *Router {
	return &Router{classifier: classifier}
}

// Route decides what an utterance means given the current session.
//
// On a classifier failure the decision degrades to IntentUnknown and the
// error comes back as a diagnostic alongside it, so the caller can both
// reply and log.
func (r *Router) Route(ctx context.Context, utterance string, st *statex.SessionState) (Decision, error) {
	if st != nil && st.Collecting() {
		if isCancellation(utterance) {
			return Decision{Switched: true, Intent: contractx.IntentGeneral}, nil
		}
		if kw := keywordIntent(utterance); kw != contractx.IntentNone && kw != st.ActiveIntent {
			return Decision{Switched: true, Intent: kw}, nil
		}
		return Decision{Continue: true, Intent: st.ActiveIntent}, nil
	}

	if kw := keywordIntent(utterance); kw != contractx.IntentNone {
		return Decision{Intent: kw}, nil
	}

	return r.classify(ctx, utterance)
}

func (r *Router) classify(ctx context.Context, utterance string) (Decision, error) {
	if r.classifier == nil {
		return Decision{Intent: contractx.IntentUnknown}, nil
	}

	labels := contractx.ClassifierLabels()
	label, err := r.classifier.Classify(ctx, utterance, labels)
	if err != nil {
		return Decision{Intent: contractx.IntentUnknown},
			fmt.Errorf("%w: classify utterance: %v", contractx.ErrModelInvoke, err)
	}

	label = strings.ToLower(strings.TrimSpace(label))
	switch label {
	case string(contractx.IntentOrderTracking),
		string(contractx.IntentGearRecommendation),
		string(contractx.IntentPromoCheck),
		string(contractx.IntentGeneral):
		return Decision{Intent: contractx.Intent(label)}, nil
	case contractx.LabelNone:
		return Decision{Intent: contractx.IntentUnknown}, nil
	default:
		// Off-label answer: treat as unroutable, not as a failure.
		return Decision{Intent: contractx.IntentUnknown}, nil
	}
}
