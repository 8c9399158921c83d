package orchestratornode

import (
	"fmt"

	contractx "github.com/tanpawarit/sierra-agent/agent/contract"
	statex "github.com/tanpawarit/sierra-agent/agent/state"
)

// CollectSlots advances the slot-filling machine. It either banks the
// utterance as the awaited field value, re-asks on a validation miss, or
// activates a freshly routed intent and queues its first question. When it
// leaves Reply empty the dispatch step owns the turn.
func CollectSlots(in *GraphState) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}
	st := in.Session

	if in.Decision.Switched {
		st.Reset(in.Now)
	}

	if in.Decision.Continue {
		return collectField(in)
	}

	switch in.Decision.Intent {
	case contractx.IntentOrderTracking, contractx.IntentGearRecommendation, contractx.IntentPromoCheck:
		if err := st.BeginIntent(in.Decision.Intent, in.Now); err != nil {
			return nil, err
		}
		if st.Collecting() {
			in.Reply = askForPhase(st.Phase)
		}
	case contractx.IntentGeneral, contractx.IntentUnknown:
		// No slots to collect; dispatch handles the reply.
	default:
		return nil, fmt.Errorf("%w: unroutable intent %q", contractx.ErrUnknownIntent, in.Decision.Intent)
	}
	return in, nil
}

func collectField(in *GraphState) (*GraphState, error) {
	st := in.Session

	switch st.Phase {
	case statex.PhaseAwaitingEmail:
		email, ok := statex.ValidEmail(in.Text)
		if !ok {
			// Validation failure re-asks; the state does not advance.
			in.Reply = replyInvalidEmail
			return in, nil
		}
		st.SetField(statex.FieldEmail, email, in.Now)
	case statex.PhaseAwaitingOrderNumber:
		number, ok := statex.ValidOrderNumber(in.Text)
		if !ok {
			in.Reply = replyInvalidOrderNumber
			return in, nil
		}
		st.SetField(statex.FieldOrderNumber, number, in.Now)
	default:
		return nil, fmt.Errorf("%w: continue decision in phase %q", statex.ErrInvalidTransition, st.Phase)
	}

	if st.Collecting() {
		in.Reply = askForPhase(st.Phase)
	}
	return in, nil
}

func askForPhase(phase statex.Phase) string {
	if phase == statex.PhaseAwaitingOrderNumber {
		return askOrderNumber
	}
	return askEmail
}
