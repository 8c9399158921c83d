package orchestratornode

import (
	"context"
	"errors"
	"fmt"

	catalogx "github.com/tanpawarit/sierra-agent/agent/catalog"
	contractx "github.com/tanpawarit/sierra-agent/agent/contract"
	promox "github.com/tanpawarit/sierra-agent/agent/promo"
	statex "github.com/tanpawarit/sierra-agent/agent/state"
)

// Handlers bundles the collaborators the fulfillment step needs. Catalog is
// an immutable snapshot; a refresh replaces the whole slice upstream.
type Handlers struct {
	Orders    contractx.OrderLookup
	Responder contractx.Responder
	Catalog   []catalogx.Item
	Window    promox.Window
	Clock     contractx.Clock
	TopK      int
}

// DispatchHandler executes the intent that reached ready, or answers the
// general/unknown path. Collaborator failures become an apology reply plus
// a diagnostic; they never abort the turn.
func DispatchHandler(ctx context.Context, in *GraphState, deps Handlers) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	// A question queued by slot collection owns this turn.
	if in.Reply != "" {
		return in, nil
	}
	if in.Diag != nil {
		in.Reply = ReplyApology
		return in, nil
	}

	st := in.Session
	if st.Phase == statex.PhaseReady {
		return dispatchReady(ctx, in, deps)
	}
	return dispatchConversational(ctx, in, deps)
}

func dispatchReady(ctx context.Context, in *GraphState, deps Handlers) (*GraphState, error) {
	st := in.Session

	switch st.ActiveIntent {
	case contractx.IntentOrderTracking:
		email := st.Fields[statex.FieldEmail]
		number := st.Fields[statex.FieldOrderNumber]

		record, err := deps.Orders.Lookup(ctx, email, number)
		switch {
		case err == nil:
			in.Reply = formatOrderReply(record)
		case errors.Is(err, contractx.ErrOrderNotFound):
			// Uniform miss reply: never hint whether email or number failed.
			in.Reply = replyOrderMiss
		default:
			// Lookup infrastructure failure. Keep the session at ready so a
			// follow-up utterance can retry without re-collecting fields.
			in.Reply = ReplyApology
			in.Diag = fmt.Errorf("%w: order lookup: %v", contractx.ErrModelInvoke, err)
			return in, nil
		}
		st.Reset(in.Now)

	case contractx.IntentGearRecommendation:
		matches := catalogx.Match(in.Text, deps.Catalog, deps.TopK)
		if len(matches) == 0 {
			in.Reply = formatPopularFallback(catalogx.Popular(deps.Catalog, deps.TopK))
		} else {
			in.Reply = formatGearReply(matches)
		}
		st.Reset(in.Now)

	case contractx.IntentPromoCheck:
		now := deps.Clock()
		if deps.Window.Active(now) {
			in.Reply = formatPromoActive(promox.NewCode())
		} else {
			in.Reply = formatPromoInactive(deps.Window, now)
		}
		st.Reset(in.Now)

	default:
		return nil, fmt.Errorf("%w: ready phase with intent %q", statex.ErrInvalidTransition, st.ActiveIntent)
	}
	return in, nil
}

func dispatchConversational(ctx context.Context, in *GraphState, deps Handlers) (*GraphState, error) {
	st := in.Session

	if in.Decision.Intent == contractx.IntentGeneral && deps.Responder != nil {
		reply, err := deps.Responder.Reply(ctx, st.History, in.Text)
		if err != nil {
			in.Reply = ReplyApology
			in.Diag = err
			return in, nil
		}
		st.AppendHistory(contractx.RoleUser, in.Text)
		st.AppendHistory(contractx.RoleAssistant, reply)
		in.Reply = reply
		return in, nil
	}

	in.Reply = replyClarify
	return in, nil
}
