package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/sierra-agent/agent/contract"
	routerx "github.com/tanpawarit/sierra-agent/agent/router"
)

// RouteIntent asks the router what this utterance means. A classifier
// failure does not abort the turn: the decision degrades to unknown and the
// error rides along as a diagnostic so the reply step can apologize while
// the caller logs.
func RouteIntent(ctx context.Context, in *GraphState, rtr *routerx.Router) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	decision, err := rtr.Route(ctx, in.Text, in.Session)
	if err != nil {
		in.Diag = err
	}
	in.Decision = decision
	return in, nil
}
