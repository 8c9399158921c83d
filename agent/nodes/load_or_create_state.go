package orchestratornode

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/tanpawarit/sierra-agent/agent/contract"
	statex "github.com/tanpawarit/sierra-agent/agent/state"
)

// LoadOrCreateState fetches the session or starts a fresh one, and counts
// the turn. Every utterance that reaches the pipeline is a turn, including
// ones that fail validation later.
func LoadOrCreateState(ctx context.Context, in *GraphState, store statex.Store) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	st, err := store.Load(ctx, in.SessionID)
	if err != nil {
		if !errors.Is(err, statex.ErrStateNotFound) {
			return nil, err
		}
		st = statex.NewSessionState(in.SessionID, in.Now)
	}

	st.TurnCount++
	in.Session = st
	return in, nil
}
