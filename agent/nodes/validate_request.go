package orchestratornode

import (
	"errors"
	"strings"
	"time"

	routerx "github.com/tanpawarit/sierra-agent/agent/router"
	statex "github.com/tanpawarit/sierra-agent/agent/state"
)

var (
	ErrInvalidMessage = errors.New("message is empty")
	ErrInvalidSession = errors.New("session id is empty")
)

type GraphInput struct {
	SessionID string
	Text      string
}

type GraphOutput struct {
	Reply string
	// Diag carries a collaborator failure that was already converted into a
	// user-facing reply. The caller logs it; the session does not see it.
	Diag error
}

type GraphState struct {
	SessionID string
	Text      string
	Now       time.Time

	Session  *statex.SessionState
	Decision routerx.Decision

	Reply string
	Diag  error
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	return &GraphState{
		SessionID: sessionID,
		Text:      text,
		Now:       nowFn().UTC(),
	}, nil
}
