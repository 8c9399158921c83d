package state

import (
	"errors"
	"fmt"
	"time"

	contractx "github.com/tanpawarit/sierra-agent/agent/contract"
)

// Phase is the slot-filling position inside the active intent.
type Phase string

const (
	PhaseIdle                Phase = "idle"
	PhaseAwaitingEmail       Phase = "awaiting_email"
	PhaseAwaitingOrderNumber Phase = "awaiting_order_number"
	PhaseReady               Phase = "ready"
)

const (
	FieldEmail       = "email"
	FieldOrderNumber = "order_number"
)

// maxHistoryTurns bounds persona context so a long session cannot grow the
// prompt without limit.
const maxHistoryTurns = 20

var (
	ErrInvalidSession    = errors.New("session id is empty")
	ErrInvalidTransition = errors.New("invalid session transition")
)

// SessionState is the per-conversation mutable state. One session is one
// linear exchange: the orchestrator owns it exclusively and mutates it on
// every turn. It never outlives the session.
type SessionState struct {
	SessionID string `json:"session_id"`

	ActiveIntent contractx.Intent  `json:"active_intent,omitempty"`
	Phase        Phase             `json:"phase"`
	Fields       map[string]string `json:"fields,omitempty"`

	History   []contractx.ChatTurn `json:"history,omitempty"`
	TurnCount int                  `json:"turn_count"`
	UpdatedAt time.Time            `json:"updated_at"`
}

func NewSessionState(sessionID string, now time.Time) *SessionState {
	return &SessionState{
		SessionID: sessionID,
		Phase:     PhaseIdle,
		Fields:    make(map[string]string, 2),
		UpdatedAt: now.UTC(),
	}
}

func (s *SessionState) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

func (s *SessionState) EnsureFields() {
	if s.Fields == nil {
		s.Fields = make(map[string]string, 2)
	}
}

// RequiredFields lists the slots an intent needs before its action may run,
// in the order they are asked for.
func RequiredFields(intent contractx.Intent) []string {
	if intent == contractx.IntentOrderTracking {
		return []string{FieldEmail, FieldOrderNumber}
	}
	return nil
}

// BeginIntent activates an intent and positions the phase at the first
// missing slot, or at ready when nothing needs collecting.
func (s *SessionState) BeginIntent(intent contractx.Intent, now time.Time) error {
	switch intent {
	case contractx.IntentOrderTracking, contractx.IntentGearRecommendation, contractx.IntentPromoCheck:
	default:
		return fmt.Errorf("%w: intent %q cannot be activated", ErrInvalidTransition, intent)
	}
	s.EnsureFields()
	s.ActiveIntent = intent
	s.recomputePhase()
	s.Touch(now)
	return nil
}

// MissingField returns the next uncollected required slot.
func (s *SessionState) MissingField() (string, bool) {
	for _, f := range RequiredFields(s.ActiveIntent) {
		if s.Fields[f] == "" {
			return f, true
		}
	}
	return "", false
}

// SetField stores a collected slot value and advances the phase.
func (s *SessionState) SetField(key, value string, now time.Time) {
	s.EnsureFields()
	s.Fields[key] = value
	s.recomputePhase()
	s.Touch(now)
}

func (s *SessionState) recomputePhase() {
	if s.ActiveIntent == contractx.IntentNone {
		s.Phase = PhaseIdle
		return
	}
	missing, ok := s.MissingField()
	if !ok {
		s.Phase = PhaseReady
		return
	}
	switch missing {
	case FieldEmail:
		s.Phase = PhaseAwaitingEmail
	case FieldOrderNumber:
		s.Phase = PhaseAwaitingOrderNumber
	default:
		s.Phase = PhaseReady
	}
}

// Collecting reports whether the session is mid slot-filling, i.e. the next
// utterance should be treated as a field value rather than re-routed.
func (s *SessionState) Collecting() bool {
	return s != nil && (s.Phase == PhaseAwaitingEmail || s.Phase == PhaseAwaitingOrderNumber)
}

// Reset returns the session to idle and clears collected fields. History and
// turn count survive; they belong to the conversation, not the intent.
func (s *SessionState) Reset(now time.Time) {
	s.ActiveIntent = contractx.IntentNone
	s.Phase = PhaseIdle
	s.Fields = make(map[string]string, 2)
	s.Touch(now)
}

// AppendHistory records a persona-context turn, dropping the oldest entries
// past the bound.
func (s *SessionState) AppendHistory(role, content string) {
	s.History = append(s.History, contractx.ChatTurn{Role: role, Content: content})
	if len(s.History) > maxHistoryTurns {
		s.History = s.History[len(s.History)-maxHistoryTurns:]
	}
}

func (s *SessionState) Validate() error {
	if s.SessionID == "" {
		return ErrInvalidSession
	}
	if s.TurnCount < 0 {
		return fmt.Errorf("turn count must be >= 0, got %d", s.TurnCount)
	}
	switch s.Phase {
	case PhaseIdle:
		if s.ActiveIntent != contractx.IntentNone {
			return fmt.Errorf("%w: idle phase with active intent %q", ErrInvalidTransition, s.ActiveIntent)
		}
	case PhaseAwaitingEmail, PhaseAwaitingOrderNumber:
		if s.ActiveIntent != contractx.IntentOrderTracking {
			return fmt.Errorf("%w: phase %q requires order tracking intent", ErrInvalidTransition, s.Phase)
		}
	case PhaseReady:
		if s.ActiveIntent == contractx.IntentNone {
			return fmt.Errorf("%w: ready phase without active intent", ErrInvalidTransition)
		}
		if missing, ok := s.MissingField(); ok {
			return fmt.Errorf("%w: ready phase with missing field %q", ErrInvalidTransition, missing)
		}
	default:
		return fmt.Errorf("%w: unknown phase %q", ErrInvalidTransition, s.Phase)
	}
	return nil
}

// Clone deep-copies the session so stores never hand out aliased state.
func (s *SessionState) Clone() *SessionState {
	if s == nil {
		return nil
	}
	out := *s
	out.Fields = make(map[string]string, len(s.Fields))
	for k, v := range s.Fields {
		out.Fields[k] = v
	}
	if s.History != nil {
		out.History = append([]contractx.ChatTurn(nil), s.History...)
	}
	return &out
}
