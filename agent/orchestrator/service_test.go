package orchestrator

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	catalogx "github.com/tanpawarit/sierra-agent/agent/catalog"
	contractx "github.com/tanpawarit/sierra-agent/agent/contract"
	routerx "github.com/tanpawarit/sierra-agent/agent/router"
	statex "github.com/tanpawarit/sierra-agent/agent/state"
)

type fakeClassifier struct {
	label string
	err   error
	calls int
}

func (f *fakeClassifier) Classify(ctx context.Context, utterance string, labels []string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.label, nil
}

type lookupCall struct {
	email  string
	number string
}

type fakeOrders struct {
	records []contractx.OrderRecord
	err     error
	calls   []lookupCall
}

func (f *fakeOrders) Lookup(_ context.Context, email, number string) (contractx.OrderRecord, error) {
	f.calls = append(f.calls, lookupCall{email: email, number: number})
	if f.err != nil {
		return contractx.OrderRecord{}, f.err
	}
	for _, r := range f.records {
		if strings.EqualFold(r.Email, email) && r.OrderNumber == number {
			return r, nil
		}
	}
	return contractx.OrderRecord{}, contractx.ErrOrderNotFound
}

type fakeResponder struct {
	reply       string
	err         error
	calls       int
	lastHistory int
}

func (f *fakeResponder) Reply(_ context.Context, history []contractx.ChatTurn, _ string) (string, error) {
	f.calls++
	f.lastHistory = len(history)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func testCatalog() []catalogx.Item {
	return []catalogx.Item{
		{
			Name:        "Summit Pro Backpack",
			Description: "65L waterproof pack for multi-day treks.",
			Tags:        []string{"backpack", "waterproof", "winter"},
		},
		{
			Name:        "Riverbed Sandals",
			Description: "Quick-dry sandals for warm-weather trails.",
			Tags:        []string{"sandals", "summer"},
		},
		{
			Name:        "Basecamp Lantern",
			Description: "Rechargeable lantern with a week of glow.",
			Tags:        []string{"lighting", "camping"},
		},
	}
}

func fixedClock(instant time.Time) contractx.Clock {
	return func() time.Time { return instant }
}

// 12:00 Pacific in January: outside the promo window, inside business hours.
var quietAfternoon = time.Date(2026, time.January, 15, 20, 0, 0, 0, time.UTC)

type fixture struct {
	orch       *Orchestrator
	store      *statex.MemoryStore
	classifier *fakeClassifier
	orders     *fakeOrders
	responder  *fakeResponder
}

func newFixture(t *testing.T, clock contractx.Clock) *fixture {
	t.Helper()

	f := &fixture{
		store:      statex.NewMemoryStore(),
		classifier: &fakeClassifier{label: "general"},
		orders: &fakeOrders{records: []contractx.OrderRecord{
			{OrderNumber: "W001", Email: "amy@example.com", Status: "in-transit", TrackingNumber: "940011"},
			{OrderNumber: "W002", Email: "ben@example.com", Status: "delivered", TrackingNumber: "940012"},
		}},
		responder: &fakeResponder{reply: "Happy trails! 🏔️"},
	}
	if clock == nil {
		clock = fixedClock(quietAfternoon)
	}

	orch, err := New(
		f.store,
		routerx.New(f.classifier),
		f.orders,
		f.responder,
		testCatalog(),
		Config{Clock: clock},
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	f.orch = orch
	return f
}

func (f *fixture) turn(t *testing.T, sessionID, text string) string {
	t.Helper()
	reply, err := f.orch.HandleTurn(context.Background(), sessionID, text)
	if err != nil {
		t.Fatalf("HandleTurn(%q) error = %v", text, err)
	}
	return reply
}

func (f *fixture) session(t *testing.T, sessionID string) *statex.SessionState {
	t.Helper()
	st, err := f.store.Load(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("Load(%q) error = %v", sessionID, err)
	}
	return st
}

func TestOrderTrackingRoundTrip(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	first := f.turn(t, "s1", "track my order")
	if !strings.Contains(first, "email") {
		t.Fatalf("first reply = %q, want an email prompt", first)
	}
	if st := f.session(t, "s1"); st.Phase != statex.PhaseAwaitingEmail {
		t.Fatalf("phase = %s, want awaiting_email", st.Phase)
	}

	second := f.turn(t, "s1", "amy@example.com")
	if !strings.Contains(second, "order number") {
		t.Fatalf("second reply = %q, want an order number prompt", second)
	}

	third := f.turn(t, "s1", "W001")
	if !strings.Contains(third, "on its way") {
		t.Fatalf("third reply = %q, want the in-transit status", third)
	}
	if !strings.Contains(third, "https://tools.usps.com/go/TrackConfirmAction?tLabels=940011") {
		t.Fatalf("third reply = %q, want the tracking link", third)
	}

	if len(f.orders.calls) != 1 {
		t.Fatalf("lookup calls = %d, want exactly 1", len(f.orders.calls))
	}
	if got := f.orders.calls[0]; got.email != "amy@example.com" || got.number != "W001" {
		t.Fatalf("lookup called with %+v", got)
	}

	st := f.session(t, "s1")
	if st.Phase != statex.PhaseIdle || st.ActiveIntent != contractx.IntentNone {
		t.Fatalf("session after fulfillment = %+v, want idle", st)
	}
	if st.TurnCount != 3 {
		t.Fatalf("turn count = %d, want 3", st.TurnCount)
	}
	if f.classifier.calls != 0 {
		t.Fatalf("classifier calls = %d, slot filling must not consult the model", f.classifier.calls)
	}
}

func TestOrderNumberWithHashPrefix(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	f.turn(t, "s1", "track my order")
	f.turn(t, "s1", "amy@example.com")
	f.turn(t, "s1", "#W001")

	if len(f.orders.calls) != 1 || f.orders.calls[0].number != "W001" {
		t.Fatalf("lookup calls = %+v, want one call with W001", f.orders.calls)
	}
}

func TestOrderMissReplyIsUniform(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	f.turn(t, "a", "track my order")
	f.turn(t, "a", "stranger@example.com")
	wrongEmail := f.turn(t, "a", "W001")

	f.turn(t, "b", "track my order")
	f.turn(t, "b", "amy@example.com")
	wrongNumber := f.turn(t, "b", "W999")

	if wrongEmail != wrongNumber {
		t.Fatalf("miss replies differ:\n  wrong email:  %q\n  wrong number: %q", wrongEmail, wrongNumber)
	}
	if st := f.session(t, "a"); st.Phase != statex.PhaseIdle {
		t.Fatalf("phase after miss = %s, want idle", st.Phase)
	}
}

func TestInvalidEmailReasksWithoutAdvancing(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	f.turn(t, "s1", "track my order")
	reply := f.turn(t, "s1", "not an email")
	if !strings.Contains(reply, "email") {
		t.Fatalf("reply = %q, want an email re-ask", reply)
	}
	if st := f.session(t, "s1"); st.Phase != statex.PhaseAwaitingEmail {
		t.Fatalf("phase = %s, want still awaiting_email", st.Phase)
	}
	if len(f.orders.calls) != 0 {
		t.Fatal("lookup must not run before both fields are collected")
	}
}

func TestInvalidOrderNumberReasks(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	f.turn(t, "s1", "track my order")
	f.turn(t, "s1", "amy@example.com")
	reply := f.turn(t, "s1", "???")
	if !strings.Contains(reply, "order number") {
		t.Fatalf("reply = %q, want an order number re-ask", reply)
	}
	if st := f.session(t, "s1"); st.Phase != statex.PhaseAwaitingOrderNumber {
		t.Fatalf("phase = %s, want still awaiting_order_number", st.Phase)
	}
}

func TestGearRecommendationMatchesCatalog(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	reply := f.turn(t, "s1", "can you recommend a waterproof backpack?")
	if !strings.Contains(reply, "Summit Pro Backpack") {
		t.Fatalf("reply = %q, want the backpack pick", reply)
	}
	if st := f.session(t, "s1"); st.Phase != statex.PhaseIdle {
		t.Fatalf("phase = %s, want idle after one-shot fulfillment", st.Phase)
	}
}

func TestGearRecommendationFallsBackToPopular(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	reply := f.turn(t, "s1", "recommend something")
	if !strings.Contains(reply, "trail favorites") {
		t.Fatalf("reply = %q, want the popular fallback", reply)
	}
}

func TestPromoCheckInsideWindow(t *testing.T) {
	t.Parallel()
	// 08:30 Pacific Standard Time.
	f := newFixture(t, fixedClock(time.Date(2026, time.January, 15, 16, 30, 0, 0, time.UTC)))

	reply := f.turn(t, "s1", "any deals right now?")
	if !regexp.MustCompile(`SIERRA-[0-9A-F]{4}`).MatchString(reply) {
		t.Fatalf("reply = %q, want a SIERRA-XXXX code", reply)
	}
	if !strings.Contains(reply, "10% off") {
		t.Fatalf("reply = %q, want the discount percentage", reply)
	}
}

func TestPromoCheckOutsideWindow(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	reply := f.turn(t, "s1", "any deals right now?")
	if strings.Contains(reply, "SIERRA-") {
		t.Fatalf("reply = %q, must not mint a code outside the window", reply)
	}
	if !strings.Contains(reply, "8 AM-10 AM Pacific Time") {
		t.Fatalf("reply = %q, want the window description", reply)
	}
}

func TestGeneralIntentUsesResponder(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	reply := f.turn(t, "s1", "hello there!")
	if reply != f.responder.reply {
		t.Fatalf("reply = %q, want the responder's answer", reply)
	}
	if f.responder.calls != 1 {
		t.Fatalf("responder calls = %d, want 1", f.responder.calls)
	}

	st := f.session(t, "s1")
	if len(st.History) != 2 {
		t.Fatalf("history length = %d, want user+assistant turns", len(st.History))
	}
	if st.History[0].Role != contractx.RoleUser || st.History[1].Role != contractx.RoleAssistant {
		t.Fatalf("history roles = %+v", st.History)
	}

	// A second general turn hands the prior exchange to the responder.
	f.turn(t, "s1", "tell me more")
	if f.responder.lastHistory != 2 {
		t.Fatalf("history handed to responder = %d turns, want 2", f.responder.lastHistory)
	}
}

func TestUnknownIntentAsksForClarification(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	f.classifier.label = "none"

	reply := f.turn(t, "s1", "xyzzy plugh")
	if !strings.Contains(reply, "track an order") {
		t.Fatalf("reply = %q, want the capability menu", reply)
	}
}

func TestClassifierFailureDegradesToApology(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	f.classifier.err = errors.New("model down")

	reply, err := f.orch.HandleTurn(context.Background(), "s1", "hello there!")
	if reply != "Oops! Looks like I'm having trouble reaching the trailhead 🥾. Try again in a moment?" {
		t.Fatalf("reply = %q, want the apology", reply)
	}
	if !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("diagnostic = %v, want ErrModelInvoke", err)
	}

	// The session survived the failure and keeps counting turns.
	if st := f.session(t, "s1"); st.TurnCount != 1 {
		t.Fatalf("turn count = %d, want 1", st.TurnCount)
	}
}

func TestResponderFailureDegradesToApology(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	f.responder.err = errors.New("model down")

	reply, err := f.orch.HandleTurn(context.Background(), "s1", "hello there!")
	if err == nil {
		t.Fatal("want a diagnostic error from the responder failure")
	}
	if !strings.Contains(reply, "Oops!") {
		t.Fatalf("reply = %q, want the apology", reply)
	}
	if st := f.session(t, "s1"); len(st.History) != 0 {
		t.Fatalf("history = %+v, a failed reply must not be recorded", st.History)
	}
}

func TestLookupInfraFailureKeepsSessionReadyForRetry(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	f.orders.err = errors.New("db down")

	f.turn(t, "s1", "track my order")
	f.turn(t, "s1", "amy@example.com")
	reply, err := f.orch.HandleTurn(context.Background(), "s1", "W001")
	if !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("diagnostic = %v, want ErrModelInvoke", err)
	}
	if !strings.Contains(reply, "Oops!") {
		t.Fatalf("reply = %q, want the apology", reply)
	}
	if st := f.session(t, "s1"); st.Phase != statex.PhaseReady {
		t.Fatalf("phase = %s, collected fields must survive an infra failure", st.Phase)
	}

	// Once the dependency recovers, the next utterance retries the lookup
	// without re-collecting anything.
	f.orders.err = nil
	retry := f.turn(t, "s1", "could you try again?")
	if !strings.Contains(retry, "on its way") {
		t.Fatalf("retry reply = %q, want the order status", retry)
	}
	if st := f.session(t, "s1"); st.Phase != statex.PhaseIdle {
		t.Fatalf("phase after retry = %s, want idle", st.Phase)
	}
}

func TestEmptyUtteranceGetsGentleNudge(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	reply, err := f.orch.HandleTurn(context.Background(), "s1", "   ")
	if err != nil {
		t.Fatalf("HandleTurn() error = %v", err)
	}
	if !strings.Contains(reply, "didn't catch that") {
		t.Fatalf("reply = %q, want the nudge", reply)
	}
}

func TestTopicSwitchDuringSlotFilling(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	f.turn(t, "s1", "track my order")
	reply := f.turn(t, "s1", "actually, any deals today?")
	if !strings.Contains(reply, "Early Riser") {
		t.Fatalf("reply = %q, want the promo answer after the switch", reply)
	}

	st := f.session(t, "s1")
	if st.Phase != statex.PhaseIdle {
		t.Fatalf("phase = %s, want idle after the switch resolved", st.Phase)
	}
	if st.Fields[statex.FieldEmail] != "" {
		t.Fatal("abandoned slot values must not survive a topic switch")
	}
}

func TestCancellationDuringSlotFilling(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	f.turn(t, "s1", "track my order")
	reply := f.turn(t, "s1", "never mind")
	if reply != f.responder.reply {
		t.Fatalf("reply = %q, want a conversational answer after cancelling", reply)
	}
	if st := f.session(t, "s1"); st.Phase != statex.PhaseIdle {
		t.Fatalf("phase = %s, want idle after cancellation", st.Phase)
	}
}

func TestEndSessionDiscardsState(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	f.turn(t, "s1", "track my order")
	if err := f.orch.EndSession(context.Background(), "s1"); err != nil {
		t.Fatalf("EndSession() error = %v", err)
	}
	if _, err := f.store.Load(context.Background(), "s1"); !errors.Is(err, statex.ErrStateNotFound) {
		t.Fatalf("Load() after EndSession error = %v, want ErrStateNotFound", err)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	f.turn(t, "s1", "track my order")
	reply := f.turn(t, "s2", "any deals today?")
	if strings.Contains(reply, "email") {
		t.Fatalf("reply = %q, s2 must not inherit s1's slot filling", reply)
	}
	if st := f.session(t, "s1"); st.Phase != statex.PhaseAwaitingEmail {
		t.Fatalf("s1 phase = %s, want unaffected awaiting_email", st.Phase)
	}
}

func TestNewRequiresCollaborators(t *testing.T) {
	t.Parallel()

	rtr := routerx.New(&fakeClassifier{label: "general"})
	orders := &fakeOrders{}
	store := statex.NewMemoryStore()

	if _, err := New(nil, rtr, orders, nil, nil, Config{}); err == nil {
		t.Fatal("New() accepted a nil store")
	}
	if _, err := New(store, nil, orders, nil, nil, Config{}); err == nil {
		t.Fatal("New() accepted a nil router")
	}
	if _, err := New(store, rtr, nil, nil, nil, Config{}); err == nil {
		t.Fatal("New() accepted a nil order lookup")
	}
}
