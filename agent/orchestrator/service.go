package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"

	catalogx "github.com/tanpawarit/sierra-agent/agent/catalog"
	contractx "github.com/tanpawarit/sierra-agent/agent/contract"
	nodex "github.com/tanpawarit/sierra-agent/agent/nodes"
	promox "github.com/tanpawarit/sierra-agent/agent/promo"
	routerx "github.com/tanpawarit/sierra-agent/agent/router"
	statex "github.com/tanpawarit/sierra-agent/agent/state"
)

var (
	ErrInvalidMessage = nodex.ErrInvalidMessage
	ErrInvalidSession = nodex.ErrInvalidSession
)

// Config tunes the orchestrator. Zero values fall back to the defaults:
// the Early Riser window, catalog.DefaultTopK, and the wall clock.
type Config struct {
	Window promox.Window
	TopK   int
	Clock  contractx.Clock
}

// Orchestrator owns the session lifecycle and composes the router, the
// slot-filling machine, and the fulfillment handlers into one entry point.
type Orchestrator struct {
	store     statex.Store
	router    *routerx.Router
	orders    contractx.OrderLookup
	responder contractx.Responder
	catalog   []catalogx.Item
	window    promox.Window
	topK      int
	now       contractx.Clock

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]
}

func New(
	store statex.Store,
	rtr *routerx.Router,
	orders contractx.OrderLookup,
	responder contractx.Responder,
	catalogItems []catalogx.Item,
	cfg Config,
) (*Orchestrator, error) {
	if store == nil {
		return nil, errors.New("state store is required")
	}
	if rtr == nil {
		return nil, errors.New("intent router is required")
	}
	if orders == nil {
		return nil, errors.New("order lookup is required")
	}

	window := cfg.Window
	if window.Location == nil {
		var err error
		window, err = promox.DefaultWindow()
		if err != nil {
			return nil, err
		}
	}
	topK := cfg.TopK
	if topK <= 0 {
		topK = catalogx.DefaultTopK
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}

	o := &Orchestrator{
		store:     store,
		router:    rtr,
		orders:    orders,
		responder: responder,
		catalog:   catalogItems,
		window:    window,
		topK:      topK,
		now:       now,
	}

	graphRunner, err := o.compileHandleTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// HandleTurn runs one conversational turn. It always returns a usable reply
// string; the error, when set, is a diagnostic signal for the caller to log
// or alert on, never an unrecovered fault.
func (o *Orchestrator) HandleTurn(ctx context.Context, sessionID string, text string) (string, error) {
	out, err := o.graphRunner.Invoke(ctx, nodex.GraphInput{
		SessionID: sessionID,
		Text:      text,
	})
	if err != nil {
		if errors.Is(err, nodex.ErrInvalidMessage) {
			return nodex.ReplyDidntCatch, nil
		}
		return nodex.ReplyApology, err
	}
	return out.Reply, out.Diag
}

// EndSession discards the session state, e.g. when the user quits the chat.
func (o *Orchestrator) EndSession(ctx context.Context, sessionID string) error {
	return o.store.Delete(ctx, sessionID)
}

func (o *Orchestrator) handlers() nodex.Handlers {
	return nodex.Handlers{
		Orders:    o.orders,
		Responder: o.responder,
		Catalog:   o.catalog,
		Window:    o.window,
		Clock:     o.now,
		TopK:      o.topK,
	}
}
