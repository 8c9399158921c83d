package contract

import (
	"context"
	"time"
)

// Classifier is the language-model collaborator in label mode. It must
// return exactly one of the allowed labels.
type Classifier interface {
	Classify(ctx context.Context, utterance string, labels []string) (string, error)
}

// Responder generates the persona reply for general conversation.
type Responder interface {
	Reply(ctx context.Context, history []ChatTurn, userMessage string) (string, error)
}

// OrderLookup resolves a validated (email, order number) pair to an order.
// Both fields must match; a miss of either returns ErrOrderNotFound with no
// indication of which field failed.
type OrderLookup interface {
	Lookup(ctx context.Context, email, orderNumber string) (OrderRecord, error)
}

// Clock supplies the current instant so time-gated behavior stays
// deterministic under test.
type Clock func() time.Time
