// Package notify broadcasts change events to whoever is listening after a
// mutation has committed. Delivery is fire-and-forget: a sink failure is
// logged and never propagated back to the committed operation.
package notify

// Topics mirror the channels the frontend subscribes to.
const (
	TopicStocks           = "stocks"
	TopicStocksDeleted    = "stocks/delete"
	TopicExchanges        = "exchanges"
	TopicExchangesDeleted = "exchanges/delete"
)

// Sink receives post-commit change events. Publish must not block the
// caller and must swallow its own failures.
type Sink interface {
	Publish(topic string, payload interface{})
}

// Fanout publishes to every sink in order.
type Fanout []Sink

func (f Fanout) Publish(topic string, payload interface{}) {
	for _, s := range f {
		s.Publish(topic, payload)
	}
}

// Discard is a no-op sink.
type Discard struct{}

func (Discard) Publish(topic string, payload interface{}) {}
