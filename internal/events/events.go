// Package events carries catalog change notifications to subscribers.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Event names as seen by websocket clients.
const (
	ProductAdded   = "productAdded"
	ProductUpdated = "productUpdated"
	ProductDeleted = "productDeleted"
)

type Event struct {
	Name       string      `json:"event"`
	Data       interface{} `json:"data"`
	OccurredAt time.Time   `json:"occurred_at"`

	// Key partitions the event on keyed transports (the product id).
	Key string `json:"-"`
}

func New(name, key string, data interface{}) Event {
	return Event{Name: name, Key: key, Data: data, OccurredAt: time.Now().UTC()}
}

func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers an event. Delivery is best effort.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// Sink accepts an already encoded event.
type Sink interface {
	Send(ctx context.Context, msg []byte) error
}

// Multi fans an event out to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, evt Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
