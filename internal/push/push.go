// Package push delivers notifications to subscriber devices through an
// external push gateway. The scheduler never talks to devices directly;
// it hands the gateway a push address and the rendered message.
package push

import "context"

// Message is one rendered notification addressed to a single device.
type Message struct {
	To    string            `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}
