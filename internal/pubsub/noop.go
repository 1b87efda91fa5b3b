package pubsub

import "github.com/charmbracelet/log"

// Noop drops every event. It is used when no GCP project is configured.
type Noop struct{}

var _ PubSubClient = Noop{}

func (Noop) SendMessage(topic EventType, data any) error {
	log.Debug("Pub/Sub disabled, dropping event", "topic", topic)
	return nil
}

func (Noop) ProcessMessage(data []byte, returnValue any) error {
	return Decode(data, returnValue)
}

func (Noop) Close() error { return nil }
