package pubsub

// PubSubClient publishes harvest events.
type PubSubClient interface {
	SendMessage(topic EventType, data any) error
	ProcessMessage(data []byte, returnValue any) error
	Close() error
}
