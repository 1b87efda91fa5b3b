package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client *pubsub.Client
}

// EventType represents the type of event/message sent via pubsub.
// It doubles as the topic name.
type EventType string

const (
	EventStageCompleted   EventType = "harvest-stage-completed"
	EventRosterReconciled EventType = "harvest-roster-reconciled"
)
