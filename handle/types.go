package handle

import "github.com/wippyai/physfs-bridge/native"

// EventType identifies a registry lifecycle notification.
type EventType uint8

const (
	EventRegistered EventType = iota
	EventReleased
)

// Event represents a token lifecycle event.
type Event struct {
	Token native.Token
	Type  EventType
}

// Observer receives notifications about token lifecycle events.
type Observer interface {
	OnHandleEvent(Event)
}
