package main

import "github.com/Ko-stant/dungeon-builder/internal/events"

// Broadcaster interface for WebSocket communication
type Broadcaster interface {
	BroadcastEvent(ev events.Event)
}

// Logger interface for printf-style request logging
type Logger interface {
	Printf(format string, v ...any)
}

// SequenceGenerator interface for sequence number generation
type SequenceGenerator interface {
	Next() uint64
	Last() uint64
}
