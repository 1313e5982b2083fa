package main

import (
	"log/slog"

	"github.com/Ko-stant/dungeon-builder/internal/events"
	"github.com/Ko-stant/dungeon-builder/internal/protocol"
	"github.com/Ko-stant/dungeon-builder/internal/ws"
)

// BroadcasterImpl implements Broadcaster using WebSocket hub
type BroadcasterImpl struct {
	hub      *ws.Hub
	sequence SequenceGenerator
	logger   *slog.Logger
}

func NewBroadcaster(hub *ws.Hub, sequence SequenceGenerator, logger *slog.Logger) *BroadcasterImpl {
	return &BroadcasterImpl{
		hub:      hub,
		sequence: sequence,
		logger:   logger,
	}
}

func (b *BroadcasterImpl) BroadcastEvent(ev events.Event) {
	envelope := protocol.NewPatch(b.sequence.Next(), ev)
	if err := b.hub.BroadcastJSON(envelope); err != nil {
		b.logger.Error("failed to broadcast", "type", envelope.Type, "error", err)
		return
	}
	b.logger.Debug("broadcast", "type", envelope.Type, "seq", envelope.Sequence, "clients", b.hub.Count())
}
