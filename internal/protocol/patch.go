package protocol

import (
	"sync/atomic"

	"github.com/Ko-stant/dungeon-builder/internal/events"
)

type PatchEnvelope struct {
	Sequence uint64 `json:"seq"`
	Type     string `json:"type"`
	Payload  any    `json:"payload"`
}

// Sequencer hands out increasing patch sequence numbers starting at 1.
type Sequencer struct {
	n atomic.Uint64
}

func (s *Sequencer) Next() uint64 { return s.n.Add(1) }

// Last returns the most recently issued number, 0 if none.
func (s *Sequencer) Last() uint64 { return s.n.Load() }

// NewPatch wraps a bus event for the stream.
func NewPatch(seq uint64, ev events.Event) PatchEnvelope {
	return PatchEnvelope{Sequence: seq, Type: ev.Type(), Payload: ev}
}

// Hello is the first message on a new stream connection.
type Hello struct {
	Snapshot DungeonSnapshot `json:"snapshot"`
}

const TypeHello = "hello"
