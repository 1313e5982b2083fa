package main

import (
	"context"
	"net/http"

	"github.com/coder/websocket"

	"github.com/Ko-stant/dungeon-builder/internal/protocol"
)

const typeError = "error"

// handleStream sends a hello snapshot, then relays broadcast patches while
// applying intents sent by the client.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		s.logger.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	ctx := r.Context()

	// the client drops queued patches with seq <= the hello's seq
	err = s.hub.AddWithHello(ctx, conn, func() (any, error) {
		snap, err := s.Snapshot()
		if err != nil {
			return nil, err
		}
		return protocol.PatchEnvelope{
			Sequence: snap.LastSequence,
			Type:     protocol.TypeHello,
			Payload:  protocol.Hello{Snapshot: snap},
		}, nil
	})
	if err != nil {
		s.sendError(ctx, conn, err)
		return
	}
	defer s.hub.Remove(conn)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		if err := s.applyIntent(ctx, data); err != nil {
			s.sendError(ctx, conn, err)
		}
	}
}

func (s *Server) applyIntent(ctx context.Context, data []byte) error {
	typ, payload, err := protocol.DecodeIntent(data)
	if err != nil {
		s.logger.Debug("rejected intent", "type", typ, "error", err)
		return errBadRequestf(err)
	}

	switch typ {
	case protocol.IntentGenerate:
		return s.Generate(ctx, payload.(protocol.GenerateRequest))
	case protocol.IntentEnterRoom:
		return s.EnterRoom(payload.(protocol.RequestRoom).RoomID)
	case protocol.IntentClearRoom:
		return s.ClearRoom(payload.(protocol.RequestRoom).RoomID)
	case protocol.IntentNextLevel:
		return s.NextLevel(ctx)
	case protocol.IntentRestart:
		return s.Restart(ctx)
	case protocol.IntentAddPoints:
		return s.AddPoints(payload.(protocol.PointsRequest).Points)
	case protocol.IntentAdjustMultiplier:
		return s.AdjustMultiplier(payload.(protocol.MultiplierRequest).Increase)
	case protocol.IntentDamagePlayer:
		return s.DamagePlayer(payload.(protocol.DamageRequest).Damage)
	case protocol.IntentPlayerDestroyed:
		return s.PlayerDestroyed()
	case protocol.IntentFire:
		return s.FireWeapon()
	case protocol.IntentReload:
		return s.ReloadWeapon()
	case protocol.IntentPause:
		return s.Pause()
	case protocol.IntentResume:
		return s.Resume()
	}
	return nil
}

func (s *Server) sendError(ctx context.Context, conn *websocket.Conn, err error) {
	_, body := classifyError(err)
	_ = s.hub.Send(ctx, conn, protocol.PatchEnvelope{Type: typeError, Payload: body})
}
