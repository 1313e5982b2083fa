package protocol

import (
	"encoding/json"
	"fmt"
)

// IntentEnvelope is a client message on the stream.
type IntentEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

const (
	IntentGenerate  = "generate"
	IntentEnterRoom = "enterRoom"
	IntentClearRoom = "clearRoom"
	IntentNextLevel = "nextLevel"
	IntentRestart   = "restart"

	IntentAddPoints        = "addPoints"
	IntentAdjustMultiplier = "adjustMultiplier"
	IntentDamagePlayer     = "damagePlayer"
	IntentPlayerDestroyed  = "playerDestroyed"
	IntentFire             = "fire"
	IntentReload           = "reload"
	IntentPause            = "pause"
	IntentResume           = "resume"
)

// GenerateRequest asks for a new dungeon. A nil seed picks a fresh one and
// an empty graph lets the builder choose among the level's graphs.
type GenerateRequest struct {
	Seed  *int64 `json:"seed,omitempty"`
	Graph string `json:"graph,omitempty"`
}

type RequestRoom struct {
	RoomID string `json:"roomId"`
}

type PointsRequest struct {
	Points int `json:"points"`
}

type MultiplierRequest struct {
	Increase bool `json:"increase"`
}

type DamageRequest struct {
	Damage int `json:"damage"`
}

// ActiveRoomsResponse lists the rooms around the player.
type ActiveRoomsResponse struct {
	Rooms []string `json:"rooms"`
}

// DecodeIntent parses an envelope and its payload. The returned value is the
// intent's request type, or nil for intents without a payload.
func DecodeIntent(data []byte) (string, any, error) {
	var env IntentEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", nil, fmt.Errorf("failed to decode intent: %w", err)
	}

	switch env.Type {
	case IntentGenerate:
		var req GenerateRequest
		if len(env.Payload) > 0 {
			if err := json.Unmarshal(env.Payload, &req); err != nil {
				return env.Type, nil, fmt.Errorf("failed to decode %s payload: %w", env.Type, err)
			}
		}
		return env.Type, req, nil
	case IntentEnterRoom, IntentClearRoom:
		var req RequestRoom
		if err := json.Unmarshal(env.Payload, &req); err != nil {
			return env.Type, nil, fmt.Errorf("failed to decode %s payload: %w", env.Type, err)
		}
		if req.RoomID == "" {
			return env.Type, nil, fmt.Errorf("%s: roomId is required", env.Type)
		}
		return env.Type, req, nil
	case IntentAddPoints:
		var req PointsRequest
		if err := decodePayload(env, &req); err != nil {
			return env.Type, nil, err
		}
		if req.Points <= 0 {
			return env.Type, nil, fmt.Errorf("%s: points must be positive", env.Type)
		}
		return env.Type, req, nil
	case IntentAdjustMultiplier:
		var req MultiplierRequest
		if err := decodePayload(env, &req); err != nil {
			return env.Type, nil, err
		}
		return env.Type, req, nil
	case IntentDamagePlayer:
		var req DamageRequest
		if err := decodePayload(env, &req); err != nil {
			return env.Type, nil, err
		}
		if req.Damage <= 0 {
			return env.Type, nil, fmt.Errorf("%s: damage must be positive", env.Type)
		}
		return env.Type, req, nil
	case IntentNextLevel, IntentRestart, IntentPlayerDestroyed,
		IntentFire, IntentReload, IntentPause, IntentResume:
		return env.Type, nil, nil
	}
	return env.Type, nil, fmt.Errorf("unknown intent type %q", env.Type)
}

func decodePayload(env IntentEnvelope, v any) error {
	if err := json.Unmarshal(env.Payload, v); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", env.Type, err)
	}
	return nil
}
