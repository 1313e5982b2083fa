package game

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownRoom = errors.New("unknown room")
	ErrNoLevels    = errors.New("no dungeon levels configured")
)

// Error codes carried by GameError.
const (
	CodeInvalidState = "INVALID_STATE"
	CodeRoomLocked   = "ROOM_LOCKED"
	CodeNoDungeon    = "NO_DUNGEON"
	CodeNotEntered   = "ROOM_NOT_ENTERED"
	CodeWeaponBusy   = "WEAPON_NOT_READY"
)

// GameError represents a game rule violation
type GameError struct {
	Code    string
	Message string
}

func (e *GameError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func invalidState(action string, s State) *GameError {
	return &GameError{Code: CodeInvalidState, Message: fmt.Sprintf("cannot %s while %s", action, s)}
}
