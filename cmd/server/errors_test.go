package main

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/Ko-stant/dungeon-builder/internal/dungeon"
	"github.com/Ko-stant/dungeon-builder/internal/game"
	"github.com/Ko-stant/dungeon-builder/internal/level"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid state", &game.GameError{Code: game.CodeInvalidState, Message: "nope"}, http.StatusConflict, "INVALID_STATE"},
		{"locked room", &game.GameError{Code: game.CodeRoomLocked}, http.StatusForbidden, "ROOM_LOCKED"},
		{"no dungeon", &game.GameError{Code: game.CodeNoDungeon}, http.StatusServiceUnavailable, "NO_DUNGEON"},
		{"wrapped game error", fmt.Errorf("outer: %w", &game.GameError{Code: game.CodeRoomLocked}), http.StatusForbidden, "ROOM_LOCKED"},
		{"unknown room", fmt.Errorf("%w: vault", game.ErrUnknownRoom), http.StatusNotFound, "UNKNOWN_ROOM"},
		{"unknown graph", fmt.Errorf("%w: spiral", level.ErrUnknownGraph), http.StatusBadRequest, "UNKNOWN_GRAPH"},
		{"build failed", fmt.Errorf("%w: level %q after %d attempts", dungeon.ErrBuildFailed, "x", 10), http.StatusUnprocessableEntity, "BUILD_FAILED"},
		{"bad request", errBadRequestf(errors.New("eof")), http.StatusBadRequest, "BAD_REQUEST"},
		{"anything else", errors.New("boom"), http.StatusInternalServerError, "INTERNAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := classifyError(tt.err)
			if status != tt.status {
				t.Errorf("status = %d, want %d", status, tt.status)
			}
			if body.Code != tt.code {
				t.Errorf("code = %q, want %q", body.Code, tt.code)
			}
		})
	}
}
