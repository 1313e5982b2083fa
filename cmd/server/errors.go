package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Ko-stant/dungeon-builder/internal/dungeon"
	"github.com/Ko-stant/dungeon-builder/internal/game"
	"github.com/Ko-stant/dungeon-builder/internal/level"
)

var errBadRequest = errors.New("bad request")

func errBadRequestf(err error) error {
	return fmt.Errorf("%w: %v", errBadRequest, err)
}

// APIError is the JSON body of every failed API call.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func classifyError(err error) (int, APIError) {
	var ge *game.GameError
	switch {
	case errors.As(err, &ge):
		status := http.StatusConflict
		switch ge.Code {
		case game.CodeRoomLocked:
			status = http.StatusForbidden
		case game.CodeNoDungeon:
			status = http.StatusServiceUnavailable
		}
		return status, APIError{Code: ge.Code, Message: ge.Message}
	case errors.Is(err, game.ErrUnknownRoom):
		return http.StatusNotFound, APIError{Code: "UNKNOWN_ROOM", Message: err.Error()}
	case errors.Is(err, level.ErrUnknownGraph):
		return http.StatusBadRequest, APIError{Code: "UNKNOWN_GRAPH", Message: err.Error()}
	case errors.Is(err, dungeon.ErrBuildFailed):
		return http.StatusUnprocessableEntity, APIError{Code: "BUILD_FAILED", Message: err.Error()}
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, APIError{Code: "BAD_REQUEST", Message: err.Error()}
	}
	return http.StatusInternalServerError, APIError{Code: "INTERNAL", Message: err.Error()}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status, body := classifyError(err)
	writeJSON(w, status, body)
}
