package session

import (
	"context"
	"errors"

	"github.com/cuihairu/werewolf/internal/game"
)

// Result is the operator-facing outcome of a call.
type Result struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
}

// ResultOf converts an error into a Result. Internal failures are not exposed.
func ResultOf(err error) Result {
	if err == nil {
		return Result{Success: true}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Result{Reason: "request cancelled"}
	}
	var ge *game.Error
	switch game.KindOf(err) {
	case game.KindValidation, game.KindConflict, game.KindNotFound:
		if errors.As(err, &ge) {
			return Result{Reason: ge.Message}
		}
		return Result{Reason: err.Error()}
	case game.KindExternal:
		return Result{Reason: "upstream unavailable"}
	}
	return Result{Reason: "internal error"}
}
