package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"lie-hard-be/internal/service/game"
	"lie-hard-be/internal/store"
)

var (
	// ErrWriteFailure wraps any store failure while persisting an action.
	ErrWriteFailure = errors.New("write failure")
	ErrServiceBusy  = errors.New("game service busy")
	ErrClosed       = errors.New("game service closed")
)

type actionRequest struct {
	ctx     context.Context
	wrapper game.RequestWrapper
	// ensure only loads the document, initializing it when still absent.
	ensure bool
	resCh  chan actionResponseWrapper
}

type actionResponseWrapper struct {
	State  game.GameState
	Notice string
	Err    error
}

func decodeState(raw json.RawMessage) (game.GameState, error) {
	var gs game.GameState
	if err := json.Unmarshal(raw, &gs); err != nil {
		return game.GameState{}, fmt.Errorf("decode game state: %w", err)
	}

	return gs, nil
}

// toFields hands an Update to the store unchanged.
func toFields(u game.Update) store.Fields {
	return store.Fields(u)
}
