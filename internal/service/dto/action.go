package dto

import "lie-hard-be/internal/service/game"

// ActionResult is returned for every applied operator action.
type ActionResult struct {
	RequestID string         `json:"request_id"`
	Action    string         `json:"action_type"`
	Notice    string         `json:"notice,omitempty"`
	State     game.GameState `json:"state"`
}
