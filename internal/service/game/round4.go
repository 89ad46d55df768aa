package game

import (
	"fmt"
)

// Round 4, Object Owner. Scoring is the operator's call.
type round4Handler struct{}

func NewRound4Handler() *round4Handler {
	return &round4Handler{}
}

func (h *round4Handler) Round() Round {
	return ROUND_R4
}

func (h *round4Handler) OnHandle(turn *Turn, req RequestWrapper) (Outcome, error) {
	switch req.ActionType {
	case REQ_R4_AWARD_WINNER:
		data, err := Unwrap[AwardWinnerRequest](req)
		if err != nil {
			return Outcome{}, err
		}

		winner, ok := turn.State.Player(data.PlayerID)
		if !ok {
			return Outcome{}, fmt.Errorf("%w: %d", ErrUnknownPlayer, data.PlayerID)
		}

		if turn.Strict && turn.State.Round4.WinnerID != nil {
			return Outcome{}, ErrAlreadyScored
		}

		upd := Update{}.
			Set("round4.winnerId", winner.ID).
			Set("players", ApplyDeltas(turn.State.Players, Award(winner.ID, ROUND4_POINTS)))

		return updateOutcome(upd, fmt.Sprintf("%s wins Round 4 and is awarded +%d points!", winner.Name, ROUND4_POINTS)), nil
	case REQ_R4_REVEAL_REAL_OWNER:
		return updateOutcome(Update{}.Set("round4.showRealOwner", true), "The real owner is revealed."), nil
	}

	return Outcome{}, fmt.Errorf("%w: %q in round 4", ErrUnknownAction, req.ActionType)
}
