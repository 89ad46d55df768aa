package game

import (
	"fmt"
)

// Round 2, Statement + Estimate: statements are revealed one by one, then
// everyone estimates a number and the closest estimate wins four points.
type round2Handler struct{}

func NewRound2Handler() *round2Handler {
	return &round2Handler{}
}

func (h *round2Handler) Round() Round {
	return ROUND_R2
}

func (h *round2Handler) OnHandle(turn *Turn, req RequestWrapper) (Outcome, error) {
	switch req.ActionType {
	case REQ_R2_TOGGLE_STATEMENT:
		return h.onToggleStatement(turn, req)
	case REQ_R2_MOVE_TO_GUESSING:
		return updateOutcome(Update{}.Set("round2.part", PART_GUESSING), "Guessing has started."), nil
	case REQ_R2_RECORD_GUESS:
		return h.onRecordGuess(turn, req)
	case REQ_R2_REVEAL_ACTUAL_VALUE:
		return h.onRevealActualValue(req)
	case REQ_R2_REVEAL_WINNER:
		return h.onRevealWinner(turn)
	}

	return Outcome{}, fmt.Errorf("%w: %q in round 2", ErrUnknownAction, req.ActionType)
}

func (h *round2Handler) onToggleStatement(turn *Turn, req RequestWrapper) (Outcome, error) {
	data, err := Unwrap[ToggleStatementRequest](req)
	if err != nil {
		return Outcome{}, err
	}

	r2 := &turn.State.Round2
	if data.Index < 0 || data.Index >= len(r2.Statements) {
		return Outcome{}, fmt.Errorf("%w: %d of %d", ErrStatementIndex, data.Index, len(r2.Statements))
	}

	revealed := make([]bool, len(r2.Statements))
	copy(revealed, r2.RevealedStatements)
	revealed[data.Index] = !revealed[data.Index]

	order := ToggleRevealOrder(r2.RevealOrder, data.Index, revealed[data.Index])

	upd := Update{}.
		Set("round2.revealedStatements", revealed).
		Set("round2.revealOrder", order)

	return updateOutcome(upd, ""), nil
}

// ToggleRevealOrder removes index from order and, when revealed, appends
// it at the end. Each index appears at most once.
func ToggleRevealOrder(order []int, index int, revealed bool) []int {
	next := make([]int, 0, len(order)+1)
	for _, i := range order {
		if i != index {
			next = append(next, i)
		}
	}

	if revealed {
		next = append(next, index)
	}

	return next
}

func (h *round2Handler) onRecordGuess(turn *Turn, req RequestWrapper) (Outcome, error) {
	data, err := Unwrap[RecordEstimateRequest](req)
	if err != nil {
		return Outcome{}, err
	}

	if !turn.State.HasPlayer(data.PlayerID) {
		return Outcome{}, fmt.Errorf("%w: %d", ErrUnknownPlayer, data.PlayerID)
	}

	upd := Update{}.Set(Path("round2", "guesses", data.PlayerID), CoerceNumber(data.Value))

	return updateOutcome(upd, ""), nil
}

func (h *round2Handler) onRevealActualValue(req RequestWrapper) (Outcome, error) {
	data, err := Unwrap[RevealActualValueRequest](req)
	if err != nil {
		return Outcome{}, err
	}

	value := CoerceNumber(data.Value)
	if value == nil {
		return Outcome{}, fmt.Errorf("%w: actual value %s", ErrInvalidValue, string(data.Value))
	}

	upd := Update{}.Set("round2.actualValue", *value)

	return updateOutcome(upd, fmt.Sprintf("The actual value is %g.", *value)), nil
}

func (h *round2Handler) onRevealWinner(turn *Turn) (Outcome, error) {
	r2 := &turn.State.Round2

	if r2.ActualValue == nil {
		return Outcome{}, ErrMissingActualValue
	}

	if turn.Strict && r2.WinnerID != nil {
		return Outcome{}, ErrAlreadyScored
	}

	winnerID, ok := Round2Winner(turn.State.Players, r2.Guesses, *r2.ActualValue)
	if !ok {
		return Outcome{}, ErrNoGuesses
	}

	winner, _ := turn.State.Player(winnerID)

	upd := Update{}.
		Set("round2.winnerId", winnerID).
		Set("players", ApplyDeltas(turn.State.Players, Award(winnerID, ROUND2_POINTS)))

	return updateOutcome(upd, fmt.Sprintf("%s wins Round 2 and is awarded +%d points!", winner.Name, ROUND2_POINTS)), nil
}
