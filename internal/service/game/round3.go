package game

import (
	"fmt"
)

// Round 3, Two Truths & a Lie: storytellers rotate, the others try to pick
// the one true statement.
type round3Handler struct{}

func NewRound3Handler() *round3Handler {
	return &round3Handler{}
}

func (h *round3Handler) Round() Round {
	return ROUND_R3
}

func (h *round3Handler) OnHandle(turn *Turn, req RequestWrapper) (Outcome, error) {
	switch req.ActionType {
	case REQ_R3_SELECT_STORYTELLER:
		return h.onSelectStoryteller(turn, req)
	case REQ_R3_RECORD_GUESS:
		return h.onRecordGuess(turn, req)
	case REQ_R3_OPEN_VOTING:
		if turn.State.Round3.CurrentStorytellerID == nil {
			return Outcome{}, ErrNoStoryteller
		}

		upd := Update{}.
			Set("round3.votingOpen", true).
			Set("round3.showResult", false)

		return updateOutcome(upd, "Voting is open."), nil
	case REQ_R3_CLOSE_VOTING:
		return updateOutcome(Update{}.Set("round3.votingOpen", false), "Voting is closed."), nil
	case REQ_R3_REVEAL_RESULT:
		return h.onRevealResult(turn)
	}

	return Outcome{}, fmt.Errorf("%w: %q in round 3", ErrUnknownAction, req.ActionType)
}

func (h *round3Handler) onSelectStoryteller(turn *Turn, req RequestWrapper) (Outcome, error) {
	data, err := Unwrap[SelectStorytellerRequest](req)
	if err != nil {
		return Outcome{}, err
	}

	r3 := &turn.State.Round3

	set, ok := r3.SetFor(data.PlayerID)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: player %d", ErrSetNotFound, data.PlayerID)
	}

	if r3.Completed(data.PlayerID) {
		return Outcome{}, fmt.Errorf("%w: player %d", ErrStorytellerDone, data.PlayerID)
	}

	guesses := make(map[int]*int, len(turn.State.Players))
	for _, p := range turn.State.Players {
		if p.ID != data.PlayerID {
			guesses[p.ID] = nil
		}
	}

	trueIndex := set.TrueIndex

	upd := Update{}.
		Set("round3.currentStorytellerId", data.PlayerID).
		Set("round3.currentStatements", append([]string{}, set.Statements...)).
		Set("round3.trueIndex", trueIndex).
		Set("round3.nonPlayerGuesses", guesses).
		Set("round3.votingOpen", false).
		Set("round3.showResult", false)

	notice := "Storyteller selected."
	if p, ok := turn.State.Player(data.PlayerID); ok {
		notice = fmt.Sprintf("%s is telling the story.", p.Name)
	}

	return updateOutcome(upd, notice), nil
}

func (h *round3Handler) onRecordGuess(turn *Turn, req RequestWrapper) (Outcome, error) {
	data, err := Unwrap[RecordChoiceRequest](req)
	if err != nil {
		return Outcome{}, err
	}

	if data.Index != nil && (*data.Index < 0 || *data.Index > 2) {
		return Outcome{}, fmt.Errorf("%w: choice %d", ErrInvalidValue, *data.Index)
	}

	if !turn.State.HasPlayer(data.PlayerID) {
		return Outcome{}, fmt.Errorf("%w: %d", ErrUnknownPlayer, data.PlayerID)
	}

	if turn.Strict {
		storyteller := turn.State.Round3.CurrentStorytellerID
		if storyteller != nil && *storyteller == data.PlayerID {
			return Outcome{}, fmt.Errorf("%w: the storyteller does not guess", ErrIllegalTransition)
		}
	}

	upd := Update{}.Set(Path("round3", "nonPlayerGuesses", data.PlayerID), data.Index)

	return updateOutcome(upd, ""), nil
}

func (h *round3Handler) onRevealResult(turn *Turn) (Outcome, error) {
	r3 := &turn.State.Round3

	if r3.CurrentStorytellerID == nil {
		return Outcome{}, ErrNoStoryteller
	}

	storytellerID := *r3.CurrentStorytellerID

	if r3.TrueIndex == nil {
		return Outcome{}, fmt.Errorf("%w: player %d", ErrSetNotFound, storytellerID)
	}

	if turn.Strict && r3.ShowResult {
		return Outcome{}, ErrAlreadyScored
	}

	deltas := ScoreRound3(turn.State.Players, storytellerID, r3.NonPlayerGuesses, *r3.TrueIndex)

	completed := append([]int{}, r3.CompletedStorytellers...)
	if !r3.Completed(storytellerID) {
		completed = append(completed, storytellerID)
	}

	upd := Update{}.
		Set("round3.showResult", true).
		Set("round3.completedStorytellers", completed).
		Set("players", ApplyDeltas(turn.State.Players, deltas))

	notice := fmt.Sprintf("Points awarded for Round 3! +%d to each correct guess.", ROUND3_POINTS)
	if _, fooled := deltas[storytellerID]; fooled {
		name := "The storyteller"
		if p, ok := turn.State.Player(storytellerID); ok {
			name = p.Name
		}

		notice = fmt.Sprintf("%s fooled everyone and earns +%d!", name, ROUND3_POINTS)
	}

	return updateOutcome(upd, notice), nil
}
