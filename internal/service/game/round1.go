package game

import (
	"fmt"
)

// Round 1, Lie Hard: one statement per storyteller, everyone else calls it
// TRUE or LIE, one point per correct call.
type round1Handler struct{}

func NewRound1Handler() *round1Handler {
	return &round1Handler{}
}

func (h *round1Handler) Round() Round {
	return ROUND_R1
}

func (h *round1Handler) OnHandle(turn *Turn, req RequestWrapper) (Outcome, error) {
	switch req.ActionType {
	case REQ_R1_SELECT_STORYTELLER:
		return h.onSelectStoryteller(turn, req)
	case REQ_R1_RECORD_GUESS:
		return h.onRecordGuess(turn, req)
	case REQ_R1_OPEN_VOTING:
		if turn.State.Round1.CurrentStorytellerID == nil {
			return Outcome{}, ErrNoStoryteller
		}

		return updateOutcome(Update{}.Set("round1.votingOpen", true), "Voting is open."), nil
	case REQ_R1_CLOSE_VOTING:
		return updateOutcome(Update{}.Set("round1.votingOpen", false), "Voting is closed."), nil
	case REQ_R1_REVEAL_AND_SCORE:
		return h.onRevealAndScore(turn)
	}

	return Outcome{}, fmt.Errorf("%w: %q in round 1", ErrUnknownAction, req.ActionType)
}

func (h *round1Handler) onSelectStoryteller(turn *Turn, req RequestWrapper) (Outcome, error) {
	data, err := Unwrap[SelectStorytellerRequest](req)
	if err != nil {
		return Outcome{}, err
	}

	player, ok := turn.State.Player(data.PlayerID)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %d", ErrUnknownPlayer, data.PlayerID)
	}

	guesses := make(map[int]Guess, len(turn.State.Players))
	for _, p := range turn.State.Players {
		guesses[p.ID] = GUESS_UNSET
	}

	upd := Update{}.
		Set("round1.currentStorytellerId", player.ID).
		Set("round1.votingOpen", false).
		Set("round1.showResult", false).
		Set("round1.guesses", guesses)

	return updateOutcome(upd, fmt.Sprintf("%s is telling the story.", player.Name)), nil
}

func (h *round1Handler) onRecordGuess(turn *Turn, req RequestWrapper) (Outcome, error) {
	data, err := Unwrap[RecordTruthGuessRequest](req)
	if err != nil {
		return Outcome{}, err
	}

	if !data.Guess.Valid() {
		return Outcome{}, fmt.Errorf("%w: guess %q", ErrInvalidValue, data.Guess)
	}

	if !turn.State.HasPlayer(data.PlayerID) {
		return Outcome{}, fmt.Errorf("%w: %d", ErrUnknownPlayer, data.PlayerID)
	}

	if turn.Strict && !turn.State.Round1.VotingOpen {
		return Outcome{}, fmt.Errorf("%w: voting is closed", ErrIllegalTransition)
	}

	upd := Update{}.Set(Path("round1", "guesses", data.PlayerID), data.Guess)

	return updateOutcome(upd, ""), nil
}

func (h *round1Handler) onRevealAndScore(turn *Turn) (Outcome, error) {
	r1 := &turn.State.Round1

	if r1.CurrentStorytellerID == nil {
		return Outcome{}, ErrMissingStatement
	}

	storytellerID := *r1.CurrentStorytellerID

	stmt, ok := r1.StatementFor(storytellerID)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: player %d", ErrMissingStatement, storytellerID)
	}

	if turn.Strict && r1.ShowResult {
		return Outcome{}, ErrAlreadyScored
	}

	deltas := ScoreRound1(turn.State.Players, storytellerID, r1.Guesses, stmt.IsTruth)

	upd := Update{}.
		Set("round1.showResult", true).
		Set("players", ApplyDeltas(turn.State.Players, deltas))

	return updateOutcome(upd, "Result revealed and scores awarded!"), nil
}
