package game

import (
	"fmt"
)

// Top-level sequencing: lobby, rounds, winner and the overlay toggles.
// Everything here is shared by all rounds; round specific actions live in
// the round handlers.

func (m *Machine) onInitialize() (Outcome, error) {
	return replaceOutcome(m.Initial(), "Game Initialized to Lobby State!"), nil
}

// onResetToLobby discards progress but keeps the preloaded content.
func (m *Machine) onResetToLobby(turn *Turn) (Outcome, error) {
	return replaceOutcome(NewGameState(m.roster, turn.State.Content()), "Game reset to lobby."), nil
}

func (m *Machine) onImportContent(req RequestWrapper) (Outcome, error) {
	data, err := Unwrap[ImportContentRequest](req)
	if err != nil {
		return Outcome{}, err
	}

	content := data.Content
	if content.Round4 == (Round4Object{}) {
		content.Round4 = m.defaults.Round4
	}

	notice := fmt.Sprintf(
		"Imported %d round 1 statements, %d round 2 statements and %d round 3 sets.",
		len(content.Round1Statements), len(content.Round2Statements), len(content.Round3Sets),
	)

	return replaceOutcome(NewGameState(m.roster, content), notice), nil
}

func (m *Machine) onStartRound(turn *Turn, req RequestWrapper) (Outcome, error) {
	data, err := Unwrap[StartRoundRequest](req)
	if err != nil {
		return Outcome{}, err
	}

	if !data.Round.Playable() {
		return Outcome{}, fmt.Errorf("%w: cannot start round %q", ErrInvalidValue, data.Round)
	}

	if m.strict {
		next, ok := turn.State.CurrentRound.Next()
		if !ok || next != data.Round {
			return Outcome{}, fmt.Errorf(
				"%w: %s cannot follow %s", ErrIllegalTransition, data.Round, turn.State.CurrentRound,
			)
		}
	}

	upd := Update{}.
		Set("currentRound", data.Round).
		Set("roundStarted", false)

	return updateOutcome(upd, fmt.Sprintf("Round %s is up next.", data.Round)), nil
}

func (m *Machine) onStartRoundContent(turn *Turn) (Outcome, error) {
	if !turn.State.CurrentRound.Playable() {
		return Outcome{}, fmt.Errorf(
			"%w: no round content in %s", ErrIllegalTransition, turn.State.CurrentRound,
		)
	}

	upd := Update{}.Set("roundStarted", true)

	return updateOutcome(upd, fmt.Sprintf("Round %s started.", turn.State.CurrentRound)), nil
}

func (m *Machine) onShowWinner(turn *Turn) (Outcome, error) {
	if m.strict && turn.State.CurrentRound != ROUND_R4 {
		return Outcome{}, fmt.Errorf(
			"%w: winner screen only follows %s", ErrIllegalTransition, ROUND_R4,
		)
	}

	upd := Update{}.Set("currentRound", ROUND_WINNER)

	return updateOutcome(upd, "Showing the winner!"), nil
}

func (m *Machine) onToggleScoreboard(turn *Turn) (Outcome, error) {
	show := !turn.State.ShowScoreboard
	upd := Update{}.Set("showScoreboard", show)

	notice := "Scoreboard hidden."
	if show {
		notice = "Scoreboard shown."
	}

	return updateOutcome(upd, notice), nil
}

func (m *Machine) onShowLeaderboard(req RequestWrapper) (Outcome, error) {
	data, err := Unwrap[ShowLeaderboardRequest](req)
	if err != nil {
		return Outcome{}, err
	}

	upd := Update{}.Set("showLeaderboardModal", data.Show)

	notice := "Leaderboard closed."
	if data.Show {
		notice = "Leaderboard opened."
	}

	return updateOutcome(upd, notice), nil
}
