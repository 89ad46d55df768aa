package game

import (
	"fmt"

	"go.uber.org/zap"
)

// RoundHandler owns the actions of one playable round.
type RoundHandler interface {
	Round() Round

	OnHandle(turn *Turn, req RequestWrapper) (Outcome, error)
}

type MachineOptions struct {
	// Strict enables sequencing checks on top of the per-action
	// preconditions.
	Strict bool

	Roster   []Player
	Defaults Content
}

// Machine resolves actions against a document snapshot. It never writes:
// the caller persists the returned Outcome.
type Machine struct {
	strict   bool
	roster   []Player
	defaults Content
	handlers map[Round]RoundHandler
}

func NewMachine(opts MachineOptions) *Machine {
	roster := opts.Roster
	if len(roster) == 0 {
		roster = DefaultRoster()
	}

	defaults := opts.Defaults
	if defaults.Round4 == (Round4Object{}) {
		defaults.Round4 = DefaultRound4()
	}

	m := &Machine{
		strict:   opts.Strict,
		roster:   roster,
		defaults: defaults,
		handlers: make(map[Round]RoundHandler),
	}

	for _, h := range []RoundHandler{
		NewRound1Handler(),
		NewRound2Handler(),
		NewRound3Handler(),
		NewRound4Handler(),
	} {
		m.handlers[h.Round()] = h
	}

	return m
}

func (m *Machine) Strict() bool {
	return m.strict
}

// Initial is the document written when none exists yet.
func (m *Machine) Initial() GameState {
	return NewGameState(m.roster, m.defaults)
}

// Dispatch resolves one action. gs may be nil only for InitializeGame and
// ImportContent, which do not read the current document.
func (m *Machine) Dispatch(gs *GameState, req RequestWrapper) (Outcome, error) {
	turn := &Turn{State: gs, Strict: m.strict}

	switch req.ActionType {
	case REQ_INITIALIZE:
		return m.onInitialize()
	case REQ_IMPORT_CONTENT:
		return m.onImportContent(req)
	}

	if gs == nil {
		return Outcome{}, fmt.Errorf("%w: no document to apply %s to", ErrIllegalTransition, req.ActionType)
	}

	switch req.ActionType {
	case REQ_RESET_TO_LOBBY:
		return m.onResetToLobby(turn)
	case REQ_START_ROUND:
		return m.onStartRound(turn, req)
	case REQ_START_ROUND_CONTENT:
		return m.onStartRoundContent(turn)
	case REQ_SHOW_WINNER:
		return m.onShowWinner(turn)
	case REQ_TOGGLE_SCOREBOARD:
		return m.onToggleScoreboard(turn)
	case REQ_SHOW_LEADERBOARD:
		return m.onShowLeaderboard(req)
	}

	round, ok := actionRounds[req.ActionType]
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownAction, req.ActionType)
	}

	handler := m.handlers[round]

	if m.strict && (gs.CurrentRound != round || !gs.RoundStarted) {
		zap.L().Debug(
			"Rejected out-of-round action",
			zap.String("action", req.ActionType),
			zap.String("current_round", string(gs.CurrentRound)),
			zap.Bool("round_started", gs.RoundStarted),
		)
		return Outcome{}, fmt.Errorf(
			"%w: %s requires %s to be running, current round is %s",
			ErrIllegalTransition, req.ActionType, round, gs.CurrentRound,
		)
	}

	return handler.OnHandle(turn, req)
}
