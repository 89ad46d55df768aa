package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRound1_RevealAndScoreScenario(t *testing.T) {
	m := newTestMachine(false)
	gs := inRound(m, ROUND_R1)

	gs = play(t, m, gs,
		NewRequest(REQ_R1_SELECT_STORYTELLER, SelectStorytellerRequest{PlayerID: 1}),
		NewRequest(REQ_R1_OPEN_VOTING, nil),
		NewRequest(REQ_R1_RECORD_GUESS, RecordTruthGuessRequest{PlayerID: 2, Guess: GUESS_TRUE}),
		NewRequest(REQ_R1_RECORD_GUESS, RecordTruthGuessRequest{PlayerID: 3, Guess: GUESS_LIE}),
		NewRequest(REQ_R1_RECORD_GUESS, RecordTruthGuessRequest{PlayerID: 4, Guess: GUESS_TRUE}),
		NewRequest(REQ_R1_CLOSE_VOTING, nil),
	)

	out, err := m.Dispatch(&gs, NewRequest(REQ_R1_REVEAL_AND_SCORE, nil))
	require.NoError(t, err)
	assert.Equal(t, "Result revealed and scores awarded!", out.Notice)

	// scores and reveal land in the same write
	assert.Contains(t, out.Update, "players")
	assert.Contains(t, out.Update, "round1.showResult")

	gs = applyOutcome(t, gs, out)
	assert.Equal(t, map[int]int{1: 0, 2: 1, 3: 0, 4: 1}, scores(gs))
	assert.True(t, gs.Round1.ShowResult)
	assert.False(t, gs.Round1.VotingOpen)
}

func TestRound1_SelectStorytellerResetsTurn(t *testing.T) {
	m := newTestMachine(false)
	gs := inRound(m, ROUND_R1)

	gs = play(t, m, gs,
		NewRequest(REQ_R1_SELECT_STORYTELLER, SelectStorytellerRequest{PlayerID: 1}),
		NewRequest(REQ_R1_OPEN_VOTING, nil),
		NewRequest(REQ_R1_RECORD_GUESS, RecordTruthGuessRequest{PlayerID: 2, Guess: GUESS_LIE}),
		NewRequest(REQ_R1_REVEAL_AND_SCORE, nil),
		NewRequest(REQ_R1_SELECT_STORYTELLER, SelectStorytellerRequest{PlayerID: 2}),
	)

	require.NotNil(t, gs.Round1.CurrentStorytellerID)
	assert.Equal(t, 2, *gs.Round1.CurrentStorytellerID)
	assert.False(t, gs.Round1.VotingOpen)
	assert.False(t, gs.Round1.ShowResult)
	for _, p := range gs.Players {
		assert.Equal(t, GUESS_UNSET, gs.Round1.Guesses[p.ID])
	}
}

func TestRound1_Preconditions(t *testing.T) {
	m := newTestMachine(false)
	gs := inRound(m, ROUND_R1)

	_, err := m.Dispatch(&gs, NewRequest(REQ_R1_REVEAL_AND_SCORE, nil))
	assert.ErrorIs(t, err, ErrMissingStatement)

	_, err = m.Dispatch(&gs, NewRequest(REQ_R1_OPEN_VOTING, nil))
	assert.ErrorIs(t, err, ErrNoStoryteller)

	// player 4 has no statement
	gs = play(t, m, gs, NewRequest(REQ_R1_SELECT_STORYTELLER, SelectStorytellerRequest{PlayerID: 4}))
	_, err = m.Dispatch(&gs, NewRequest(REQ_R1_REVEAL_AND_SCORE, nil))
	assert.ErrorIs(t, err, ErrMissingStatement)

	_, err = m.Dispatch(&gs, NewRequest(REQ_R1_RECORD_GUESS, RecordTruthGuessRequest{PlayerID: 2, Guess: "MAYBE"}))
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = m.Dispatch(&gs, NewRequest(REQ_R1_SELECT_STORYTELLER, SelectStorytellerRequest{PlayerID: 9}))
	assert.ErrorIs(t, err, ErrUnknownPlayer)
}

func TestRound1_TrustedModeReappliesScore(t *testing.T) {
	m := newTestMachine(false)
	gs := inRound(m, ROUND_R1)

	gs = play(t, m, gs,
		NewRequest(REQ_R1_SELECT_STORYTELLER, SelectStorytellerRequest{PlayerID: 1}),
		NewRequest(REQ_R1_RECORD_GUESS, RecordTruthGuessRequest{PlayerID: 2, Guess: GUESS_TRUE}),
		NewRequest(REQ_R1_REVEAL_AND_SCORE, nil),
		NewRequest(REQ_R1_REVEAL_AND_SCORE, nil),
	)

	assert.Equal(t, 2, scores(gs)[2])
}

func TestRound2_RevealOrder(t *testing.T) {
	m := newTestMachine(false)
	gs := inRound(m, ROUND_R2)

	toggle := func(i int) RequestWrapper {
		return NewRequest(REQ_R2_TOGGLE_STATEMENT, ToggleStatementRequest{Index: i})
	}

	gs = play(t, m, gs, toggle(2), toggle(0), toggle(4), toggle(0), toggle(0))

	assert.Equal(t, []int{2, 4, 0}, gs.Round2.RevealOrder)
	assert.Equal(t, []bool{true, false, true, false, true}, gs.Round2.RevealedStatements)

	_, err := m.Dispatch(&gs, toggle(5))
	assert.ErrorIs(t, err, ErrStatementIndex)
	_, err = m.Dispatch(&gs, toggle(-1))
	assert.ErrorIs(t, err, ErrStatementIndex)
}

func TestRound2_GuessCoercionAndWinner(t *testing.T) {
	m := newTestMachine(false)
	gs := inRound(m, ROUND_R2)

	guess := func(id int, raw string) RequestWrapper {
		return NewRequest(REQ_R2_RECORD_GUESS, RecordEstimateRequest{PlayerID: id, Value: json.RawMessage(raw)})
	}

	gs = play(t, m, gs,
		NewRequest(REQ_R2_MOVE_TO_GUESSING, nil),
		guess(1, `"abc"`),
		guess(2, `"41.5"`),
		guess(3, `0`),
		guess(4, `60`),
	)

	assert.Equal(t, PART_GUESSING, gs.Round2.Part)
	assert.Nil(t, gs.Round2.Guesses[1])
	require.NotNil(t, gs.Round2.Guesses[3])
	assert.Equal(t, 0.0, *gs.Round2.Guesses[3])

	_, err := m.Dispatch(&gs, NewRequest(REQ_R2_REVEAL_WINNER, nil))
	assert.ErrorIs(t, err, ErrMissingActualValue)

	_, err = m.Dispatch(&gs, NewRequest(REQ_R2_REVEAL_ACTUAL_VALUE, RevealActualValueRequest{Value: json.RawMessage(`"lots"`)}))
	assert.ErrorIs(t, err, ErrInvalidValue)

	gs = play(t, m, gs,
		NewRequest(REQ_R2_REVEAL_ACTUAL_VALUE, RevealActualValueRequest{Value: json.RawMessage(`50`)}),
		NewRequest(REQ_R2_REVEAL_WINNER, nil),
	)

	require.NotNil(t, gs.Round2.WinnerID)
	assert.Equal(t, 2, *gs.Round2.WinnerID)
	assert.Equal(t, map[int]int{1: 0, 2: 4, 3: 0, 4: 0}, scores(gs))
}

func TestRound2_ZeroIsAGuess(t *testing.T) {
	m := newTestMachine(false)
	gs := inRound(m, ROUND_R2)

	gs = play(t, m, gs,
		NewRequest(REQ_R2_RECORD_GUESS, RecordEstimateRequest{PlayerID: 1, Value: json.RawMessage(`0`)}),
		NewRequest(REQ_R2_RECORD_GUESS, RecordEstimateRequest{PlayerID: 2, Value: json.RawMessage(`5`)}),
		NewRequest(REQ_R2_REVEAL_ACTUAL_VALUE, RevealActualValueRequest{Value: json.RawMessage(`1`)}),
		NewRequest(REQ_R2_REVEAL_WINNER, nil),
	)

	require.NotNil(t, gs.Round2.WinnerID)
	assert.Equal(t, 1, *gs.Round2.WinnerID)
	assert.Equal(t, 4, scores(gs)[1])
}

func TestRound2_NoGuessesWritesNothing(t *testing.T) {
	m := newTestMachine(false)
	gs := inRound(m, ROUND_R2)
	gs = play(t, m, gs, NewRequest(REQ_R2_REVEAL_ACTUAL_VALUE, RevealActualValueRequest{Value: json.RawMessage(`7`)}))

	out, err := m.Dispatch(&gs, NewRequest(REQ_R2_REVEAL_WINNER, nil))
	assert.ErrorIs(t, err, ErrNoGuesses)
	assert.Empty(t, out.Update)
}

func TestRound3_RotationAndScoring(t *testing.T) {
	m := newTestMachine(false)
	gs := inRound(m, ROUND_R3)

	choose := func(id, idx int) RequestWrapper {
		return NewRequest(REQ_R3_RECORD_GUESS, RecordChoiceRequest{PlayerID: id, Index: IntPtr(idx)})
	}

	// storyteller 1, true index 1: players 2 and 4 find it
	gs = play(t, m, gs,
		NewRequest(REQ_R3_SELECT_STORYTELLER, SelectStorytellerRequest{PlayerID: 1}),
		NewRequest(REQ_R3_OPEN_VOTING, nil),
		choose(2, 1), choose(3, 0), choose(4, 1),
		NewRequest(REQ_R3_CLOSE_VOTING, nil),
		NewRequest(REQ_R3_REVEAL_RESULT, nil),
	)
	assert.Equal(t, map[int]int{1: 0, 2: 3, 3: 0, 4: 3}, scores(gs))

	// storyteller 2, true index 0: nobody finds it
	gs = play(t, m, gs,
		NewRequest(REQ_R3_SELECT_STORYTELLER, SelectStorytellerRequest{PlayerID: 2}),
	)
	_, storytellerListed := gs.Round3.NonPlayerGuesses[2]
	assert.False(t, storytellerListed)
	assert.Equal(t, []string{"d", "e", "f"}, gs.Round3.CurrentStatements)
	assert.False(t, gs.Round3.ShowResult)

	out, err := m.Dispatch(&gs, NewRequest(REQ_R3_REVEAL_RESULT, nil))
	require.NoError(t, err)
	assert.Contains(t, out.Notice, "fooled everyone")
	gs = applyOutcome(t, gs, out)
	assert.Equal(t, map[int]int{1: 0, 2: 6, 3: 0, 4: 3}, scores(gs))

	gs = play(t, m, gs,
		NewRequest(REQ_R3_SELECT_STORYTELLER, SelectStorytellerRequest{PlayerID: 3}),
		choose(1, 2),
		NewRequest(REQ_R3_REVEAL_RESULT, nil),
	)
	assert.Equal(t, []int{1, 2, 3}, gs.Round3.CompletedStorytellers)

	for _, id := range []int{1, 2, 3} {
		_, err := m.Dispatch(&gs, NewRequest(REQ_R3_SELECT_STORYTELLER, SelectStorytellerRequest{PlayerID: id}))
		assert.ErrorIs(t, err, ErrStorytellerDone)
	}

	_, err = m.Dispatch(&gs, NewRequest(REQ_R3_SELECT_STORYTELLER, SelectStorytellerRequest{PlayerID: 4}))
	assert.ErrorIs(t, err, ErrSetNotFound)
}

func TestRound3_RepeatedRevealKeepsCompletedUnique(t *testing.T) {
	m := newTestMachine(false)
	gs := inRound(m, ROUND_R3)

	gs = play(t, m, gs,
		NewRequest(REQ_R3_SELECT_STORYTELLER, SelectStorytellerRequest{PlayerID: 1}),
		NewRequest(REQ_R3_REVEAL_RESULT, nil),
		NewRequest(REQ_R3_REVEAL_RESULT, nil),
	)

	assert.Equal(t, []int{1}, gs.Round3.CompletedStorytellers)

	_, err := m.Dispatch(&gs, NewRequest(REQ_R3_RECORD_GUESS, RecordChoiceRequest{PlayerID: 2, Index: IntPtr(3)}))
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestRound4_AwardAndReveal(t *testing.T) {
	m := newTestMachine(false)
	gs := inRound(m, ROUND_R4)

	out, err := m.Dispatch(&gs, NewRequest(REQ_R4_AWARD_WINNER, AwardWinnerRequest{PlayerID: 3}))
	require.NoError(t, err)
	assert.Equal(t, "Player 3 wins Round 4 and is awarded +8 points!", out.Notice)

	gs = applyOutcome(t, gs, out)
	gs = play(t, m, gs, NewRequest(REQ_R4_REVEAL_REAL_OWNER, nil))

	require.NotNil(t, gs.Round4.WinnerID)
	assert.Equal(t, 3, *gs.Round4.WinnerID)
	assert.Equal(t, 8, scores(gs)[3])
	assert.True(t, gs.Round4.ShowRealOwner)
	assert.Equal(t, 2, gs.Round4.RealOwnerID)
}

func TestToggleRevealOrder(t *testing.T) {
	assert.Equal(t, []int{1}, ToggleRevealOrder(nil, 1, true))
	assert.Equal(t, []int{2, 1}, ToggleRevealOrder([]int{1, 2}, 1, true))
	assert.Equal(t, []int{2}, ToggleRevealOrder([]int{1, 2}, 1, false))
	assert.Equal(t, []int{}, ToggleRevealOrder([]int{}, 3, false))
}

func TestCoerceNumber(t *testing.T) {
	cases := map[string]*float64{
		``:        nil,
		`null`:    nil,
		`""`:      nil,
		`"  12 "`: FloatPtr(12),
		`"NaN"`:   nil,
		`"Inf"`:   nil,
		`true`:    nil,
		`-3.25`:   FloatPtr(-3.25),
		`0`:       FloatPtr(0),
	}

	for raw, want := range cases {
		got := CoerceNumber(json.RawMessage(raw))
		if want == nil {
			assert.Nil(t, got, raw)
			continue
		}

		require.NotNil(t, got, raw)
		assert.Equal(t, *want, *got, raw)
	}
}
