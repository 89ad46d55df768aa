package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMachine_InitializeWithoutDocument(t *testing.T) {
	m := newTestMachine(false)

	out, err := m.Dispatch(nil, NewRequest(REQ_INITIALIZE, nil))
	require.NoError(t, err)
	require.NotNil(t, out.Replace)

	gs := *out.Replace
	assert.Equal(t, ROUND_LOBBY, gs.CurrentRound)
	assert.False(t, gs.RoundStarted)
	assert.True(t, gs.ShowScoreboard)
	assert.False(t, gs.ShowLeaderboardModal)
	assert.Len(t, gs.Players, 4)
	assert.Equal(t, PART_STATEMENTS, gs.Round2.Part)
	assert.Equal(t, "A Well-Loved Stuffed Bear", gs.Round4.ObjectTitle)

	_, err = m.Dispatch(nil, NewRequest(REQ_START_ROUND_CONTENT, nil))
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestMachine_ResetToLobbyIsCanonical(t *testing.T) {
	m := newTestMachine(false)
	gs := inRound(m, ROUND_R1)

	gs = play(t, m, gs,
		NewRequest(REQ_R1_SELECT_STORYTELLER, SelectStorytellerRequest{PlayerID: 1}),
		NewRequest(REQ_R1_RECORD_GUESS, RecordTruthGuessRequest{PlayerID: 2, Guess: GUESS_TRUE}),
		NewRequest(REQ_R1_REVEAL_AND_SCORE, nil),
		NewRequest(REQ_START_ROUND, StartRoundRequest{Round: ROUND_R3}),
		NewRequest(REQ_START_ROUND_CONTENT, nil),
		NewRequest(REQ_R3_SELECT_STORYTELLER, SelectStorytellerRequest{PlayerID: 2}),
		NewRequest(REQ_R3_REVEAL_RESULT, nil),
		NewRequest(REQ_SHOW_LEADERBOARD, ShowLeaderboardRequest{Show: true}),
		NewRequest(REQ_TOGGLE_SCOREBOARD, nil),
	)

	out, err := m.Dispatch(&gs, NewRequest(REQ_RESET_TO_LOBBY, nil))
	require.NoError(t, err)
	require.NotNil(t, out.Replace)

	want, err := json.Marshal(NewGameState(DefaultRoster(), testContent()))
	require.NoError(t, err)
	got, err := json.Marshal(out.Replace)
	require.NoError(t, err)

	assert.Equal(t, string(want), string(got))
}

func TestMachine_Sequencer(t *testing.T) {
	m := newTestMachine(false)
	gs := m.Initial()

	gs = play(t, m, gs, NewRequest(REQ_START_ROUND, StartRoundRequest{Round: ROUND_R2}))
	assert.Equal(t, ROUND_R2, gs.CurrentRound)
	assert.False(t, gs.RoundStarted)

	gs = play(t, m, gs, NewRequest(REQ_START_ROUND_CONTENT, nil))
	assert.True(t, gs.RoundStarted)

	gs = play(t, m, gs, NewRequest(REQ_SHOW_WINNER, nil))
	assert.Equal(t, ROUND_WINNER, gs.CurrentRound)

	_, err := m.Dispatch(&gs, NewRequest(REQ_START_ROUND_CONTENT, nil))
	assert.ErrorIs(t, err, ErrIllegalTransition)

	_, err = m.Dispatch(&gs, NewRequest(REQ_START_ROUND, StartRoundRequest{Round: ROUND_WINNER}))
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = m.Dispatch(&gs, NewRequest("Teleport", nil))
	assert.ErrorIs(t, err, ErrUnknownAction)

	_, err = m.Dispatch(&gs, RequestWrapper{ActionType: REQ_START_ROUND, Data: json.RawMessage(`{"round":`)})
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestMachine_OverlayToggles(t *testing.T) {
	m := newTestMachine(false)
	gs := m.Initial()

	gs = play(t, m, gs, NewRequest(REQ_TOGGLE_SCOREBOARD, nil))
	assert.False(t, gs.ShowScoreboard)
	gs = play(t, m, gs, NewRequest(REQ_TOGGLE_SCOREBOARD, nil))
	assert.True(t, gs.ShowScoreboard)

	gs = play(t, m, gs, NewRequest(REQ_SHOW_LEADERBOARD, ShowLeaderboardRequest{Show: true}))
	assert.True(t, gs.ShowLeaderboardModal)
	gs = play(t, m, gs, NewRequest(REQ_SHOW_LEADERBOARD, ShowLeaderboardRequest{Show: false}))
	assert.False(t, gs.ShowLeaderboardModal)
}

func TestMachine_TrustedModeAllowsAnyOrder(t *testing.T) {
	m := newTestMachine(false)
	gs := m.Initial()

	// round action while in the lobby, then skipping straight to R4
	gs = play(t, m, gs,
		NewRequest(REQ_R4_AWARD_WINNER, AwardWinnerRequest{PlayerID: 1}),
		NewRequest(REQ_START_ROUND, StartRoundRequest{Round: ROUND_R4}),
		NewRequest(REQ_R4_AWARD_WINNER, AwardWinnerRequest{PlayerID: 1}),
	)

	assert.Equal(t, 16, scores(gs)[1])
}

func TestMachine_StrictMode(t *testing.T) {
	m := newTestMachine(true)
	gs := m.Initial()

	_, err := m.Dispatch(&gs, NewRequest(REQ_START_ROUND, StartRoundRequest{Round: ROUND_R2}))
	assert.ErrorIs(t, err, ErrIllegalTransition)

	_, err = m.Dispatch(&gs, NewRequest(REQ_SHOW_WINNER, nil))
	assert.ErrorIs(t, err, ErrIllegalTransition)

	gs = play(t, m, gs, NewRequest(REQ_START_ROUND, StartRoundRequest{Round: ROUND_R1}))

	// intro card still up
	_, err = m.Dispatch(&gs, NewRequest(REQ_R1_SELECT_STORYTELLER, SelectStorytellerRequest{PlayerID: 1}))
	assert.ErrorIs(t, err, ErrIllegalTransition)

	gs = play(t, m, gs,
		NewRequest(REQ_START_ROUND_CONTENT, nil),
		NewRequest(REQ_R1_SELECT_STORYTELLER, SelectStorytellerRequest{PlayerID: 1}),
	)

	_, err = m.Dispatch(&gs, NewRequest(REQ_R1_RECORD_GUESS, RecordTruthGuessRequest{PlayerID: 2, Guess: GUESS_TRUE}))
	assert.ErrorIs(t, err, ErrIllegalTransition)

	gs = play(t, m, gs,
		NewRequest(REQ_R1_OPEN_VOTING, nil),
		NewRequest(REQ_R1_RECORD_GUESS, RecordTruthGuessRequest{PlayerID: 2, Guess: GUESS_TRUE}),
		NewRequest(REQ_R1_REVEAL_AND_SCORE, nil),
	)

	_, err = m.Dispatch(&gs, NewRequest(REQ_R1_REVEAL_AND_SCORE, nil))
	assert.ErrorIs(t, err, ErrAlreadyScored)
	assert.Equal(t, 1, scores(gs)[2])

	_, err = m.Dispatch(&gs, NewRequest(REQ_R2_MOVE_TO_GUESSING, nil))
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestMachine_StrictRound3StorytellerCannotGuess(t *testing.T) {
	m := newTestMachine(true)
	gs := inRound(m, ROUND_R3)

	gs = play(t, m, gs, NewRequest(REQ_R3_SELECT_STORYTELLER, SelectStorytellerRequest{PlayerID: 1}))

	_, err := m.Dispatch(&gs, NewRequest(REQ_R3_RECORD_GUESS, RecordChoiceRequest{PlayerID: 1, Index: IntPtr(0)}))
	assert.ErrorIs(t, err, ErrIllegalTransition)

	gs = play(t, m, gs,
		NewRequest(REQ_R3_RECORD_GUESS, RecordChoiceRequest{PlayerID: 2, Index: IntPtr(1)}),
		NewRequest(REQ_R3_REVEAL_RESULT, nil),
	)

	_, err = m.Dispatch(&gs, NewRequest(REQ_R3_REVEAL_RESULT, nil))
	assert.ErrorIs(t, err, ErrAlreadyScored)
}

func TestMachine_ImportContentReplacesDocument(t *testing.T) {
	m := newTestMachine(false)
	gs := inRound(m, ROUND_R2)
	gs.Players[0].Score = 12

	content := Content{
		Round1Statements: []Round1Statement{{PlayerID: 4, Statement: "new", IsTruth: true}},
		Round2Statements: []string{"n0", "n1", "n2", "n3", "n4"},
		Round3Sets:       []Round3Set{{PlayerID: 4, Statements: []string{"x", "y", "z"}, TrueIndex: 2}},
	}

	gs = play(t, m, gs, NewRequest(REQ_IMPORT_CONTENT, ImportContentRequest{Content: content}))

	assert.Equal(t, ROUND_LOBBY, gs.CurrentRound)
	assert.Equal(t, 0, gs.Players[0].Score)
	assert.Equal(t, content.Round1Statements, gs.Round1.Statements)
	assert.Equal(t, content.Round2Statements, gs.Round2.Statements)
	assert.Len(t, gs.Round2.RevealedStatements, 5)
	assert.Equal(t, content.Round3Sets, gs.Round3.Sets)
	// round 4 falls back to the configured object
	assert.Equal(t, "/bear.png", gs.Round4.ObjectImage)
}
