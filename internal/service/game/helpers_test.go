package game

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// applyOutcome mirrors what the document store does with an Outcome so
// action sequences can be exercised without one.
func applyOutcome(t *testing.T, gs GameState, out Outcome) GameState {
	t.Helper()

	if out.Replace != nil {
		return *out.Replace
	}

	var doc map[string]any
	require.NoError(t, json.Unmarshal(mustMarshal(gs), &doc))

	for path, value := range out.Update {
		parts := strings.Split(path, ".")
		node := doc
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[part] = child
			}
			node = child
		}

		var normalized any
		require.NoError(t, json.Unmarshal(mustMarshal(value), &normalized))
		node[parts[len(parts)-1]] = normalized
	}

	var next GameState
	require.NoError(t, json.Unmarshal(mustMarshal(doc), &next))

	return next
}

// play dispatches a sequence of actions, failing on the first error.
func play(t *testing.T, m *Machine, gs GameState, reqs ...RequestWrapper) GameState {
	t.Helper()

	for _, req := range reqs {
		out, err := m.Dispatch(&gs, req)
		require.NoError(t, err, "action %s", req.ActionType)
		gs = applyOutcome(t, gs, out)
	}

	return gs
}

func testContent() Content {
	return Content{
		Round1Statements: []Round1Statement{
			{PlayerID: 1, Statement: "I once met a famous astronaut", IsTruth: true},
			{PlayerID: 2, Statement: "I have never seen snow", IsTruth: false},
			{PlayerID: 3, Statement: "I can juggle five balls", IsTruth: false},
		},
		Round2Statements: []string{"s0", "s1", "s2", "s3", "s4"},
		Round3Sets: []Round3Set{
			{PlayerID: 1, Statements: []string{"a", "b", "c"}, TrueIndex: 1},
			{PlayerID: 2, Statements: []string{"d", "e", "f"}, TrueIndex: 0},
			{PlayerID: 3, Statements: []string{"g", "h", "i"}, TrueIndex: 2},
		},
		Round4: DefaultRound4(),
	}
}

func newTestMachine(strict bool) *Machine {
	return NewMachine(MachineOptions{
		Strict:   strict,
		Roster:   DefaultRoster(),
		Defaults: testContent(),
	})
}

// inRound returns a fresh document with the given round running.
func inRound(m *Machine, round Round) GameState {
	gs := m.Initial()
	gs.CurrentRound = round
	gs.RoundStarted = true

	return gs
}

func scores(gs GameState) map[int]int {
	out := make(map[int]int, len(gs.Players))
	for _, p := range gs.Players {
		out[p.ID] = p.Score
	}

	return out
}
