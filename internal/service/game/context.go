package game

import (
	"strconv"
	"strings"
)

// Turn carries one action through the machine. State is the document as
// read right before the action; handlers must not mutate it.
type Turn struct {
	State  *GameState
	Strict bool
}

// Update is a set of field-path writes keyed by dotted path, e.g.
// "round2.guesses.3". All paths of one Update land in a single write.
type Update map[string]any

func (u Update) Set(path string, value any) Update {
	u[path] = value
	return u
}

// Outcome is what an action resolves to: either a partial Update or a
// whole-document Replace, plus the notice shown to the operator.
type Outcome struct {
	Update  Update
	Replace *GameState
	Notice  string
}

func Path(parts ...any) string {
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		switch v := part.(type) {
		case string:
			segments = append(segments, v)
		case int:
			segments = append(segments, strconv.Itoa(v))
		}
	}

	return strings.Join(segments, ".")
}

func updateOutcome(u Update, notice string) Outcome {
	return Outcome{Update: u, Notice: notice}
}

func replaceOutcome(gs GameState, notice string) Outcome {
	return Outcome{Replace: &gs, Notice: notice}
}
