package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyFields_NullAndNumbers(t *testing.T) {
	raw := []byte(`{"round2":{"guesses":{"1":12345678901234567890,"2":4}},"v":1}`)

	var cleared *float64
	out, err := applyFields(raw, Fields{"round2.guesses.2": cleared})
	require.NoError(t, err)

	// large integers keep their original text
	assert.JSONEq(t, `{"round2":{"guesses":{"1":12345678901234567890,"2":null}},"v":1}`, string(out))
	assert.Contains(t, string(out), "12345678901234567890")

	_, err = applyFields([]byte(`[1,2]`), Fields{"a": 1})
	assert.ErrorIs(t, err, ErrInvalidPath)

	_, err = applyFields(raw, Fields{"v.deeper": 1})
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestApplyFields_CreatesIntermediateObjects(t *testing.T) {
	raw := []byte(`{"round1":{"guesses":{}},"gone":null}`)

	out, err := applyFields(raw, Fields{
		"round1.guesses.3":          "TRUE",
		"round3.nonPlayerGuesses.2": 1,
		"gone.7.x":                  true,
	})
	require.NoError(t, err)

	// numeric keys stay object keys, never array indices
	assert.JSONEq(t, `{
		"round1": {"guesses": {"3": "TRUE"}},
		"round3": {"nonPlayerGuesses": {"2": 1}},
		"gone": {"7": {"x": true}}
	}`, string(out))
}

func TestApplyFields_AllOrNothing(t *testing.T) {
	raw := []byte(`{"players":[{"id":1,"score":0}],"round1":{"showResult":false}}`)
	before := string(raw)

	_, err := applyFields(raw, Fields{
		"round1.showResult": true,
		"players.0.score":   4,
	})
	assert.ErrorIs(t, err, ErrInvalidPath)
	assert.Equal(t, before, string(raw))

	_, err = applyFields(raw, Fields{".x": 1})
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestApplyFields_ReplacesWholeSubtree(t *testing.T) {
	raw := []byte(`{"players":[{"id":1,"score":0},{"id":2,"score":0}],"round2":{"winnerId":null}}`)

	out, err := applyFields(raw, Fields{
		"players":         []map[string]int{{"id": 1, "score": 0}, {"id": 2, "score": 4}},
		"round2.winnerId": 2,
	})
	require.NoError(t, err)

	assert.JSONEq(t, `{"players":[{"id":1,"score":0},{"id":2,"score":4}],"round2":{"winnerId":2}}`, string(out))
}

func TestEscapeKey(t *testing.T) {
	assert.Equal(t, "guesses", escapeKey("guesses"))
	assert.Equal(t, `a\.b`, escapeKey("a.b"))
	assert.Equal(t, `round1.weird\*key`, joinPath([]string{"round1", "weird*key"}))
}
