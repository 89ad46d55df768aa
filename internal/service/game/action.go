package game

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

type StartRoundRequest struct {
	Round Round `json:"round"`
}

type ShowLeaderboardRequest struct {
	Show bool `json:"show"`
}

type SelectStorytellerRequest struct {
	PlayerID int `json:"player_id"`
}

type RecordTruthGuessRequest struct {
	PlayerID int   `json:"player_id"`
	Guess    Guess `json:"guess"`
}

type ToggleStatementRequest struct {
	Index int `json:"index"`
}

// RecordEstimateRequest carries a raw operator entry. Value may be a JSON
// number, a numeric string, or anything else (which clears the guess).
type RecordEstimateRequest struct {
	PlayerID int             `json:"player_id"`
	Value    json.RawMessage `json:"value"`
}

type RevealActualValueRequest struct {
	Value json.RawMessage `json:"value"`
}

type RecordChoiceRequest struct {
	PlayerID int  `json:"player_id"`
	Index    *int `json:"index"`
}

type AwardWinnerRequest struct {
	PlayerID int `json:"player_id"`
}

type ImportContentRequest struct {
	Content Content `json:"content"`
}

// CoerceNumber turns an operator entry into a finite number. Empty,
// non-numeric, NaN and infinite entries yield nil. Zero is a real value.
func CoerceNumber(raw json.RawMessage) *float64 {
	if len(raw) == 0 {
		return nil
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}

	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil
		}

		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}

		f = parsed
	default:
		return nil
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}

	return &f
}
