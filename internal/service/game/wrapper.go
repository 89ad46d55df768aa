package game

import (
	"encoding/json"
	"fmt"
)

// Action types
const (
	REQ_INITIALIZE          = "InitializeGame"
	REQ_RESET_TO_LOBBY      = "ResetToLobby"
	REQ_IMPORT_CONTENT      = "ImportContent"
	REQ_START_ROUND         = "StartRound"
	REQ_START_ROUND_CONTENT = "StartRoundContent"
	REQ_SHOW_WINNER         = "ShowWinner"
	REQ_TOGGLE_SCOREBOARD   = "ToggleScoreboard"
	REQ_SHOW_LEADERBOARD    = "ShowLeaderboard"

	REQ_R1_SELECT_STORYTELLER = "R1SelectStoryteller"
	REQ_R1_RECORD_GUESS       = "R1RecordGuess"
	REQ_R1_OPEN_VOTING        = "R1OpenVoting"
	REQ_R1_CLOSE_VOTING       = "R1CloseVoting"
	REQ_R1_REVEAL_AND_SCORE   = "R1RevealAndScore"

	REQ_R2_TOGGLE_STATEMENT    = "R2ToggleStatement"
	REQ_R2_MOVE_TO_GUESSING    = "R2MoveToGuessing"
	REQ_R2_RECORD_GUESS        = "R2RecordGuess"
	REQ_R2_REVEAL_ACTUAL_VALUE = "R2RevealActualValue"
	REQ_R2_REVEAL_WINNER       = "R2RevealWinner"

	REQ_R3_SELECT_STORYTELLER = "R3SelectStoryteller"
	REQ_R3_RECORD_GUESS       = "R3RecordGuess"
	REQ_R3_OPEN_VOTING        = "R3OpenVoting"
	REQ_R3_CLOSE_VOTING       = "R3CloseVoting"
	REQ_R3_REVEAL_RESULT      = "R3RevealResult"

	REQ_R4_AWARD_WINNER      = "R4AwardWinner"
	REQ_R4_REVEAL_REAL_OWNER = "R4RevealRealOwner"
)

// actionRounds binds every round action to the round it belongs to.
var actionRounds = map[string]Round{
	REQ_R1_SELECT_STORYTELLER: ROUND_R1,
	REQ_R1_RECORD_GUESS:       ROUND_R1,
	REQ_R1_OPEN_VOTING:        ROUND_R1,
	REQ_R1_CLOSE_VOTING:       ROUND_R1,
	REQ_R1_REVEAL_AND_SCORE:   ROUND_R1,

	REQ_R2_TOGGLE_STATEMENT:    ROUND_R2,
	REQ_R2_MOVE_TO_GUESSING:    ROUND_R2,
	REQ_R2_RECORD_GUESS:        ROUND_R2,
	REQ_R2_REVEAL_ACTUAL_VALUE: ROUND_R2,
	REQ_R2_REVEAL_WINNER:       ROUND_R2,

	REQ_R3_SELECT_STORYTELLER: ROUND_R3,
	REQ_R3_RECORD_GUESS:       ROUND_R3,
	REQ_R3_OPEN_VOTING:        ROUND_R3,
	REQ_R3_CLOSE_VOTING:       ROUND_R3,
	REQ_R3_REVEAL_RESULT:      ROUND_R3,

	REQ_R4_AWARD_WINNER:      ROUND_R4,
	REQ_R4_REVEAL_REAL_OWNER: ROUND_R4,
}

type RequestWrapper struct {
	ActionType string          `json:"action_type"`
	RequestID  string          `json:"request_id,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
}

// NewRequest wraps a payload under the given action type.
func NewRequest(actionType string, data any) RequestWrapper {
	wrapper := RequestWrapper{ActionType: actionType}
	if data != nil {
		wrapper.Data = mustMarshal(data)
	}

	return wrapper
}

// Unwrap decodes the payload of an action. An absent payload decodes to
// the zero value.
func Unwrap[T any](wrapper RequestWrapper) (T, error) {
	var data T

	if len(wrapper.Data) == 0 || string(wrapper.Data) == "null" {
		return data, nil
	}

	if err := json.Unmarshal(wrapper.Data, &data); err != nil {
		return data, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, wrapper.ActionType, err)
	}

	return data, nil
}

// Response types
const (
	RESP_ERROR  = "Error"
	RESP_STATE  = "State"
	RESP_FRAME  = "Frame"
	RESP_RESULT = "ActionResult"
)

type ResponseWrapper struct {
	RespType  string `json:"response_type"`
	RequestID string `json:"request_id,omitempty"`
	Data      any    `json:"data"`
	Notice    string `json:"notice,omitempty"`
	ErrMsg    string `json:"error_message,omitempty"`
}

func WrapResponse(respType string, data any) ResponseWrapper {
	return ResponseWrapper{
		RespType: respType,
		Data:     data,
	}
}

func WrapErrResponse(errMsg string) ResponseWrapper {
	return ResponseWrapper{
		RespType: RESP_ERROR,
		ErrMsg:   errMsg,
	}
}
