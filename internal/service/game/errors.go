package game

import "errors"

// Precondition failures. Nothing is written when an action returns one of these.
var (
	ErrMissingStatement   = errors.New("storyteller has no round 1 statement")
	ErrMissingActualValue = errors.New("actual value has not been revealed")
	ErrSetNotFound        = errors.New("storyteller has no round 3 set")
	ErrNoStoryteller      = errors.New("no storyteller selected")
	ErrNoGuesses          = errors.New("no valid guesses recorded")
)

// Input failures.
var (
	ErrStatementIndex = errors.New("statement index out of range")
	ErrInvalidValue   = errors.New("invalid value")
	ErrUnknownPlayer  = errors.New("unknown player")
	ErrUnknownAction  = errors.New("unknown action")
	ErrInvalidPayload = errors.New("invalid action payload")
)

// Sequencing failures, only raised in strict mode.
var (
	ErrIllegalTransition = errors.New("illegal transition")
	ErrAlreadyScored     = errors.New("result already scored")
	ErrStorytellerDone   = errors.New("storyteller already completed")
)
