package http

import (
	"context"
	"errors"

	"lie-hard-be/internal/service"
	"lie-hard-be/internal/service/csvimport"
	"lie-hard-be/internal/service/dto"
	"lie-hard-be/internal/service/game"
	"lie-hard-be/internal/store"

	"github.com/kataras/iris/v12"
)

// StatusFor maps an action or import failure to the status the operator
// console sees.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrWriteFailure):
		return iris.StatusBadGateway

	case errors.Is(err, game.ErrUnknownAction),
		errors.Is(err, game.ErrInvalidPayload),
		errors.Is(err, game.ErrInvalidValue),
		errors.Is(err, game.ErrUnknownPlayer),
		errors.Is(err, game.ErrStatementIndex),
		errors.Is(err, csvimport.ErrInvalidImport),
		errors.Is(err, csvimport.ErrMissingFile),
		errors.Is(err, store.ErrInvalidPath):
		return iris.StatusBadRequest

	case errors.Is(err, game.ErrIllegalTransition),
		errors.Is(err, game.ErrAlreadyScored),
		errors.Is(err, game.ErrStorytellerDone):
		return iris.StatusConflict

	case errors.Is(err, game.ErrMissingStatement),
		errors.Is(err, game.ErrMissingActualValue),
		errors.Is(err, game.ErrSetNotFound),
		errors.Is(err, game.ErrNoStoryteller),
		errors.Is(err, game.ErrNoGuesses):
		return iris.StatusUnprocessableEntity

	case errors.Is(err, store.ErrDocumentNotFound):
		return iris.StatusNotFound

	case errors.Is(err, service.ErrServiceBusy),
		errors.Is(err, service.ErrClosed):
		return iris.StatusServiceUnavailable

	case errors.Is(err, context.DeadlineExceeded):
		return iris.StatusGatewayTimeout

	default:
		return iris.StatusInternalServerError
	}
}

func writeError(ctx iris.Context, err error) {
	ctx.StatusCode(StatusFor(err))
	ctx.JSON(dto.ErrorResponse{
		Error: err.Error(),
	})
}
