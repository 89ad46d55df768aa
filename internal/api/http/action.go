package http

import (
	"fmt"

	"lie-hard-be/internal/service/game"
	"lie-hard-be/internal/state"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"
)

// PostAction applies one operator action. Both success and failure are
// answered with a ResponseWrapper so the console can show error_message
// as a blocking notification.
func PostAction(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		var wrapper game.RequestWrapper

		if err := ctx.ReadJSON(&wrapper); err != nil {
			err = fmt.Errorf("%w: %v", game.ErrInvalidPayload, err)

			ctx.StatusCode(StatusFor(err))
			ctx.JSON(game.WrapErrResponse(err.Error()))
			return
		}

		res, err := appState.GameSvc.Do(ctx.Request().Context(), wrapper)
		if err != nil {
			zap.L().Debug(
				"Operator action failed",
				zap.String("client_ip", ctx.RemoteAddr()),
				zap.String("action", wrapper.ActionType),
				zap.Error(err),
			)

			resp := game.WrapErrResponse(err.Error())
			resp.RequestID = wrapper.RequestID

			ctx.StatusCode(StatusFor(err))
			ctx.JSON(resp)
			return
		}

		resp := game.WrapResponse(game.RESP_RESULT, res)
		resp.RequestID = res.RequestID
		resp.Notice = res.Notice

		ctx.JSON(resp)
	}
}
