package websocket

import (
	"context"
	"encoding/json"
	"time"

	"lie-hard-be/internal/service/game"
	"lie-hard-be/internal/state"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"
)

// OperateGame serves the operator console. Every text message is a
// RequestWrapper; each one is answered with an ActionResult or an Error
// carrying the same request_id. The live document is pushed as State
// after every write, including writes from other consoles.
func OperateGame(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		conn, err := upgrader.Upgrade(
			ctx.ResponseWriter(),
			ctx.Request(),
			nil,
		)
		if err != nil {
			zap.L().Error("Failed to upgrade to WebSocket", zap.Error(err))
			ctx.StatusCode(iris.StatusBadRequest)
			return
		}

		defer conn.Close()

		clientIP := ctx.RemoteAddr()

		connCtx, cancel := context.WithCancel(ctx.Request().Context())
		defer cancel()

		conn.SetReadDeadline(time.Now().Add(HEARTBEAT_TIMEOUT))
		conn.SetPongHandler(heartbeatHandler(conn))

		respCh := make(chan game.ResponseWrapper, respBufferSize)

		// make sure a document exists before the first push
		if _, err := appState.GameSvc.State(connCtx); err != nil {
			zap.L().Error(
				"Failed to load live document for operator",
				zap.String("client_ip", clientIP),
				zap.Error(err),
			)
			conn.WriteJSON(game.WrapErrResponse(err.Error()))
			return
		}

		states, err := appState.GameSvc.Watch(connCtx)
		if err != nil {
			conn.WriteJSON(game.WrapErrResponse(err.Error()))
			return
		}

		zap.L().Info("Operator console connected", zap.String("client_ip", clientIP))

		writeDoneCh := make(chan struct{})
		defer close(writeDoneCh)

		go writeLoop(conn, clientIP, writeDoneCh, respCh)

		go func() {
			for gs := range states {
				enqueue(respCh, game.WrapResponse(game.RESP_STATE, gs), clientIP)
			}
		}()

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if isUnexpectedClose(err) {
					zap.L().Error(
						"Failed to read message",
						zap.String("client_ip", clientIP),
						zap.Error(err),
					)
				}

				break
			}

			var wrapper game.RequestWrapper

			if err := json.Unmarshal(msg, &wrapper); err != nil {
				zap.L().Warn(
					"Failed to decode message",
					zap.String("client_ip", clientIP),
					zap.Error(err),
				)

				enqueue(respCh, game.WrapErrResponse(game.ErrInvalidPayload.Error()), clientIP)
				continue
			}

			res, err := appState.GameSvc.Do(connCtx, wrapper)
			if err != nil {
				resp := game.WrapErrResponse(err.Error())
				resp.RequestID = wrapper.RequestID

				enqueue(respCh, resp, clientIP)
				continue
			}

			resp := game.WrapResponse(game.RESP_RESULT, res)
			resp.RequestID = res.RequestID
			resp.Notice = res.Notice

			enqueue(respCh, resp, clientIP)
		}

		zap.L().Info("Operator console disconnected", zap.String("client_ip", clientIP))
	}
}
