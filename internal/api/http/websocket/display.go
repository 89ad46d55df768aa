package websocket

import (
	"context"
	"time"

	"lie-hard-be/internal/service/display"
	"lie-hard-be/internal/service/game"
	"lie-hard-be/internal/state"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"
)

// WatchDisplay pushes a Frame after every write to the live document.
// Client messages are read and discarded so pongs and closes get handled.
func WatchDisplay(appState *state.AppState) iris.Handler {
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

		states, err := appState.GameSvc.Watch(connCtx)
		if err != nil {
			conn.WriteJSON(game.WrapErrResponse(err.Error()))
			return
		}

		zap.L().Info("Display connected", zap.String("client_ip", clientIP))

		respCh := make(chan game.ResponseWrapper, respBufferSize)

		writeDoneCh := make(chan struct{})
		defer close(writeDoneCh)

		go writeLoop(conn, clientIP, writeDoneCh, respCh)

		go func() {
			for gs := range states {
				enqueueLatest(respCh, game.WrapResponse(game.RESP_FRAME, display.Project(gs)), clientIP)
			}
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if isUnexpectedClose(err) {
					zap.L().Error(
						"Failed to read message",
						zap.String("client_ip", clientIP),
						zap.Error(err),
					)
				}

				break
			}
		}

		zap.L().Info("Display disconnected", zap.String("client_ip", clientIP))
	}
}
