package websocket

import (
	"net/http"
	"time"

	"lie-hard-be/internal/service/game"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// NOTE: any origin is accepted
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

const (
	HEARTBEAT_INTERVAL = 30 * time.Second
	HEARTBEAT_TIMEOUT  = 45 * time.Second

	respBufferSize = 64
)

var heartbeatHandler = func(conn *websocket.Conn) func(string) error {
	return func(string) error {
		conn.SetReadDeadline(time.Now().Add(HEARTBEAT_TIMEOUT))
		return nil
	}
}

// writeLoop is the only goroutine that writes to conn. It pings on
// HEARTBEAT_INTERVAL and exits when doneCh closes or a write fails.
func writeLoop(
	conn *websocket.Conn,
	clientIP string,
	doneCh <-chan struct{},
	respCh <-chan game.ResponseWrapper,
) {
	ticker := time.NewTicker(HEARTBEAT_INTERVAL)
	defer ticker.Stop()

	for {
		select {
		case <-doneCh:
			zap.L().Debug(
				"WebSocket writer exited",
				zap.String("client_ip", clientIP),
			)
			return

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(HEARTBEAT_TIMEOUT))

			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				zap.L().Error(
					"Failed to send heartbeat",
					zap.String("client_ip", clientIP),
					zap.Error(err),
				)
				return
			}

		case resp := <-respCh:
			conn.SetWriteDeadline(time.Now().Add(HEARTBEAT_TIMEOUT))

			if err := conn.WriteJSON(resp); err != nil {
				zap.L().Error(
					"Failed to send message",
					zap.String("client_ip", clientIP),
					zap.Error(err),
				)
				return
			}

			zap.L().Debug(
				"Sent message",
				zap.String("client_ip", clientIP),
				zap.String("response_type", resp.RespType),
			)
		}
	}
}

// enqueue never blocks the reader; a full buffer means the client is not
// draining and the response is dropped.
func enqueue(respCh chan<- game.ResponseWrapper, resp game.ResponseWrapper, clientIP string) {
	select {
	case respCh <- resp:
	default:
		zap.L().Warn(
			"Response buffer full, dropping message",
			zap.String("client_ip", clientIP),
			zap.String("response_type", resp.RespType),
		)
	}
}

// enqueueLatest never blocks either; when the buffer is full the oldest
// response is dropped so the newest one always gets through.
func enqueueLatest(respCh chan game.ResponseWrapper, resp game.ResponseWrapper, clientIP string) {
	for {
		select {
		case respCh <- resp:
			return
		default:
		}

		select {
		case stale := <-respCh:
			zap.L().Warn(
				"Response buffer full, dropping oldest message",
				zap.String("client_ip", clientIP),
				zap.String("response_type", stale.RespType),
			)
		default:
		}
	}
}

func isUnexpectedClose(err error) bool {
	return websocket.IsUnexpectedCloseError(
		err,
		websocket.CloseGoingAway,
		websocket.CloseNormalClosure,
		websocket.CloseAbnormalClosure,
	)
}
