package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lie-hard-be/internal/service/display"
	"lie-hard-be/internal/service/dto"
	"lie-hard-be/internal/state"
	"lie-hard-be/internal/store"

	"github.com/kataras/iris/v12"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

const (
	SSE_EVENT_FRAME   = "frame"
	SSE_EVENT_LOADING = "loading"

	sseKeepAlive = 15 * time.Second
	qrCodeSize   = 256
)

// GetFrame never creates the document. Until someone initializes the
// game it answers 404 and the display keeps showing its loading screen.
func GetFrame(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		gs, err := appState.GameSvc.Peek(ctx.Request().Context())
		if err != nil {
			writeError(ctx, err)
			return
		}

		ctx.JSON(display.Project(gs))
	}
}

func DisplayEvents(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		reqCtx := ctx.Request().Context()
		clientIP := ctx.RemoteAddr()

		states, err := appState.GameSvc.Watch(reqCtx)
		if err != nil {
			writeError(ctx, err)
			return
		}

		ctx.Header("Content-Type", "text/event-stream")
		ctx.Header("Cache-Control", "no-cache")
		ctx.Header("Connection", "keep-alive")
		ctx.StatusCode(iris.StatusOK)

		w := ctx.ResponseWriter()

		if _, err := appState.GameSvc.Peek(reqCtx); errors.Is(err, store.ErrDocumentNotFound) {
			fmt.Fprintf(w, "event: %s\ndata: {}\n\n", SSE_EVENT_LOADING)
		}
		w.Flush()

		zap.L().Info("Display connected over SSE", zap.String("client_ip", clientIP))
		defer zap.L().Info("Display disconnected from SSE", zap.String("client_ip", clientIP))

		ticker := time.NewTicker(sseKeepAlive)
		defer ticker.Stop()

		for {
			select {
			case <-reqCtx.Done():
				return

			case <-ticker.C:
				fmt.Fprint(w, ": keep-alive\n\n")
				w.Flush()

			case gs, ok := <-states:
				if !ok {
					return
				}

				data, err := json.Marshal(display.Project(gs))
				if err != nil {
					zap.L().Error("Failed to encode display frame", zap.Error(err))
					continue
				}

				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", SSE_EVENT_FRAME, data)
				w.Flush()
			}
		}
	}
}

func GetDisplayLink(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		ctx.JSON(dto.DisplayLink{
			URL:    appState.Cfg.DisplayURL(),
			QRCode: "/api/v1/display/qr.png",
		})
	}
}

// DisplayQRCode lets the operator point the projector browser at the
// display without typing the address.
func DisplayQRCode(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		png, err := qrcode.Encode(appState.Cfg.DisplayURL(), qrcode.Medium, qrCodeSize)
		if err != nil {
			zap.L().Error("Failed to encode display QR code", zap.Error(err))
			writeError(ctx, err)
			return
		}

		ctx.ContentType("image/png")
		ctx.Write(png)
	}
}
