package http

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lie-hard-be/internal/api/http/websocket"
	"lie-hard-be/internal/service/dto"
	"lie-hard-be/internal/state"
	"lie-hard-be/internal/store"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

func NewApp(appState *state.AppState) *iris.Application {
	app := iris.Default()

	if webDir := appState.Cfg.WebDir; webDir != "" {
		app.HandleDir(
			"/",
			iris.Dir(webDir),
			iris.DirOptions{
				IndexName: "index.html",
				SPA:       true,
				Compress:  true,
			},
		)
	}

	app.Get("/healthz", Health(appState))

	api := app.Party("/api/v1")

	api.Get("/game/state", GetState(appState))
	api.Post("/game/actions", PostAction(appState))
	api.Post("/game/import", ImportContent(appState))

	api.Get("/display/frame", GetFrame(appState))
	api.Get("/display/events", DisplayEvents(appState))
	api.Get("/display/link", GetDisplayLink(appState))
	api.Get("/display/qr.png", DisplayQRCode(appState))

	api.Get("/ws/operator", websocket.OperateGame(appState))
	api.Get("/ws/display", websocket.WatchDisplay(appState))

	return app
}

// RunServer blocks until ctx is cancelled or the listener fails.
func RunServer(ctx context.Context, appState *state.AppState) error {
	app := NewApp(appState)

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := app.Shutdown(shutdownCtx); err != nil {
			zap.L().Error("Failed to shut down server", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(
		"%s:%d",
		appState.Cfg.Host,
		appState.Cfg.Port,
	)

	zap.L().Info(
		"Serving",
		zap.String("addr", addr),
		zap.String("display_url", appState.Cfg.DisplayURL()),
		zap.Bool("strict", appState.GameSvc.Strict()),
	)

	return app.Listen(
		addr,
		iris.WithoutInterruptHandler,
		iris.WithoutServerError(iris.ErrServerClosed),
	)
}

func Health(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		resp := dto.HealthResponse{
			Status: "ok",
			Store:  appState.Cfg.Store.Driver,
		}

		_, err := appState.Store.Read(ctx.Request().Context(), appState.GameSvc.DocumentID())
		if err != nil && !errors.Is(err, store.ErrDocumentNotFound) {
			zap.L().Warn("Health check could not read the live document", zap.Error(err))

			resp.Status = "degraded"
			ctx.StatusCode(iris.StatusServiceUnavailable)
		}

		ctx.JSON(resp)
	}
}
