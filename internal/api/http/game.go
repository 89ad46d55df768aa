package http

import (
	"errors"
	"fmt"
	"io"
	nethttp "net/http"

	"lie-hard-be/internal/service/csvimport"
	"lie-hard-be/internal/service/dto"
	"lie-hard-be/internal/state"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"
)

func GetState(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		gs, err := appState.GameSvc.State(ctx.Request().Context())
		if err != nil {
			writeError(ctx, err)
			return
		}

		ctx.JSON(gs)
	}
}

// ImportContent reads the round1, round2 and round3 multipart files and
// replaces the live document with a fresh lobby carrying their content.
func ImportContent(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		var files csvimport.Files

		for _, part := range []struct {
			key string
			dst *io.Reader
		}{
			{"round1", &files.Round1},
			{"round2", &files.Round2},
			{"round3", &files.Round3},
		} {
			f, _, err := ctx.FormFile(part.key)
			if errors.Is(err, nethttp.ErrMissingFile) {
				continue
			}
			if err != nil {
				writeError(ctx, fmt.Errorf("%w: %v", csvimport.ErrInvalidImport, err))
				return
			}

			defer f.Close()
			*part.dst = f
		}

		content, err := csvimport.Parse(files)
		if err != nil {
			zap.L().Warn(
				"Rejected content import",
				zap.String("client_ip", ctx.RemoteAddr()),
				zap.Error(err),
			)
			writeError(ctx, err)
			return
		}

		res, err := appState.GameSvc.Import(ctx.Request().Context(), content)
		if err != nil {
			writeError(ctx, err)
			return
		}

		ctx.JSON(dto.ImportResponse{
			Round1Statements: len(content.Round1Statements),
			Round2Statements: len(content.Round2Statements),
			Round3Sets:       len(content.Round3Sets),
			Notice:           res.Notice,
		})
	}
}
