package state

import (
	"lie-hard-be/internal/config"
	"lie-hard-be/internal/service"
	"lie-hard-be/internal/store"
)

type AppState struct {
	Cfg     *config.AppConfig
	Store   store.DocumentStore
	GameSvc *service.GameService
}

func NewAppState(
	cfg *config.AppConfig,
	st store.DocumentStore,
	gameSvc *service.GameService,
) *AppState {
	return &AppState{
		Cfg:     cfg,
		Store:   st,
		GameSvc: gameSvc,
	}
}
