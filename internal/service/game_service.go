package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"lie-hard-be/internal/service/dto"
	"lie-hard-be/internal/service/game"
	"lie-hard-be/internal/store"

	"go.uber.org/zap"
)

const requestTimeout = 5 * time.Second

// GameService applies operator actions to the live document. All actions
// of this process go through one loop, so read-modify-write never
// interleaves locally.
type GameService struct {
	state *gameServiceState
}

type gameServiceState struct {
	store   store.DocumentStore
	docID   string
	machine *game.Machine

	reqCh     chan actionRequest
	doneCh    chan struct{}
	closeOnce sync.Once
}

func NewGameService(st store.DocumentStore, docID string, machine *game.Machine) *GameService {
	state := &gameServiceState{
		store:   st,
		docID:   docID,
		machine: machine,
		reqCh:   make(chan actionRequest),
		doneCh:  make(chan struct{}),
	}

	go state.actionLoop()

	return &GameService{
		state: state,
	}
}

func (gsvc *GameService) Close() {
	gsvc.state.closeOnce.Do(func() {
		close(gsvc.state.doneCh)
	})
}

func (gsvc *GameService) DocumentID() string {
	return gsvc.state.docID
}

func (gsvc *GameService) Strict() bool {
	return gsvc.state.machine.Strict()
}

// Do runs one action and returns the document as written.
func (gsvc *GameService) Do(ctx context.Context, wrapper game.RequestWrapper) (dto.ActionResult, error) {
	if wrapper.RequestID == "" {
		wrapper.RequestID = game.GenID()
	}

	res, err := gsvc.submit(ctx, actionRequest{
		ctx:     ctx,
		wrapper: wrapper,
		resCh:   make(chan actionResponseWrapper, 1),
	})
	if err != nil {
		return dto.ActionResult{}, err
	}

	return dto.ActionResult{
		RequestID: wrapper.RequestID,
		Action:    wrapper.ActionType,
		Notice:    res.Notice,
		State:     res.State,
	}, nil
}

// State returns the live document, creating it when it does not exist.
// The existence check is repeated inside the action loop, so a game
// started in the meantime is returned rather than overwritten.
func (gsvc *GameService) State(ctx context.Context) (game.GameState, error) {
	raw, err := gsvc.state.store.Read(ctx, gsvc.state.docID)
	if err == nil {
		return decodeState(raw)
	}

	if !errors.Is(err, store.ErrDocumentNotFound) {
		return game.GameState{}, err
	}

	res, err := gsvc.submit(ctx, actionRequest{
		ctx:    ctx,
		ensure: true,
		resCh:  make(chan actionResponseWrapper, 1),
	})
	if err != nil {
		return game.GameState{}, err
	}

	return res.State, nil
}

func (gsvc *GameService) submit(ctx context.Context, req actionRequest) (actionResponseWrapper, error) {
	select {
	case <-gsvc.state.doneCh:
		return actionResponseWrapper{}, ErrClosed
	default:
	}

	reqTimer := time.NewTimer(requestTimeout)
	defer reqTimer.Stop()

	select {
	case gsvc.state.reqCh <- req:
	case <-gsvc.state.doneCh:
		return actionResponseWrapper{}, ErrClosed
	case <-ctx.Done():
		return actionResponseWrapper{}, ctx.Err()
	case <-reqTimer.C:
		zap.L().Warn("Action loop did not accept request in time", zap.String("action", req.wrapper.ActionType))
		return actionResponseWrapper{}, ErrServiceBusy
	}

	select {
	case res := <-req.resCh:
		if res.Err != nil {
			return actionResponseWrapper{}, res.Err
		}

		return res, nil
	case <-ctx.Done():
		return actionResponseWrapper{}, ctx.Err()
	}
}

// Peek reads the live document without creating it. It returns
// store.ErrDocumentNotFound when nobody has initialized the game yet.
func (gsvc *GameService) Peek(ctx context.Context) (game.GameState, error) {
	raw, err := gsvc.state.store.Read(ctx, gsvc.state.docID)
	if err != nil {
		return game.GameState{}, err
	}

	return decodeState(raw)
}

func (gsvc *GameService) Initialize(ctx context.Context) (dto.ActionResult, error) {
	return gsvc.Do(ctx, game.NewRequest(game.REQ_INITIALIZE, nil))
}

func (gsvc *GameService) ResetToLobby(ctx context.Context) (dto.ActionResult, error) {
	return gsvc.Do(ctx, game.NewRequest(game.REQ_RESET_TO_LOBBY, nil))
}

func (gsvc *GameService) Import(ctx context.Context, content game.Content) (dto.ActionResult, error) {
	return gsvc.Do(ctx, game.NewRequest(game.REQ_IMPORT_CONTENT, game.ImportContentRequest{Content: content}))
}

// Watch streams the document after every write. Only the newest state is
// kept for a slow reader. The channel closes when ctx ends.
func (gsvc *GameService) Watch(ctx context.Context) (<-chan game.GameState, error) {
	sub, err := gsvc.state.store.Subscribe(ctx, gsvc.state.docID)
	if err != nil {
		zap.L().Error("Failed to subscribe to live document", zap.String("doc_id", gsvc.state.docID), zap.Error(err))
		return nil, err
	}

	out := make(chan game.GameState, 1)

	go func() {
		defer close(out)
		defer sub.Close()

		for snap := range sub.C {
			if !snap.Exists {
				// stay on loading until someone initializes the game
				continue
			}

			gs, err := decodeState(snap.Data)
			if err != nil {
				zap.L().Error("Dropped undecodable snapshot", zap.String("doc_id", snap.DocID), zap.Error(err))
				continue
			}

			select {
			case <-out:
			default:
			}

			select {
			case out <- gs:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

func (s *gameServiceState) actionLoop() {
	defer zap.L().Info("Action loop exited", zap.String("doc_id", s.docID))

	for {
		select {
		case <-s.doneCh:
			return
		case req := <-s.reqCh:
			req.resCh <- s.handle(req)
		}
	}
}

func (s *gameServiceState) handle(req actionRequest) actionResponseWrapper {
	ctx := req.ctx
	wrapper := req.wrapper

	if req.ensure {
		gs, err := s.load(ctx)
		return actionResponseWrapper{State: gs, Err: err}
	}

	zap.L().Debug(
		"Received operator action",
		zap.String("request_id", wrapper.RequestID),
		zap.String("action", wrapper.ActionType),
		zap.ByteString("data", wrapper.Data),
	)

	var current *game.GameState
	if wrapper.ActionType != game.REQ_INITIALIZE && wrapper.ActionType != game.REQ_IMPORT_CONTENT {
		gs, err := s.load(ctx)
		if err != nil {
			return actionResponseWrapper{Err: err}
		}
		current = &gs
	}

	outcome, err := s.machine.Dispatch(current, wrapper)
	if err != nil {
		zap.L().Warn(
			"Rejected operator action",
			zap.String("request_id", wrapper.RequestID),
			zap.String("action", wrapper.ActionType),
			zap.Error(err),
		)
		return actionResponseWrapper{Err: err}
	}

	if err := s.persist(ctx, outcome); err != nil {
		zap.L().Error(
			"Failed to persist operator action",
			zap.String("request_id", wrapper.RequestID),
			zap.String("action", wrapper.ActionType),
			zap.Error(err),
		)
		return actionResponseWrapper{Err: fmt.Errorf("%w: %w", ErrWriteFailure, err)}
	}

	raw, err := s.store.Read(ctx, s.docID)
	if err != nil {
		return actionResponseWrapper{Err: err}
	}

	gs, err := decodeState(raw)
	if err != nil {
		return actionResponseWrapper{Err: err}
	}

	zap.L().Info(
		"Applied operator action",
		zap.String("request_id", wrapper.RequestID),
		zap.String("action", wrapper.ActionType),
		zap.String("round", string(gs.CurrentRound)),
		zap.String("notice", outcome.Notice),
	)

	return actionResponseWrapper{State: gs, Notice: outcome.Notice}
}

// load reads the live document and initializes it when absent.
func (s *gameServiceState) load(ctx context.Context) (game.GameState, error) {
	raw, err := s.store.Read(ctx, s.docID)
	if err == nil {
		return decodeState(raw)
	}

	if !errors.Is(err, store.ErrDocumentNotFound) {
		return game.GameState{}, err
	}

	initial := s.machine.Initial()
	if err := s.store.WriteWhole(ctx, s.docID, initial); err != nil {
		return game.GameState{}, fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}

	zap.L().Info("Live document was missing, initialized lobby", zap.String("doc_id", s.docID))

	return initial, nil
}

func (s *gameServiceState) persist(ctx context.Context, outcome game.Outcome) error {
	if outcome.Replace != nil {
		return s.store.WriteWhole(ctx, s.docID, outcome.Replace)
	}

	if len(outcome.Update) == 0 {
		return nil
	}

	return s.store.WritePartial(ctx, s.docID, toFields(outcome.Update))
}
