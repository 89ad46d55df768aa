package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidPath      = errors.New("invalid field path")
	ErrClosed           = errors.New("store closed")
)

// Fields maps dotted field paths ("round1.guesses.3") to new values.
type Fields map[string]any

// Snapshot is the state of one document at a point in time. Data is nil
// when the document does not exist.
type Snapshot struct {
	DocID  string
	Data   json.RawMessage
	Exists bool
}

// DocumentStore holds JSON documents addressed by ID.
type DocumentStore interface {
	Read(ctx context.Context, docID string) (json.RawMessage, error)
	// WriteWhole replaces the document, creating it when absent.
	WriteWhole(ctx context.Context, docID string, doc any) error
	// WritePartial sets every path in fields in one atomic write. The
	// document must exist.
	WritePartial(ctx context.Context, docID string, fields Fields) error
	// Subscribe delivers the current snapshot immediately and one snapshot
	// per write afterwards. A slow subscriber only ever misses
	// intermediate snapshots, never the latest one.
	Subscribe(ctx context.Context, docID string) (*Subscription, error)
	Close() error
}

const subscriptionBuffer = 16

type Subscription struct {
	ID string
	C  <-chan Snapshot

	ch     chan Snapshot
	cancel context.CancelFunc
	once   sync.Once
}

func newSubscription(id string, cancel context.CancelFunc) *Subscription {
	ch := make(chan Snapshot, subscriptionBuffer)
	return &Subscription{
		ID:     id,
		C:      ch,
		ch:     ch,
		cancel: cancel,
	}
}

// push never blocks. When the buffer is full the oldest pending snapshot
// is dropped.
func (s *Subscription) push(snap Snapshot) {
	for {
		select {
		case s.ch <- snap:
			return
		default:
		}

		select {
		case <-s.ch:
			zap.L().Warn(
				"Subscriber lagging, dropped a stale snapshot",
				zap.String("subscription_id", s.ID),
				zap.String("doc_id", snap.DocID),
			)
		default:
		}
	}
}

// Close stops delivery. C is closed once the producer has let go.
func (s *Subscription) Close() {
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
}

// Open builds the store selected by driver.
func Open(ctx context.Context, driver, dsn string) (DocumentStore, error) {
	switch driver {
	case "", "memory":
		return NewMemoryStore(), nil
	case "postgres":
		return NewPostgresStore(ctx, dsn)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
