package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MemoryStore keeps documents in process. It is the default driver and
// the test double for the postgres store.
type MemoryStore struct {
	mu     sync.Mutex
	docs   map[string]json.RawMessage
	subs   map[string]map[string]*Subscription
	closed bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string]json.RawMessage),
		subs: make(map[string]map[string]*Subscription),
	}
}

func (ms *MemoryStore) Read(ctx context.Context, docID string) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ms.closed {
		return nil, ErrClosed
	}

	doc, ok := ms.docs[docID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, docID)
	}

	return append(json.RawMessage(nil), doc...), nil
}

func (ms *MemoryStore) WriteWhole(ctx context.Context, docID string, doc any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", docID, err)
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ms.closed {
		return ErrClosed
	}

	ms.docs[docID] = raw
	ms.notifyLocked(docID)

	return nil
}

func (ms *MemoryStore) WritePartial(ctx context.Context, docID string, fields Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ms.closed {
		return ErrClosed
	}

	current, ok := ms.docs[docID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrDocumentNotFound, docID)
	}

	if len(fields) == 0 {
		return nil
	}

	next, err := applyFields(current, fields)
	if err != nil {
		return err
	}

	ms.docs[docID] = next
	ms.notifyLocked(docID)

	return nil
}

func (ms *MemoryStore) Subscribe(ctx context.Context, docID string) (*Subscription, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ms.closed {
		return nil, ErrClosed
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := newSubscription(uuid.NewString(), cancel)

	if ms.subs[docID] == nil {
		ms.subs[docID] = make(map[string]*Subscription)
	}
	ms.subs[docID][sub.ID] = sub

	sub.push(ms.snapshotLocked(docID))

	go func() {
		<-subCtx.Done()

		ms.mu.Lock()
		defer ms.mu.Unlock()

		if _, ok := ms.subs[docID][sub.ID]; ok {
			delete(ms.subs[docID], sub.ID)
			close(sub.ch)
		}

		zap.L().Debug(
			"Subscription closed",
			zap.String("doc_id", docID),
			zap.String("subscription_id", sub.ID),
		)
	}()

	return sub, nil
}

func (ms *MemoryStore) Close() error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ms.closed {
		return nil
	}
	ms.closed = true

	for docID, subs := range ms.subs {
		for id, sub := range subs {
			delete(subs, id)
			close(sub.ch)
			sub.Close()
		}
		delete(ms.subs, docID)
	}

	return nil
}

func (ms *MemoryStore) snapshotLocked(docID string) Snapshot {
	doc, ok := ms.docs[docID]
	if !ok {
		return Snapshot{DocID: docID}
	}

	return Snapshot{
		DocID:  docID,
		Data:   append(json.RawMessage(nil), doc...),
		Exists: true,
	}
}

func (ms *MemoryStore) notifyLocked(docID string) {
	subs := ms.subs[docID]
	if len(subs) == 0 {
		return
	}

	snap := ms.snapshotLocked(docID)
	for _, sub := range subs {
		sub.push(snap)
	}
}
