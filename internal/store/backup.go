package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const backupTimeout = 10 * time.Second

// Backup periodically copies one document to a JSON file so an in-memory
// show survives a restart.
type Backup struct {
	cron  *cron.Cron
	store DocumentStore
	docID string
	path  string
}

func NewBackup(st DocumentStore, docID, path, schedule string) (*Backup, error) {
	b := &Backup{
		cron:  cron.New(),
		store: st,
		docID: docID,
		path:  path,
	}

	// an empty schedule leaves only SnapshotNow
	if schedule == "" {
		return b, nil
	}

	_, err := b.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), backupTimeout)
		defer cancel()

		if err := b.SnapshotNow(ctx); err != nil {
			zap.L().Error("Scheduled backup failed", zap.String("path", b.path), zap.Error(err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid backup schedule %q: %w", schedule, err)
	}

	return b, nil
}

func (b *Backup) Start() {
	b.cron.Start()
	zap.L().Info("Backup scheduler started", zap.String("path", b.path))
}

// Stop waits for a running backup to finish.
func (b *Backup) Stop() {
	ctx := b.cron.Stop()
	<-ctx.Done()
	zap.L().Info("Backup scheduler stopped")
}

// SnapshotNow writes the current document to the backup file. An absent
// document is not an error; there is nothing to back up yet.
func (b *Backup) SnapshotNow(ctx context.Context) error {
	data, err := b.store.Read(ctx, b.docID)
	if errors.Is(err, ErrDocumentNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if dir := filepath.Dir(b.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}

	if err := os.Rename(tmp, b.path); err != nil {
		return err
	}

	zap.L().Debug("Backup written", zap.String("path", b.path), zap.Int("bytes", len(data)))

	return nil
}

// RestoreBackup loads the backup file into the store when the document is
// missing there. It reports whether anything was restored.
func RestoreBackup(ctx context.Context, st DocumentStore, docID, path string) (bool, error) {
	_, err := st.Read(ctx, docID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrDocumentNotFound) {
		return false, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		return false, fmt.Errorf("corrupt backup %s: not a JSON object", path)
	}

	if err := st.WriteWhole(ctx, docID, json.RawMessage(data)); err != nil {
		return false, err
	}

	zap.L().Info("Restored document from backup", zap.String("doc_id", docID), zap.String("path", path))

	return true, nil
}
