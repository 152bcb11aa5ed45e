// Package store persists generated blueprints and keeps the bounded,
// most-recent-first history index over them.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"mvp-foundry/internal/model"
)

const (
	DefaultCapacity  = 50
	DefaultKeyPrefix = "foundry"
	DefaultTitle     = "Untitled Architected Solution"
)

var ErrNotFound = errors.New("document not found")

type DocumentStore struct {
	kv        KeyValue
	capacity  int
	keyPrefix string
	logger    *slog.Logger

	now   func() time.Time
	newID func() string

	// mu serialises this process's writers; KeyValue.Update keeps the
	// index consistent across processes.
	mu sync.Mutex
}

// NewDocumentStore builds a store over kv. Several instances may share one
// kv backend: index updates go through kv.Update.
func NewDocumentStore(kv KeyValue, capacity int, keyPrefix string, logger *slog.Logger) *DocumentStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	keyPrefix = strings.TrimSpace(keyPrefix)
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentStore{
		kv:        kv,
		capacity:  capacity,
		keyPrefix: keyPrefix,
		logger:    logger,
		now:       time.Now,
		newID:     NewID,
	}
}

func (s *DocumentStore) Capacity() int {
	return s.capacity
}

// Create wraps payload into a new document with a fresh id and timestamp.
// It does not persist anything; call Record for that.
func (s *DocumentStore) Create(prompt string, payload model.DocumentPayload) model.Document {
	title := strings.TrimSpace(payload.Title)
	if title == "" {
		title = DefaultTitle
	}
	return model.Document{
		ID:             s.newID(),
		Title:          title,
		OriginalPrompt: prompt,
		CreatedAt:      s.now().UnixMilli(),
		Content:        payload,
	}
}

// Record persists the document body and moves its entry to the front of
// the history index. The body is written first: if that fails the index
// is left untouched. Entries pushed past capacity are dropped from the
// index; their bodies stay in storage but are no longer reachable. A failed
// index read aborts the record without touching the stored index.
func (s *DocumentStore) Record(ctx context.Context, doc model.Document) error {
	if strings.TrimSpace(doc.ID) == "" {
		return fmt.Errorf("record document: empty id")
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document failed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Set(ctx, s.bodyKey(doc.ID), body); err != nil {
		return fmt.Errorf("persist document body failed: %w", err)
	}

	var historyLen int
	err = s.kv.Update(ctx, s.historyKey(), func(current []byte, found bool) ([]byte, error) {
		index := upsertEntry(s.decodeIndex(current, found), doc.Entry(), s.capacity)
		historyLen = len(index)
		return json.Marshal(index)
	})
	if err != nil {
		return fmt.Errorf("update history index failed: %w", err)
	}

	s.logger.Debug("document recorded", "id", doc.ID, "history_len", historyLen)
	return nil
}

// Get returns the document for id, or ErrNotFound when the id is not in
// the history index or its body is missing or unreadable.
func (s *DocumentStore) Get(ctx context.Context, id string) (model.Document, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.Document{}, ErrNotFound
	}

	index, err := s.loadIndex(ctx)
	if err != nil {
		s.logger.Warn("read history index failed", "error", err)
		return model.Document{}, ErrNotFound
	}
	if !containsID(index, id) {
		return model.Document{}, ErrNotFound
	}

	raw, found, err := s.kv.Get(ctx, s.bodyKey(id))
	if err != nil {
		s.logger.Warn("read document body failed", "id", id, "error", err)
		return model.Document{}, ErrNotFound
	}
	if !found {
		return model.Document{}, ErrNotFound
	}

	var doc model.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		s.logger.Warn("stored document is malformed", "id", id, "error", err)
		return model.Document{}, ErrNotFound
	}
	return doc, nil
}

// ListHistory returns the index most-recent-first. Storage failures and a
// malformed index both degrade to an empty history.
func (s *DocumentStore) ListHistory(ctx context.Context) []model.HistoryEntry {
	index, err := s.loadIndex(ctx)
	if err != nil {
		s.logger.Warn("read history index failed", "error", err)
		return []model.HistoryEntry{}
	}
	return index
}

// loadIndex fails only when the backend read fails; a missing or
// malformed index is returned as empty.
func (s *DocumentStore) loadIndex(ctx context.Context) ([]model.HistoryEntry, error) {
	raw, found, err := s.kv.Get(ctx, s.historyKey())
	if err != nil {
		return nil, err
	}
	return s.decodeIndex(raw, found), nil
}

func (s *DocumentStore) decodeIndex(raw []byte, found bool) []model.HistoryEntry {
	if !found || len(raw) == 0 {
		return []model.HistoryEntry{}
	}

	var entries []model.HistoryEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		s.logger.Error("history index is malformed, starting empty", "error", err)
		return []model.HistoryEntry{}
	}
	if entries == nil {
		entries = []model.HistoryEntry{}
	}
	if len(entries) > s.capacity {
		entries = entries[:s.capacity]
	}
	return entries
}

func (s *DocumentStore) historyKey() string {
	return s.keyPrefix + ":history"
}

func (s *DocumentStore) bodyKey(id string) string {
	return fmt.Sprintf("%s:bp:%s", s.keyPrefix, id)
}

// upsertEntry puts entry at the head, removing any earlier entry with the
// same id, and truncates to capacity.
func upsertEntry(index []model.HistoryEntry, entry model.HistoryEntry, capacity int) []model.HistoryEntry {
	out := make([]model.HistoryEntry, 0, len(index)+1)
	out = append(out, entry)
	for _, existing := range index {
		if existing.ID == entry.ID {
			continue
		}
		out = append(out, existing)
	}
	if len(out) > capacity {
		out = out[:capacity]
	}
	return out
}

func containsID(index []model.HistoryEntry, id string) bool {
	for _, entry := range index {
		if entry.ID == id {
			return true
		}
	}
	return false
}
