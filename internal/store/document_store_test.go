package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mvp-foundry/internal/model"
)

var errStorage = errors.New("storage unavailable")

// flakyKV fails reads and writes for keys matching failGet and failSet.
type flakyKV struct {
	*MemoryKV
	failSet func(key string) bool
	failGet func(key string) bool
}

func (f *flakyKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if f.failGet != nil && f.failGet(key) {
		return nil, false, errStorage
	}
	return f.MemoryKV.Get(ctx, key)
}

func (f *flakyKV) Update(ctx context.Context, key string, fn func([]byte, bool) ([]byte, error)) error {
	current, found, err := f.Get(ctx, key)
	if err != nil {
		return err
	}
	next, err := fn(current, found)
	if err != nil {
		return err
	}
	return f.Set(ctx, key, next)
}

func isHistoryKey(key string) bool {
	return strings.HasSuffix(key, ":history")
}

func (f *flakyKV) Set(ctx context.Context, key string, value []byte) error {
	if f.failSet != nil && f.failSet(key) {
		return errStorage
	}
	return f.MemoryKV.Set(ctx, key, value)
}

func newTestStore(kv KeyValue) *DocumentStore {
	s := NewDocumentStore(kv, 0, "", slog.New(slog.NewTextHandler(io.Discard, nil)))
	var seq int
	s.newID = func() string {
		seq++
		return fmt.Sprintf("ID%07d", seq)
	}
	s.now = func() time.Time { return time.UnixMilli(1_700_000_000_000 + int64(seq)) }
	return s
}

func TestCreate_AssignsIdentity(t *testing.T) {
	s := NewDocumentStore(NewMemoryKV(), 0, "", nil)
	before := time.Now().UnixMilli()

	doc := s.Create("dog walking app", model.DocumentPayload{Title: "Walkies"})

	assert.Regexp(t, regexp.MustCompile(`^[0-9A-Z]{9}$`), doc.ID)
	assert.Equal(t, "Walkies", doc.Title)
	assert.Equal(t, "dog walking app", doc.OriginalPrompt)
	assert.GreaterOrEqual(t, doc.CreatedAt, before)
	assert.Empty(t, s.ListHistory(context.Background()), "create must not persist")
}

func TestCreate_DefaultTitle(t *testing.T) {
	s := newTestStore(NewMemoryKV())
	doc := s.Create("idea", model.DocumentPayload{Title: "   "})
	assert.Equal(t, DefaultTitle, doc.Title)
}

func TestRecord_DogWalkingScenario(t *testing.T) {
	ctx := context.Background()
	s := NewDocumentStore(NewMemoryKV(), 0, "", nil)

	doc := s.Create("dog walking app", model.DocumentPayload{
		Title:     "Walkies",
		Blueprint: model.Blueprint{ProblemStatement: "## Gap\n- owners are busy"},
	})
	require.NoError(t, s.Record(ctx, doc))

	history := s.ListHistory(ctx)
	require.Len(t, history, 1)
	assert.Equal(t, doc.ID, history[0].ID)
	assert.Equal(t, doc.Entry(), history[0])

	got, err := s.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}

func TestRecord_EvictsOldestPastCapacity(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(NewMemoryKV())

	var docs []model.Document
	for i := 0; i < DefaultCapacity+1; i++ {
		doc := s.Create(fmt.Sprintf("idea %d", i), model.DocumentPayload{})
		require.NoError(t, s.Record(ctx, doc))
		docs = append(docs, doc)
	}

	history := s.ListHistory(ctx)
	require.Len(t, history, DefaultCapacity)
	assert.Equal(t, docs[len(docs)-1].ID, history[0].ID)
	assert.Equal(t, docs[1].ID, history[len(history)-1].ID)
	for _, entry := range history {
		assert.NotEqual(t, docs[0].ID, entry.ID)
	}

	_, err := s.Get(ctx, docs[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecord_MoveToFrontWithoutGrowth(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(NewMemoryKV())

	first := s.Create("one", model.DocumentPayload{})
	second := s.Create("two", model.DocumentPayload{})
	third := s.Create("three", model.DocumentPayload{})
	for _, d := range []model.Document{first, second, third} {
		require.NoError(t, s.Record(ctx, d))
	}

	require.NoError(t, s.Record(ctx, first))

	history := s.ListHistory(ctx)
	require.Len(t, history, 3)
	assert.Equal(t, []string{first.ID, third.ID, second.ID}, entryIDs(history))
}

func TestGet_NeverRecorded(t *testing.T) {
	s := newTestStore(NewMemoryKV())
	_, err := s.Get(context.Background(), "NOPE00000")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGet_MissingOrMalformedBody(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	s := newTestStore(kv)

	doc := s.Create("idea", model.DocumentPayload{})
	require.NoError(t, s.Record(ctx, doc))
	require.NoError(t, kv.Set(ctx, s.bodyKey(doc.ID), []byte("{not json")))

	_, err := s.Get(ctx, doc.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	other := model.Document{ID: "ORPHAN000", Title: "orphan"}
	index := upsertEntry(s.ListHistory(ctx), other.Entry(), s.capacity)
	raw := mustJSON(t, index)
	require.NoError(t, kv.Set(ctx, s.historyKey(), raw))

	_, err = s.Get(ctx, other.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListHistory_CorruptIndexDegradesToEmpty(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	s := newTestStore(kv)
	require.NoError(t, kv.Set(ctx, s.historyKey(), []byte(`[{"id":`)))

	history := s.ListHistory(ctx)
	require.NotNil(t, history)
	assert.Empty(t, history)

	// Recording over a corrupt index starts a fresh one.
	doc := s.Create("idea", model.DocumentPayload{})
	require.NoError(t, s.Record(ctx, doc))
	assert.Equal(t, []string{doc.ID}, entryIDs(s.ListHistory(ctx)))
}

func TestListHistory_ReadFailureDegradesToEmpty(t *testing.T) {
	kv := &flakyKV{MemoryKV: NewMemoryKV(), failGet: func(string) bool { return true }}
	s := newTestStore(kv)
	assert.Empty(t, s.ListHistory(context.Background()))

	_, err := s.Get(context.Background(), "ANY000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListHistory_TruncatesOversizedIndex(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	s := NewDocumentStore(kv, 2, "", nil)

	entries := []model.HistoryEntry{{ID: "A"}, {ID: "B"}, {ID: "C"}}
	require.NoError(t, kv.Set(ctx, s.historyKey(), mustJSON(t, entries)))
	assert.Equal(t, []string{"A", "B"}, entryIDs(s.ListHistory(ctx)))
}

func TestRecord_BodyFailureLeavesIndexUntouched(t *testing.T) {
	ctx := context.Background()
	kv := &flakyKV{MemoryKV: NewMemoryKV()}
	s := newTestStore(kv)

	kept := s.Create("kept", model.DocumentPayload{})
	require.NoError(t, s.Record(ctx, kept))

	kv.failSet = func(key string) bool { return strings.Contains(key, ":bp:") }
	lost := s.Create("lost", model.DocumentPayload{})
	err := s.Record(ctx, lost)
	require.Error(t, err)
	assert.ErrorIs(t, err, errStorage)

	assert.Equal(t, []string{kept.ID}, entryIDs(s.ListHistory(ctx)))
	_, err = s.Get(ctx, lost.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecord_IndexFailureKeepsPreviousIndex(t *testing.T) {
	ctx := context.Background()
	kv := &flakyKV{MemoryKV: NewMemoryKV()}
	s := newTestStore(kv)

	kept := s.Create("kept", model.DocumentPayload{})
	require.NoError(t, s.Record(ctx, kept))

	kv.failSet = isHistoryKey
	orphan := s.Create("orphan", model.DocumentPayload{})
	require.Error(t, s.Record(ctx, orphan))

	assert.Equal(t, []string{kept.ID}, entryIDs(s.ListHistory(ctx)))
	_, err := s.Get(ctx, orphan.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecord_IndexReadFailureKeepsPreviousIndex(t *testing.T) {
	ctx := context.Background()
	kv := &flakyKV{MemoryKV: NewMemoryKV()}
	s := newTestStore(kv)

	var want []string
	for i := 0; i < 5; i++ {
		doc := s.Create(fmt.Sprintf("idea %d", i), model.DocumentPayload{})
		require.NoError(t, s.Record(ctx, doc))
		want = append([]string{doc.ID}, want...)
	}
	before, found, err := kv.MemoryKV.Get(ctx, "foundry:history")
	require.NoError(t, err)
	require.True(t, found)

	kv.failGet = isHistoryKey
	sixth := s.Create("idea 6", model.DocumentPayload{})
	err = s.Record(ctx, sixth)
	require.ErrorIs(t, err, errStorage)

	after, _, err := kv.MemoryKV.Get(ctx, "foundry:history")
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))

	kv.failGet = nil
	assert.Equal(t, want, entryIDs(s.ListHistory(ctx)))
	_, err = s.Get(ctx, sixth.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGet_IndexReadFailure(t *testing.T) {
	ctx := context.Background()
	kv := &flakyKV{MemoryKV: NewMemoryKV()}
	s := newTestStore(kv)

	doc := s.Create("idea", model.DocumentPayload{})
	require.NoError(t, s.Record(ctx, doc))

	kv.failGet = isHistoryKey
	_, err := s.Get(ctx, doc.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecord_SharedBackendKeepsEveryEntry(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	first := NewDocumentStore(kv, 0, "", nil)
	second := NewDocumentStore(kv, 0, "", nil)

	const perStore = 10
	var wg sync.WaitGroup
	for _, s := range []*DocumentStore{first, second} {
		wg.Add(1)
		go func(s *DocumentStore) {
			defer wg.Done()
			for i := 0; i < perStore; i++ {
				assert.NoError(t, s.Record(ctx, s.Create("idea", model.DocumentPayload{})))
			}
		}(s)
	}
	wg.Wait()

	assert.Len(t, first.ListHistory(ctx), 2*perStore)
	assert.Equal(t, first.ListHistory(ctx), second.ListHistory(ctx))
}

func TestRecord_RejectsEmptyID(t *testing.T) {
	s := newTestStore(NewMemoryKV())
	assert.Error(t, s.Record(context.Background(), model.Document{}))
}

func TestRecord_ConcurrentWritersSerialise(t *testing.T) {
	ctx := context.Background()
	s := NewDocumentStore(NewMemoryKV(), 0, "", nil)

	const writers = 20
	ids := make(chan string, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			doc := s.Create(fmt.Sprintf("idea %d", i), model.DocumentPayload{})
			if err := s.Record(ctx, doc); err == nil {
				ids <- doc.ID
			}
		}(i)
	}
	wg.Wait()
	close(ids)

	var recorded []string
	for id := range ids {
		recorded = append(recorded, id)
	}
	require.Len(t, recorded, writers)
	assert.ElementsMatch(t, recorded, entryIDs(s.ListHistory(ctx)))
}

func TestKeys_UsePrefix(t *testing.T) {
	s := NewDocumentStore(NewMemoryKV(), 0, "demo", nil)
	assert.Equal(t, "demo:history", s.historyKey())
	assert.Equal(t, "demo:bp:AB12CDE34", s.bodyKey("AB12CDE34"))
}

func TestNewID(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := NewID()
		require.Len(t, id, idLength)
		require.Regexp(t, `^[0-9A-Z]+$`, id)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, 1000)
}

func entryIDs(entries []model.HistoryEntry) []string {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	return ids
}
