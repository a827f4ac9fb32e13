package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rentfold/propsnap/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore mirrors the real store's dedup rule in memory.
type fakeStore struct {
	saved    []*schema.RecordDraft
	byKey    map[string]int64
	enriched map[int64]*schema.Enrichment
	saveErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		byKey:    make(map[string]int64),
		enriched: make(map[int64]*schema.Enrichment),
	}
}

func (s *fakeStore) Save(draft *schema.RecordDraft) (bool, int64, error) {
	if s.saveErr != nil {
		return false, 0, s.saveErr
	}
	key := fmt.Sprintf("%s|%s|%s", draft.Endpoint, draft.Postcode, draft.Fingerprint)
	if id, ok := s.byKey[key]; ok {
		return false, id, nil
	}
	s.saved = append(s.saved, draft)
	id := int64(len(s.saved))
	s.byKey[key] = id
	return true, id, nil
}

func (s *fakeStore) Enrich(id int64, fields *schema.Enrichment) error {
	s.enriched[id] = fields
	return nil
}

// inboxWith creates inbox/archive dirs and drops the given files into the inbox.
func inboxWith(t *testing.T, files map[string]string) (string, string) {
	t.Helper()
	root := t.TempDir()
	inbox := filepath.Join(root, "inbox")
	archive := filepath.Join(root, "archive")
	require.NoError(t, os.MkdirAll(inbox, 0o755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(inbox, name), []byte(content), 0o644))
	}
	return inbox, archive
}

func TestIngest_NamedFiles(t *testing.T) {
	inbox, archive := inboxWith(t, map[string]string{
		"prices_NR1-1EF_20260815.json": `{"status":"success","data":{"average":285000}}`,
		"crime_NR1-1EF_20260815.json":  `{"status":"success","data":{"crimes_last_12m":164}}`,
	})
	store := newFakeStore()

	summary, err := New(store, inbox, archive, "backfill-1").Ingest(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 2, summary.Saved)
	assert.Equal(t, 2, summary.Archived)
	assert.Empty(t, summary.Failures)

	require.Len(t, store.saved, 2)
	for _, draft := range store.saved {
		assert.Equal(t, schema.FileSource, draft.Source)
		assert.Equal(t, "NR1 1EF", draft.Postcode)
		assert.Equal(t, "backfill-1", draft.RunID)
		assert.NotEmpty(t, draft.SourceFile)
		assert.Equal(t, time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC), draft.Timestamp)
	}
	assert.Len(t, store.enriched, 2)

	// Inbox drained, archive populated.
	left, err := os.ReadDir(inbox)
	require.NoError(t, err)
	assert.Empty(t, left)
	moved, err := os.ReadDir(archive)
	require.NoError(t, err)
	assert.Len(t, moved, 2)
}

func TestIngest_ShapeClassification(t *testing.T) {
	// Names carry no endpoint token, so payload shape decides.
	inbox, archive := inboxWith(t, map[string]string{
		"drop1.json": `{"postcode":"NR1 1EF","long_let":{"average":1250}}`,
		"drop2.json": `{"postcode":"NR1 1EF","data":{"total_for_sale":42}}`,
	})
	store := newFakeStore()

	summary, err := New(store, inbox, archive, "").Ingest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Saved)

	endpoints := map[schema.Endpoint]bool{}
	for _, draft := range store.saved {
		endpoints[draft.Endpoint] = true
		assert.Equal(t, "NR1 1EF", draft.Postcode)
	}
	assert.True(t, endpoints[schema.RentsEndpoint])
	assert.True(t, endpoints[schema.DemandEndpoint])
}

func TestIngest_MalformedFileStaysInInbox(t *testing.T) {
	inbox, archive := inboxWith(t, map[string]string{
		"prices_NR1-1EF_20260815.json": `{"status":"succ`,
		"demand_NR2-2AB_20260815.json": `{"status":"success","data":{"total_for_sale":42}}`,
	})
	store := newFakeStore()

	summary, err := New(store, inbox, archive, "").Ingest(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 1, summary.Saved)
	assert.Equal(t, 1, summary.Archived)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, "prices_NR1-1EF_20260815.json", summary.Failures[0].File)

	// The bad file is left in place for inspection.
	_, err = os.Stat(filepath.Join(inbox, "prices_NR1-1EF_20260815.json"))
	assert.NoError(t, err)
}

func TestIngest_UnclassifiableFileIsReported(t *testing.T) {
	inbox, archive := inboxWith(t, map[string]string{
		"mystery.json": `{"status":"success","body":{"something":1}}`,
	})
	store := newFakeStore()

	summary, err := New(store, inbox, archive, "").Ingest(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Failures, 1)
	assert.Contains(t, summary.Failures[0].Reason, "cannot classify")
	assert.Empty(t, store.saved)
}

func TestIngest_DuplicateStillArchives(t *testing.T) {
	content := `{"status":"success","data":{"average":285000}}`
	inbox, archive := inboxWith(t, map[string]string{
		"prices_NR1-1EF_20260815.json": content,
		"prices_NR1-1EF_20260816.json": content,
	})
	store := newFakeStore()

	summary, err := New(store, inbox, archive, "").Ingest(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Saved)
	assert.Equal(t, 1, summary.Duplicates)
	assert.Equal(t, 2, summary.Archived)
	assert.Len(t, store.saved, 1)

	left, err := os.ReadDir(inbox)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestIngest_StoreFailureAborts(t *testing.T) {
	inbox, archive := inboxWith(t, map[string]string{
		"prices_NR1-1EF_20260815.json": `{"status":"success","data":{"average":285000}}`,
	})
	store := newFakeStore()
	store.saveErr = fmt.Errorf("disk full")

	_, err := New(store, inbox, archive, "").Ingest(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestIngest_IgnoresNonJSONEntries(t *testing.T) {
	inbox, archive := inboxWith(t, map[string]string{
		"README.txt": "not a snapshot",
	})
	require.NoError(t, os.MkdirAll(filepath.Join(inbox, "subdir"), 0o755))
	store := newFakeStore()

	summary, err := New(store, inbox, archive, "").Ingest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Processed)
}

func TestIngest_MissingInbox(t *testing.T) {
	root := t.TempDir()
	_, err := New(newFakeStore(), filepath.Join(root, "nope"), filepath.Join(root, "archive"), "").Ingest(context.Background())
	assert.Error(t, err)
}

func TestTimestampFor_StampFormats(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	ts := timestampFor("prices_NR1-1EF_20260815T093000.json", path)
	assert.Equal(t, time.Date(2026, 8, 15, 9, 30, 0, 0, time.UTC), ts)

	// No stamp token falls back to the file's mtime.
	ts = timestampFor("prices.json", path)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.WithinDuration(t, info.ModTime().UTC(), ts, time.Second)
}
