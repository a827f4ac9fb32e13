// Package ingest replays previously saved raw payloads from an inbox
// directory into the store, then archives them.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rentfold/propsnap/internal/contract"
	"github.com/rentfold/propsnap/internal/enrich"
	"github.com/rentfold/propsnap/internal/fingerprint"
	"github.com/rentfold/propsnap/schema"
)

// Sentinel errors recorded into the ingest summary.
var (
	// ErrMalformedFile indicates a file whose contents are not valid JSON.
	ErrMalformedFile = errors.New("malformed file")

	// ErrUnknownEndpoint indicates a file that cannot be classified to an
	// endpoint family by filename or payload shape.
	ErrUnknownEndpoint = errors.New("unknown endpoint")
)

// Ingestor replays archived JSON files through the store's normal write path.
type Ingestor struct {
	store   contract.RecordStore
	inbox   string
	archive string
	runID   string
}

// New returns an ingestor reading from inbox and archiving into archive.
func New(store contract.RecordStore, inbox, archive, runID string) *Ingestor {
	return &Ingestor{store: store, inbox: inbox, archive: archive, runID: runID}
}

// Ingest processes every *.json file in the inbox, in name order. A file
// is archived once it has been classified and its save attempted, even
// when the save was a duplicate skip, since archival means "processed",
// not "novel". Unparseable or unclassifiable files stay in the inbox and
// are reported; they never abort the batch. Store write failures do.
func (ing *Ingestor) Ingest(ctx context.Context) (*schema.IngestSummary, error) {
	entries, err := os.ReadDir(ing.inbox)
	if err != nil {
		return nil, fmt.Errorf("failed to read inbox directory %q: %w", ing.inbox, err)
	}
	if err := os.MkdirAll(ing.archive, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory %q: %w", ing.archive, err)
	}

	summary := &schema.IngestSummary{}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		summary.Processed++

		if err := ing.processFile(entry.Name(), summary); err != nil {
			return summary, err
		}
	}
	return summary, nil
}

// processFile handles one inbox file. The returned error is non-nil only
// for batch-fatal store failures.
func (ing *Ingestor) processFile(name string, summary *schema.IngestSummary) error {
	path := filepath.Join(ing.inbox, name)
	raw, err := os.ReadFile(path)
	if err != nil {
		summary.Failures = append(summary.Failures, schema.IngestFailure{File: name, Reason: err.Error()})
		return nil
	}

	ep, postcode, err := classify(name, raw)
	if err != nil {
		summary.Failures = append(summary.Failures, schema.IngestFailure{File: name, Reason: err.Error()})
		return nil
	}

	fp, err := fingerprint.Compute(ep, raw)
	if err != nil {
		summary.Failures = append(summary.Failures, schema.IngestFailure{File: name, Reason: err.Error()})
		return nil
	}

	draft := &schema.RecordDraft{
		Timestamp:   timestampFor(name, path),
		Endpoint:    ep,
		Source:      schema.FileSource,
		RawJSON:     raw,
		Fingerprint: fp,
		Postcode:    postcode,
		RunID:       ing.runID,
		SourceFile:  name,
	}
	inserted, id, err := ing.store.Save(draft)
	if err != nil {
		summary.Failures = append(summary.Failures, schema.IngestFailure{File: name, Reason: err.Error()})
		return fmt.Errorf("store write failed for %s: %w", name, err)
	}
	if inserted {
		summary.Saved++
		params := map[string]string{}
		if postcode != "" {
			params["postcode"] = postcode
		}
		if err := ing.store.Enrich(id, enrich.Fields(ep, raw, params)); err != nil {
			_ = ing.store.Enrich(id, &schema.Enrichment{ProcessError: err.Error()})
		}
	} else {
		summary.Duplicates++
	}

	// Files are moved, never deleted; a duplicate skip still archives.
	if err := moveFile(path, filepath.Join(ing.archive, name)); err != nil {
		summary.Failures = append(summary.Failures, schema.IngestFailure{File: name, Reason: err.Error()})
		return nil
	}
	summary.Archived++
	return nil
}

// classify resolves a file to an endpoint family, preferring the
// filename convention <endpoint>_<postcode>_<stamp>.json and falling
// back to the closed set of payload-shape rules.
func classify(name string, raw []byte) (schema.Endpoint, string, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrMalformedFile, err)
	}

	base := strings.TrimSuffix(name, ".json")
	parts := strings.Split(base, "_")

	var postcode string
	if len(parts) >= 2 {
		postcode = strings.ReplaceAll(parts[1], "-", " ")
	}
	if postcode == "" {
		var pc string
		if rawPC, ok := doc["postcode"]; ok {
			_ = json.Unmarshal(rawPC, &pc)
		}
		postcode = pc
	}

	ep := schema.Endpoint(parts[0])
	if _, ok := schema.ValidEndpoints[ep]; ok {
		return ep, postcode, nil
	}

	ep, ok := classifyShape(doc)
	if !ok {
		return "", "", fmt.Errorf("%w: cannot classify %q", ErrUnknownEndpoint, name)
	}
	return ep, postcode, nil
}

// classifyShape matches a payload against the closed set of endpoint
// shapes. No generic duck typing: one rule per family.
func classifyShape(doc map[string]json.RawMessage) (schema.Endpoint, bool) {
	if _, ok := doc["long_let"]; ok {
		return schema.RentsEndpoint, true
	}

	var data map[string]json.RawMessage
	if rawData, ok := doc["data"]; ok {
		if err := json.Unmarshal(rawData, &data); err != nil {
			return "", false
		}
	}
	switch {
	case hasKey(data, "crimes_last_12m"):
		return schema.CrimeEndpoint, true
	case hasKey(data, "total_for_sale"):
		return schema.DemandEndpoint, true
	case hasKey(data, "average"):
		return schema.PricesEndpoint, true
	}
	return "", false
}

func hasKey(m map[string]json.RawMessage, key string) bool {
	_, ok := m[key]
	return ok
}

// timestampFor derives the record timestamp from the filename stamp
// token, falling back to the file's modification time.
func timestampFor(name, path string) time.Time {
	base := strings.TrimSuffix(name, ".json")
	parts := strings.Split(base, "_")
	if len(parts) >= 3 {
		if t, err := time.Parse("20060102", parts[2]); err == nil {
			return t.UTC()
		}
		if t, err := time.Parse("20060102T150405", parts[2]); err == nil {
			return t.UTC()
		}
	}
	if info, err := os.Stat(path); err == nil {
		return info.ModTime().UTC()
	}
	return time.Now().UTC()
}

// moveFile renames src to dst, copying across filesystems when rename
// is not possible.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %q for archiving: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create archive file %q: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy %q to archive: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to finish archive file %q: %w", dst, err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("failed to remove archived source %q: %w", src, err)
	}
	return nil
}
