package snapstore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rentfold/propsnap/schema"
)

// Save inserts a record draft. Saving content already present for the
// same (endpoint, postcode, fingerprint) is not an error: the insert is
// silently skipped and the existing row id is returned with inserted
// false. The insert is a single statement, so a crash mid-save leaves
// either zero or one fully formed row.
func (s *Store) Save(draft *schema.RecordDraft) (bool, int64, error) {
	if draft.Endpoint == "" {
		return false, 0, fmt.Errorf("record draft missing endpoint name")
	}
	if draft.Fingerprint == "" {
		return false, 0, fmt.Errorf("record draft missing fingerprint")
	}
	if len(draft.RawJSON) == 0 {
		return false, 0, fmt.Errorf("record draft missing raw payload")
	}

	ts := draft.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	source := draft.Source
	if source == "" {
		source = schema.APISource
	}

	res, err := s.db.Exec(`
		INSERT INTO api_responses
			(ts, endpoint_name, source, raw_json, fingerprint, request_params,
			 postcode, run_id, source_file, estimated_cost)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (endpoint_name, postcode, fingerprint) DO NOTHING`,
		ts.Format(time.RFC3339Nano), string(draft.Endpoint), string(source),
		string(draft.RawJSON), draft.Fingerprint, nullable(draft.RequestParams),
		draft.Postcode, nullable(draft.RunID), nullable(draft.SourceFile),
		draft.EstimatedCost,
	)
	if err != nil {
		return false, 0, fmt.Errorf("failed to insert response record: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, 0, fmt.Errorf("failed to read insert result: %w", err)
	}
	if n == 0 {
		var id int64
		err := s.db.QueryRow(
			`SELECT id FROM api_responses WHERE endpoint_name = ? AND postcode = ? AND fingerprint = ?`,
			string(draft.Endpoint), draft.Postcode, draft.Fingerprint,
		).Scan(&id)
		if err != nil {
			return false, 0, fmt.Errorf("failed to locate existing record: %w", err)
		}
		return false, id, nil
	}

	id, err := res.LastInsertId()
	if err != nil {
		return false, 0, fmt.Errorf("failed to read inserted record id: %w", err)
	}
	return true, id, nil
}

// Enrich updates only the denormalized helper columns and
// processed_at/processing_error on an existing row. raw_json and the
// fingerprint are never touched.
func (s *Store) Enrich(id int64, fields *schema.Enrichment) error {
	res, err := s.db.Exec(`
		UPDATE api_responses
		SET bedrooms = ?, request_type = ?, response_bytes = ?, data_points = ?,
		    quality_flag = ?, processing_error = ?, processed_at = ?
		WHERE id = ?`,
		fields.Bedrooms, nullable(fields.RequestType), fields.ResponseBytes,
		fields.DataPoints, nullable(fields.QualityFlag), nullable(fields.ProcessError),
		time.Now().UTC().Format(time.RFC3339Nano), id,
	)
	if err != nil {
		return fmt.Errorf("failed to enrich record %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read enrich result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: id %d", ErrRecordNotFound, id)
	}
	return nil
}

// AllResponses retrieves persisted fact rows, optionally filtered by
// endpoint, ordered by id. Used by the parquet export path.
func (s *Store) AllResponses(endpoint schema.Endpoint) ([]schema.ResponseRecord, error) {
	query := `
		SELECT id, ts, endpoint_name, source, raw_json, fingerprint,
		       request_params, postcode, run_id, source_file, estimated_cost,
		       processed_at, processing_error, bedrooms, request_type,
		       response_bytes, data_points, quality_flag
		FROM api_responses`
	var args []any
	if endpoint != "" {
		query += " WHERE endpoint_name = ?"
		args = append(args, string(endpoint))
	}
	query += " ORDER BY id"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query response records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ResponseRecord
	for rows.Next() {
		var rec schema.ResponseRecord
		var tsStr string
		var endpointName, source string
		var requestParams, runID, sourceFile sql.NullString
		var processedAt, processError sql.NullString
		var requestType, qualityFlag sql.NullString
		var bedrooms, responseBytes, dataPoints sql.NullInt64

		if err := rows.Scan(
			&rec.ID, &tsStr, &endpointName, &source, &rec.RawJSON, &rec.Fingerprint,
			&requestParams, &rec.Postcode, &runID, &sourceFile, &rec.EstimatedCost,
			&processedAt, &processError, &bedrooms, &requestType,
			&responseBytes, &dataPoints, &qualityFlag,
		); err != nil {
			return nil, fmt.Errorf("failed to scan response record: %w", err)
		}

		ts, err := time.Parse(time.RFC3339Nano, tsStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse record timestamp: %w", err)
		}
		rec.Timestamp = ts
		rec.Endpoint = schema.Endpoint(endpointName)
		rec.Source = schema.Source(source)
		rec.RequestParams = requestParams.String
		rec.RunID = runID.String
		rec.SourceFile = sourceFile.String
		rec.ProcessError = processError.String
		rec.RequestType = requestType.String
		rec.QualityFlag = qualityFlag.String
		if processedAt.Valid {
			t, err := time.Parse(time.RFC3339Nano, processedAt.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse processed_at: %w", err)
			}
			rec.ProcessedAt = &t
		}
		if bedrooms.Valid {
			rec.Bedrooms = &bedrooms.Int64
		}
		if responseBytes.Valid {
			rec.ResponseBytes = &responseBytes.Int64
		}
		if dataPoints.Valid {
			rec.DataPoints = &dataPoints.Int64
		}

		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating response records: %w", err)
	}
	return results, nil
}

// nullable maps an empty string to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
