package snapstore

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/rentfold/propsnap/schema"
)

// viewDef describes one read-only endpoint view. Views are dropped and
// recreated on every Initialize so they always reflect the current
// definition, never a historical one.
type viewDef struct {
	Endpoint       schema.Endpoint
	HeadlineColumn string
	headlineExpr   string
}

// viewDefs is the fixed set of views, one per focus endpoint family.
// Headline metrics come straight out of the raw payload via json_extract
// so the views stay purely declarative.
var viewDefs = map[string]viewDef{
	"v_prices": {
		Endpoint:       schema.PricesEndpoint,
		HeadlineColumn: "average_price",
		headlineExpr:   "json_extract(raw_json, '$.data.average')",
	},
	"v_rents": {
		Endpoint:       schema.RentsEndpoint,
		HeadlineColumn: "average_rent",
		headlineExpr:   "COALESCE(json_extract(raw_json, '$.long_let.average'), json_extract(raw_json, '$.data.average'))",
	},
	"v_demand": {
		Endpoint:       schema.DemandEndpoint,
		HeadlineColumn: "total_for_sale",
		headlineExpr:   "json_extract(raw_json, '$.data.total_for_sale')",
	},
	"v_crime": {
		Endpoint:       schema.CrimeEndpoint,
		HeadlineColumn: "crimes_last_12m",
		headlineExpr:   "json_extract(raw_json, '$.data.crimes_last_12m')",
	},
}

// ViewNames returns the defined view names in stable order.
func ViewNames() []string {
	names := make([]string, 0, len(viewDefs))
	for name := range viewDefs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HeadlineColumn returns the name of a view's headline metric column.
func HeadlineColumn(view string) (string, error) {
	def, ok := viewDefs[view]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownView, view)
	}
	return def.HeadlineColumn, nil
}

// recreateViews drops and recreates every view definition.
func recreateViews(db *sql.DB) error {
	for _, name := range ViewNames() {
		def := viewDefs[name]
		if _, err := db.Exec(fmt.Sprintf("DROP VIEW IF EXISTS %s", name)); err != nil {
			return fmt.Errorf("failed to drop view %s: %w", name, err)
		}
		create := fmt.Sprintf(`
			CREATE VIEW %s AS
			SELECT ts, postcode, %s AS %s,
			       response_bytes, data_points, quality_flag
			FROM api_responses
			WHERE endpoint_name = '%s'`,
			name, def.headlineExpr, def.HeadlineColumn, def.Endpoint)
		if _, err := db.Exec(create); err != nil {
			return fmt.Errorf("failed to create view %s: %w", name, err)
		}
	}
	return nil
}

// ViewFilter narrows a view query. Zero values apply no filtering.
type ViewFilter struct {
	Postcode string
	Since    time.Time
	Limit    int
}

// QueryView returns rows from a named view, newest first. The column
// set is fixed per view and the query is strictly read-only.
func (s *Store) QueryView(view string, filter ViewFilter) ([]schema.ViewRow, error) {
	def, ok := viewDefs[view]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownView, view)
	}

	query := fmt.Sprintf(
		"SELECT ts, postcode, %s, response_bytes, data_points, quality_flag FROM %s",
		def.HeadlineColumn, view)
	var args []any
	var where []string
	if filter.Postcode != "" {
		where = append(where, "postcode = ?")
		args = append(args, filter.Postcode)
	}
	if !filter.Since.IsZero() {
		where = append(where, "ts >= ?")
		args = append(args, filter.Since.UTC().Format(time.RFC3339Nano))
	}
	for i, cond := range where {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY ts DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query view %s: %w", view, err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ViewRow
	for rows.Next() {
		var row schema.ViewRow
		var tsStr string
		var headline sql.NullFloat64
		var responseBytes, dataPoints sql.NullInt64
		var qualityFlag sql.NullString
		if err := rows.Scan(&tsStr, &row.Postcode, &headline, &responseBytes, &dataPoints, &qualityFlag); err != nil {
			return nil, fmt.Errorf("failed to scan view row: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, tsStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse view row timestamp: %w", err)
		}
		row.Timestamp = ts
		if headline.Valid {
			row.Headline = &headline.Float64
		}
		if responseBytes.Valid {
			row.ResponseBytes = &responseBytes.Int64
		}
		if dataPoints.Valid {
			row.DataPoints = &dataPoints.Int64
		}
		row.QualityFlag = qualityFlag.String
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating view rows: %w", err)
	}
	return results, nil
}
