package snapstore

import (
	"fmt"
	"strings"
	"time"

	"github.com/rentfold/propsnap/schema"
)

// SyncCohorts reconciles cohort definitions into the dimension tables
// inside one transaction. The pass is additive: members present in the
// store but absent from the current definition are left in place, which
// preserves historical membership for audit.
func (s *Store) SyncCohorts(defs []schema.CohortDefinition) (*schema.CohortSyncResult, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin cohort sync: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result := &schema.CohortSyncResult{}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	for _, def := range defs {
		if def.ID == "" {
			return nil, fmt.Errorf("cohort definition missing id (name %q)", def.Name)
		}

		_, err := tx.Exec(`
			INSERT INTO cohorts (cohort_id, name, description, tags, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (cohort_id) DO UPDATE SET
				name = excluded.name,
				description = excluded.description,
				tags = excluded.tags,
				updated_at = excluded.updated_at`,
			def.ID, def.Name, def.Description, strings.Join(def.Tags, ","), now)
		if err != nil {
			return nil, fmt.Errorf("failed to upsert cohort %q: %w", def.ID, err)
		}
		result.CohortsUpserted++

		for _, member := range def.Members {
			if member.Key == "" {
				return nil, fmt.Errorf("cohort %q has a member with no key", def.ID)
			}
			locType := member.Type
			if locType == "" {
				locType = schema.DefaultLocationType
			}

			res, err := tx.Exec(`
				INSERT INTO cohort_members (cohort_id, location_type, location_key, updated_at)
				VALUES (?, ?, ?, ?)
				ON CONFLICT (cohort_id, location_key) DO NOTHING`,
				def.ID, locType, member.Key, now)
			if err != nil {
				return nil, fmt.Errorf("failed to upsert member %q of cohort %q: %w", member.Key, def.ID, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return nil, fmt.Errorf("failed to read member upsert result: %w", err)
			}
			if n > 0 {
				result.MembersNew++
			} else {
				_, err := tx.Exec(`
					UPDATE cohort_members SET location_type = ?, updated_at = ?
					WHERE cohort_id = ? AND location_key = ?`,
					locType, now, def.ID, member.Key)
				if err != nil {
					return nil, fmt.Errorf("failed to refresh member %q of cohort %q: %w", member.Key, def.ID, err)
				}
			}
			result.MembersUpserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit cohort sync: %w", err)
	}
	return result, nil
}

// CohortMembers returns the location keys of a cohort in stable order.
func (s *Store) CohortMembers(cohortID string) ([]string, error) {
	rows, err := s.db.Query(
		"SELECT location_key FROM cohort_members WHERE cohort_id = ? ORDER BY location_key",
		cohortID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cohort members: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan cohort member: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cohort members: %w", err)
	}
	return keys, nil
}

// ListCohorts returns a summary of every persisted cohort.
func (s *Store) ListCohorts() ([]schema.CohortInfo, error) {
	rows, err := s.db.Query(`
		SELECT c.cohort_id, c.name, COALESCE(c.description, ''), COALESCE(c.tags, ''),
		       c.updated_at, COUNT(m.location_key)
		FROM cohorts c
		LEFT JOIN cohort_members m ON m.cohort_id = c.cohort_id
		GROUP BY c.cohort_id
		ORDER BY c.cohort_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cohorts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.CohortInfo
	for rows.Next() {
		var info schema.CohortInfo
		var tags, updatedAt string
		if err := rows.Scan(&info.ID, &info.Name, &info.Description, &tags, &updatedAt, &info.MemberCount); err != nil {
			return nil, fmt.Errorf("failed to scan cohort: %w", err)
		}
		if tags != "" {
			info.Tags = strings.Split(tags, ",")
		}
		t, err := time.Parse(time.RFC3339Nano, updatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse cohort updated_at: %w", err)
		}
		info.UpdatedAt = t
		results = append(results, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cohorts: %w", err)
	}
	return results, nil
}
