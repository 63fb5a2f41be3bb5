package postgres

import (
	"context"
	"fmt"

	"github.com/bandhq/backline/pkg/db"
)

// ListMembers retrieves every member of a band.
func (d *DB) ListMembers(ctx context.Context, bandID string) ([]db.Member, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, band_id, display_name, role
		FROM member
		WHERE band_id = $1
	`, bandID)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	var members []db.Member
	for rows.Next() {
		var m db.Member
		if err := rows.Scan(&m.ID, &m.BandID, &m.DisplayName, &m.Role); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating members: %w", err)
	}

	return members, nil
}

// ResolveMemberNames resolves member ids to display names in one query.
// Absent ids are simply missing from the returned map; callers fall back to a
// placeholder name.
func (d *DB) ResolveMemberNames(ctx context.Context, memberIDs []string) (map[string]string, error) {
	names := make(map[string]string, len(memberIDs))
	if len(memberIDs) == 0 {
		return names, nil
	}

	rows, err := d.pool.Query(ctx, `
		SELECT id, display_name
		FROM member
		WHERE id = ANY($1)
	`, memberIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query member names: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan member name: %w", err)
		}
		names[id] = name
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating member names: %w", err)
	}

	return names, nil
}
