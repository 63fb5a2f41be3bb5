package postgres

import (
	"context"
	"fmt"

	"github.com/bandhq/backline/pkg/db"
)

// FetchRehearsals retrieves every rehearsal for a band.
func (d *DB) FetchRehearsals(ctx context.Context, bandID string) ([]db.Rehearsal, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, band_id, location, date, start_time, setlist_id, recurrence
		FROM rehearsal
		WHERE band_id = $1
	`, bandID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rehearsals: %w", err)
	}
	defer rows.Close()

	var rehearsals []db.Rehearsal
	for rows.Next() {
		var r db.Rehearsal
		if err := rows.Scan(&r.ID, &r.BandID, &r.Location, &r.Date, &r.StartTime, &r.SetlistID, &r.Recurrence); err != nil {
			return nil, fmt.Errorf("failed to scan rehearsal: %w", err)
		}
		rehearsals = append(rehearsals, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rehearsals: %w", err)
	}

	return rehearsals, nil
}

// InsertRehearsal inserts a new rehearsal record.
func (d *DB) InsertRehearsal(ctx context.Context, rehearsal *db.Rehearsal) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO rehearsal (id, band_id, location, date, start_time, setlist_id, recurrence)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, rehearsal.ID, rehearsal.BandID, rehearsal.Location, rehearsal.Date, rehearsal.StartTime, rehearsal.SetlistID, rehearsal.Recurrence)
	if err != nil {
		return fmt.Errorf("failed to insert rehearsal: %w", err)
	}
	return nil
}

// DeleteRehearsal removes a rehearsal by id.
func (d *DB) DeleteRehearsal(ctx context.Context, id string) error {
	_, err := d.pool.Exec(ctx, `DELETE FROM rehearsal WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete rehearsal: %w", err)
	}
	return nil
}
