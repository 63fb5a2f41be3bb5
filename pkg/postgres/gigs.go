package postgres

import (
	"context"
	"fmt"

	"github.com/bandhq/backline/pkg/db"
)

// FetchGigs retrieves every gig for a band. Month filtering happens
// client-side, so no date predicate here.
func (d *DB) FetchGigs(ctx context.Context, bandID string) ([]db.Gig, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, band_id, title, venue, date, start_time
		FROM gig
		WHERE band_id = $1
	`, bandID)
	if err != nil {
		return nil, fmt.Errorf("failed to query gigs: %w", err)
	}
	defer rows.Close()

	var gigs []db.Gig
	for rows.Next() {
		var g db.Gig
		if err := rows.Scan(&g.ID, &g.BandID, &g.Title, &g.Venue, &g.Date, &g.StartTime); err != nil {
			return nil, fmt.Errorf("failed to scan gig: %w", err)
		}
		gigs = append(gigs, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating gigs: %w", err)
	}

	return gigs, nil
}

// InsertGig inserts a new gig record.
func (d *DB) InsertGig(ctx context.Context, gig *db.Gig) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO gig (id, band_id, title, venue, date, start_time)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, gig.ID, gig.BandID, gig.Title, gig.Venue, gig.Date, gig.StartTime)
	if err != nil {
		return fmt.Errorf("failed to insert gig: %w", err)
	}
	return nil
}

// DeleteGig removes a gig by id.
func (d *DB) DeleteGig(ctx context.Context, id string) error {
	_, err := d.pool.Exec(ctx, `DELETE FROM gig WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete gig: %w", err)
	}
	return nil
}
