package postgres

import (
	"context"
	"fmt"

	"github.com/bandhq/backline/pkg/db"
)

// FetchBlockOuts retrieves every block-out record for a band, one row per
// member per unavailable day.
func (d *DB) FetchBlockOuts(ctx context.Context, bandID string) ([]db.BlockOut, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, member_id, band_id, date, reason
		FROM block_out
		WHERE band_id = $1
	`, bandID)
	if err != nil {
		return nil, fmt.Errorf("failed to query block-outs: %w", err)
	}
	defer rows.Close()

	var blockOuts []db.BlockOut
	for rows.Next() {
		var b db.BlockOut
		if err := rows.Scan(&b.ID, &b.MemberID, &b.BandID, &b.Date, &b.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan block-out: %w", err)
		}
		blockOuts = append(blockOuts, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating block-outs: %w", err)
	}

	return blockOuts, nil
}

// InsertBlockOuts inserts one record per unavailable day in a single
// transaction, so a multi-day block-out is stored atomically.
func (d *DB) InsertBlockOuts(ctx context.Context, blockOuts []db.BlockOut) error {
	if len(blockOuts) == 0 {
		return nil
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, b := range blockOuts {
		_, err := tx.Exec(ctx, `
			INSERT INTO block_out (id, member_id, band_id, date, reason)
			VALUES ($1, $2, $3, $4, $5)
		`, b.ID, b.MemberID, b.BandID, b.Date, b.Reason)
		if err != nil {
			return fmt.Errorf("failed to insert block-out: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteBlockOut removes a block-out record by id.
func (d *DB) DeleteBlockOut(ctx context.Context, id string) error {
	_, err := d.pool.Exec(ctx, `DELETE FROM block_out WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete block-out: %w", err)
	}
	return nil
}
