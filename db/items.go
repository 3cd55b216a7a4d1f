package db

import (
	"context"
	"fmt"

	"avito-scraper/models"
)

// SaveItems stores items, ignoring URLs that are already in the table.
// It returns how many rows were inserted.
func (db *DB) SaveItems(ctx context.Context, items []models.Item) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO avito_items (url, search_url, pass, found_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (url) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, item := range items {
		res, err := stmt.ExecContext(ctx, item.URL, item.SearchURL, item.Pass, item.FoundAt)
		if err != nil {
			return 0, fmt.Errorf("failed to save item %s: %w", item.URL, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit items: %w", err)
	}
	return inserted, nil
}

// Publish implements scheduler.Sink
func (db *DB) Publish(ctx context.Context, items []models.Item) error {
	_, err := db.SaveItems(ctx, items)
	return err
}

// CountItems returns how many items were stored for searchURL
func (db *DB) CountItems(ctx context.Context, searchURL string) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM avito_items WHERE search_url = $1`, searchURL).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return count, nil
}
