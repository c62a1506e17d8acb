package store

import (
	"fmt"

	"github.com/google/uuid"
	"tarot-readings-backend/internal/models"
)

// IncrementSymbolOccurrences bumps the denormalized per-symbol counters
// for a user. Called best-effort after fulfillment.
func (d *DatabaseClient) IncrementSymbolOccurrences(userID uuid.UUID, symbols []string) error {
	for _, symbol := range symbols {
		_, err := d.db.Exec(`
			INSERT INTO symbol_occurrences (user_id, symbol, occurrence_count, last_seen_at)
			VALUES ($1, $2, 1, NOW())
			ON CONFLICT (user_id, symbol) DO UPDATE SET
				occurrence_count = symbol_occurrences.occurrence_count + 1,
				last_seen_at = NOW()
		`, userID, symbol)
		if err != nil {
			return fmt.Errorf("failed to increment symbol %q: %w", symbol, err)
		}
	}
	return nil
}

func (d *DatabaseClient) ListSymbolOccurrences(userID uuid.UUID) ([]models.SymbolOccurrence, error) {
	rows, err := d.db.Query(`
		SELECT user_id, symbol, occurrence_count, last_seen_at
		FROM symbol_occurrences
		WHERE user_id = $1
		ORDER BY occurrence_count DESC, symbol ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list symbol occurrences: %w", err)
	}
	defer rows.Close()

	var occurrences []models.SymbolOccurrence
	for rows.Next() {
		var o models.SymbolOccurrence
		if err := rows.Scan(&o.UserID, &o.Symbol, &o.OccurrenceCount, &o.LastSeenAt); err != nil {
			return nil, fmt.Errorf("failed to scan symbol occurrence: %w", err)
		}
		occurrences = append(occurrences, o)
	}
	return occurrences, rows.Err()
}
