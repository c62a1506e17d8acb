package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"tarot-readings-backend/internal/models"
)

var ratingColumns = map[int]string{
	1: "rating1", 2: "rating2", 3: "rating3", 4: "rating4", 5: "rating5",
}

// FoldReaderRating folds one review into the reader's running aggregate:
// total count, rating sum and the per-star bucket.
func (d *DatabaseClient) FoldReaderRating(readerID uuid.UUID, rating int) error {
	column, ok := ratingColumns[rating]
	if !ok {
		return fmt.Errorf("rating out of range: %d", rating)
	}

	_, err := d.db.Exec(fmt.Sprintf(`
		INSERT INTO reader_ratings (reader_id, total_count, rating_sum, %[1]s)
		VALUES ($1, 1, $2, 1)
		ON CONFLICT (reader_id) DO UPDATE SET
			total_count = reader_ratings.total_count + 1,
			rating_sum = reader_ratings.rating_sum + $2,
			%[1]s = reader_ratings.%[1]s + 1,
			updated_at = NOW()
	`, column), readerID, rating)
	if err != nil {
		return fmt.Errorf("failed to fold reader rating: %w", err)
	}
	return nil
}

// GetReaderRating returns the aggregate, or a zero-valued aggregate for a
// reader with no reviews yet.
func (d *DatabaseClient) GetReaderRating(readerID uuid.UUID) (*models.ReaderRating, error) {
	var r models.ReaderRating
	err := d.db.QueryRow(`
		SELECT reader_id, total_count, rating_sum, rating1, rating2, rating3, rating4, rating5
		FROM reader_ratings
		WHERE reader_id = $1
	`, readerID).Scan(
		&r.ReaderID, &r.TotalCount, &r.RatingSum,
		&r.Rating1, &r.Rating2, &r.Rating3, &r.Rating4, &r.Rating5,
	)
	if err == sql.ErrNoRows {
		return &models.ReaderRating{ReaderID: readerID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reader rating: %w", err)
	}
	return &r, nil
}
