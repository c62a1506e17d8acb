package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"tarot-readings-backend/internal/models"
)

const profileColumns = `user_id, email, stripe_customer_id, stripe_account_id, created_at, updated_at`

func scanProfile(row rowScanner) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(&p.UserID, &p.Email, &p.StripeCustomerID, &p.StripeAccountID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// EnsureProfile upserts the profile row for a user, refreshing the email
// from the auth token.
func (d *DatabaseClient) EnsureProfile(userID uuid.UUID, email string) (*models.Profile, error) {
	row := d.db.QueryRow(`
		INSERT INTO profiles (user_id, email)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET email = EXCLUDED.email, updated_at = NOW()
		RETURNING `+profileColumns,
		userID, email,
	)
	p, err := scanProfile(row)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure profile: %w", err)
	}
	return p, nil
}

func (d *DatabaseClient) GetProfile(userID uuid.UUID) (*models.Profile, error) {
	row := d.db.QueryRow(`
		SELECT `+profileColumns+`
		FROM profiles
		WHERE user_id = $1
	`, userID)
	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, ErrNoMatch
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

func (d *DatabaseClient) SetStripeCustomerID(userID uuid.UUID, customerID string) error {
	_, err := d.db.Exec(`
		UPDATE profiles
		SET stripe_customer_id = $1, updated_at = NOW()
		WHERE user_id = $2
	`, customerID, userID)
	return err
}

func (d *DatabaseClient) SetStripeAccountID(userID uuid.UUID, accountID string) error {
	_, err := d.db.Exec(`
		UPDATE profiles
		SET stripe_account_id = $1, updated_at = NOW()
		WHERE user_id = $2
	`, accountID, userID)
	return err
}
