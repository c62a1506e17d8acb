package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"tarot-readings-backend/internal/models"
)

const requestColumns = `id, user_id, claimed_by, spread_type, topic, context,
	price, platform_fee, reader_payout, request_status,
	stripe, cards, review, overall_message, photo_url,
	created_at, updated_at, expires_at, claimed_at, claim_deadline, paid_at, fulfilled_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReadingRequest(row rowScanner) (*models.ReadingRequest, error) {
	var r models.ReadingRequest
	err := row.Scan(
		&r.ID, &r.UserID, &r.ClaimedBy, &r.SpreadType, &r.Topic, &r.Context,
		&r.Price, &r.PlatformFee, &r.ReaderPayout, &r.RequestStatus,
		&r.Stripe, &r.Cards, &r.Review, &r.OverallMessage, &r.PhotoURL,
		&r.CreatedAt, &r.UpdatedAt, &r.ExpiresAt, &r.ClaimedAt, &r.ClaimDeadline, &r.PaidAt, &r.FulfilledAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (d *DatabaseClient) CreateReadingRequest(r *models.ReadingRequest) (*models.ReadingRequest, error) {
	row := d.db.QueryRow(`
		INSERT INTO reading_requests
			(id, user_id, spread_type, topic, context, price, platform_fee, reader_payout, request_status, stripe, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+requestColumns,
		r.ID, r.UserID, r.SpreadType, r.Topic, r.Context,
		r.Price, r.PlatformFee, r.ReaderPayout, r.RequestStatus, r.Stripe, r.ExpiresAt,
	)
	created, err := scanReadingRequest(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create reading request: %w", err)
	}
	return created, nil
}

func (d *DatabaseClient) GetReadingRequest(requestID, userID uuid.UUID) (*models.ReadingRequest, error) {
	row := d.db.QueryRow(`
		SELECT `+requestColumns+`
		FROM reading_requests
		WHERE id = $1 AND user_id = $2
	`, requestID, userID)
	r, err := scanReadingRequest(row)
	if err == sql.ErrNoRows {
		return nil, ErrNoMatch
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reading request: %w", err)
	}
	return r, nil
}

// GetReadingRequestForParticipant resolves a request visible to either the
// owning requester or the claiming reader.
func (d *DatabaseClient) GetReadingRequestForParticipant(requestID, userID uuid.UUID) (*models.ReadingRequest, error) {
	row := d.db.QueryRow(`
		SELECT `+requestColumns+`
		FROM reading_requests
		WHERE id = $1 AND (user_id = $2 OR claimed_by = $2)
	`, requestID, userID)
	r, err := scanReadingRequest(row)
	if err == sql.ErrNoRows {
		return nil, ErrNoMatch
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reading request: %w", err)
	}
	return r, nil
}

// GetReadingRequestByID has no ownership scope; it serves webhook lookups.
func (d *DatabaseClient) GetReadingRequestByID(requestID uuid.UUID) (*models.ReadingRequest, error) {
	row := d.db.QueryRow(`
		SELECT `+requestColumns+`
		FROM reading_requests
		WHERE id = $1
	`, requestID)
	r, err := scanReadingRequest(row)
	if err == sql.ErrNoRows {
		return nil, ErrNoMatch
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reading request: %w", err)
	}
	return r, nil
}

func (d *DatabaseClient) queryRequests(query string, args ...interface{}) ([]models.ReadingRequest, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reading requests: %w", err)
	}
	defer rows.Close()

	var requests []models.ReadingRequest
	for rows.Next() {
		r, err := scanReadingRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reading request: %w", err)
		}
		requests = append(requests, *r)
	}
	return requests, rows.Err()
}

// ListUserRequests returns the requester's own requests, newest first,
// optionally filtered by status.
func (d *DatabaseClient) ListUserRequests(userID uuid.UUID, status string) ([]models.ReadingRequest, error) {
	if status != "" {
		return d.queryRequests(`
			SELECT `+requestColumns+`
			FROM reading_requests
			WHERE user_id = $1 AND request_status = $2
			ORDER BY created_at DESC
		`, userID, status)
	}
	return d.queryRequests(`
		SELECT `+requestColumns+`
		FROM reading_requests
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
}

// ListAvailableRequests is the reader-facing request bank: everything in
// awaiting_claim, oldest first so long-waiting requests surface.
func (d *DatabaseClient) ListAvailableRequests(limit, offset int) ([]models.ReadingRequest, error) {
	return d.queryRequests(`
		SELECT `+requestColumns+`
		FROM reading_requests
		WHERE request_status = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`, models.StatusAwaitingClaim, limit, offset)
}

func (d *DatabaseClient) ListClaimedRequests(readerID uuid.UUID) ([]models.ReadingRequest, error) {
	return d.queryRequests(`
		SELECT `+requestColumns+`
		FROM reading_requests
		WHERE claimed_by = $1 AND request_status = $2
		ORDER BY claim_deadline ASC
	`, readerID, models.StatusClaimed)
}

func (d *DatabaseClient) ListFulfilledRequests(userID uuid.UUID) ([]models.ReadingRequest, error) {
	return d.queryRequests(`
		SELECT `+requestColumns+`
		FROM reading_requests
		WHERE user_id = $1 AND request_status = $2
		ORDER BY fulfilled_at DESC
	`, userID, models.StatusFulfilled)
}

// ListReaderReviews aggregates the reviews attached to a reader's
// fulfilled requests, newest first.
func (d *DatabaseClient) ListReaderReviews(readerID uuid.UUID) ([]models.Review, error) {
	rows, err := d.db.Query(`
		SELECT review
		FROM reading_requests
		WHERE claimed_by = $1 AND request_status = $2 AND review IS NOT NULL
		ORDER BY fulfilled_at DESC
	`, readerID, models.StatusFulfilled)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		var raw json.RawMessage
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		var review models.Review
		if err := json.Unmarshal(raw, &review); err != nil {
			continue
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}

// MarkRequestPaid transitions pending_payment to awaiting_claim. Any other
// current status (including a repeated call) yields ErrNoMatch.
func (d *DatabaseClient) MarkRequestPaid(requestID uuid.UUID, expiresAt time.Time) (*models.ReadingRequest, error) {
	row := d.db.QueryRow(`
		UPDATE reading_requests
		SET request_status = $1, paid_at = NOW(), expires_at = $2, updated_at = NOW()
		WHERE id = $3 AND request_status = $4
		RETURNING `+requestColumns,
		models.StatusAwaitingClaim, expiresAt, requestID, models.StatusPendingPayment,
	)
	r, err := scanReadingRequest(row)
	if err == sql.ErrNoRows {
		return nil, ErrNoMatch
	}
	if err != nil {
		return nil, fmt.Errorf("failed to mark request paid: %w", err)
	}
	return r, nil
}

// ClaimRequest is the mutual-exclusion point: the status guard in the
// WHERE clause makes concurrent claims at-most-one-winner, since Postgres
// serializes the row update and the loser re-evaluates the guard against
// the already-flipped status.
func (d *DatabaseClient) ClaimRequest(requestID, readerID uuid.UUID, claimDeadline time.Time) (*models.ReadingRequest, error) {
	row := d.db.QueryRow(`
		UPDATE reading_requests
		SET request_status = $1, claimed_by = $2, claimed_at = NOW(), claim_deadline = $3, updated_at = NOW()
		WHERE id = $4 AND request_status = $5
		RETURNING `+requestColumns,
		models.StatusClaimed, readerID, claimDeadline, requestID, models.StatusAwaitingClaim,
	)
	r, err := scanReadingRequest(row)
	if err == sql.ErrNoRows {
		return nil, ErrNoMatch
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim request: %w", err)
	}
	return r, nil
}

func (d *DatabaseClient) ReleaseRequest(requestID, readerID uuid.UUID) (*models.ReadingRequest, error) {
	row := d.db.QueryRow(`
		UPDATE reading_requests
		SET request_status = $1, claimed_by = NULL, claimed_at = NULL, claim_deadline = NULL, updated_at = NOW()
		WHERE id = $2 AND claimed_by = $3 AND request_status = $4
		RETURNING `+requestColumns,
		models.StatusAwaitingClaim, requestID, readerID, models.StatusClaimed,
	)
	r, err := scanReadingRequest(row)
	if err == sql.ErrNoRows {
		return nil, ErrNoMatch
	}
	if err != nil {
		return nil, fmt.Errorf("failed to release request: %w", err)
	}
	return r, nil
}

// GetClaimedRequest is the fulfill precondition read: the request must be
// claimed by this reader right now.
func (d *DatabaseClient) GetClaimedRequest(requestID, readerID uuid.UUID) (*models.ReadingRequest, error) {
	row := d.db.QueryRow(`
		SELECT `+requestColumns+`
		FROM reading_requests
		WHERE id = $1 AND claimed_by = $2 AND request_status = $3
	`, requestID, readerID, models.StatusClaimed)
	r, err := scanReadingRequest(row)
	if err == sql.ErrNoRows {
		return nil, ErrNoMatch
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get claimed request: %w", err)
	}
	return r, nil
}

// FulfillRequest flips claimed to fulfilled and persists the reading
// payload plus the Stripe ids actually charged. The claimed guard means a
// second attempt after a successful capture matches nothing, so a request
// is charged at most once.
func (d *DatabaseClient) FulfillRequest(requestID, readerID uuid.UUID, cards json.RawMessage, overallMessage, photoURL string, stripe json.RawMessage) (*models.ReadingRequest, error) {
	var photo sql.NullString
	if photoURL != "" {
		photo = sql.NullString{String: photoURL, Valid: true}
	}
	row := d.db.QueryRow(`
		UPDATE reading_requests
		SET request_status = $1, cards = $2, overall_message = $3, photo_url = $4,
			stripe = $5, fulfilled_at = NOW(), updated_at = NOW()
		WHERE id = $6 AND claimed_by = $7 AND request_status = $8
		RETURNING `+requestColumns,
		models.StatusFulfilled, cards, overallMessage, photo,
		stripe, requestID, readerID, models.StatusClaimed,
	)
	r, err := scanReadingRequest(row)
	if err == sql.ErrNoRows {
		return nil, ErrNoMatch
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fulfill request: %w", err)
	}
	return r, nil
}

func (d *DatabaseClient) CancelRequest(requestID, userID uuid.UUID) (*models.ReadingRequest, error) {
	row := d.db.QueryRow(`
		UPDATE reading_requests
		SET request_status = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3 AND request_status IN ($4, $5)
		RETURNING `+requestColumns,
		models.StatusCancelled, requestID, userID, models.StatusPendingPayment, models.StatusAwaitingClaim,
	)
	r, err := scanReadingRequest(row)
	if err == sql.ErrNoRows {
		return nil, ErrNoMatch
	}
	if err != nil {
		return nil, fmt.Errorf("failed to cancel request: %w", err)
	}
	return r, nil
}

// AttachReview writes the review exactly once: the IS NULL guard rejects a
// second attach the same way a status guard rejects a stale transition.
func (d *DatabaseClient) AttachReview(requestID, userID uuid.UUID, review json.RawMessage) (*models.ReadingRequest, error) {
	row := d.db.QueryRow(`
		UPDATE reading_requests
		SET review = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3 AND request_status = $4 AND review IS NULL
		RETURNING `+requestColumns,
		review, requestID, userID, models.StatusFulfilled,
	)
	r, err := scanReadingRequest(row)
	if err == sql.ErrNoRows {
		return nil, ErrNoMatch
	}
	if err != nil {
		return nil, fmt.Errorf("failed to attach review: %w", err)
	}
	return r, nil
}

// SweepExpired enforces the passive TTL fields: unclaimed requests past
// expires_at become expired, and claimed requests past their deadline go
// back to the bank.
func (d *DatabaseClient) SweepExpired(now time.Time) (expired, released int64, err error) {
	res, err := d.db.Exec(`
		UPDATE reading_requests
		SET request_status = $1, updated_at = NOW()
		WHERE request_status IN ($2, $3) AND expires_at < $4
	`, models.StatusExpired, models.StatusPendingPayment, models.StatusAwaitingClaim, now)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to expire requests: %w", err)
	}
	expired, _ = res.RowsAffected()

	res, err = d.db.Exec(`
		UPDATE reading_requests
		SET request_status = $1, claimed_by = NULL, claimed_at = NULL, claim_deadline = NULL, updated_at = NOW()
		WHERE request_status = $2 AND claim_deadline < $3
	`, models.StatusAwaitingClaim, models.StatusClaimed, now)
	if err != nil {
		return expired, 0, fmt.Errorf("failed to release overdue claims: %w", err)
	}
	released, _ = res.RowsAffected()

	return expired, released, nil
}
