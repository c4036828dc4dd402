// ABOUTME: Database operations for the submissions log
// ABOUTME: Records inbound form events and their processing outcome
package db

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/whitefoxstudios/onboarding/models"
)

var ErrSubmissionNotFound = errors.New("submission not found")

// SubmissionsRepository logs form submissions.
type SubmissionsRepository struct {
	db *sql.DB
}

// NewSubmissionsRepository creates a new submissions repository.
func NewSubmissionsRepository(db *sql.DB) *SubmissionsRepository {
	return &SubmissionsRepository{db: db}
}

// Record stores a received submission and returns its id.
func (r *SubmissionsRepository) Record(ctx context.Context, s models.Submission) (string, error) {
	fields, err := json.Marshal(s.Fields)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	id := ulid.MustNew(ulid.Timestamp(now), rand.Reader).String()

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO submissions (id, form_name, fields, status, received_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, s.FormName, string(fields), models.SubmissionReceived, now)
	if err != nil {
		return "", fmt.Errorf("failed to record submission: %w", err)
	}

	return id, nil
}

// MarkProcessed stores the result of a successful submission.
func (r *SubmissionsRepository) MarkProcessed(ctx context.Context, id string, result *models.Result) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return r.finish(ctx, id, models.SubmissionProcessed, "", string(raw))
}

// MarkFailed stores the error of a failed submission.
func (r *SubmissionsRepository) MarkFailed(ctx context.Context, id string, cause error) error {
	return r.finish(ctx, id, models.SubmissionFailed, cause.Error(), "")
}

// MarkIgnored flags a submission from a form nobody handles.
func (r *SubmissionsRepository) MarkIgnored(ctx context.Context, id string, reason string) error {
	return r.finish(ctx, id, models.SubmissionIgnored, reason, "")
}

func (r *SubmissionsRepository) finish(ctx context.Context, id, status, errMsg, result string) error {
	var errVal, resultVal sql.NullString
	if errMsg != "" {
		errVal = sql.NullString{String: errMsg, Valid: true}
	}
	if result != "" {
		resultVal = sql.NullString{String: result, Valid: true}
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE submissions SET status = ?, error = ?, result = ?, processed_at = ?
		WHERE id = ?
	`, status, errVal, resultVal, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update submission: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrSubmissionNotFound, id)
	}
	return nil
}

const submissionColumns = `id, form_name, fields, status, error, result, received_at, processed_at`

func scanSubmission(row interface{ Scan(...any) error }) (*models.SubmissionRecord, error) {
	var rec models.SubmissionRecord
	var fields string
	var errMsg, result sql.NullString
	var processedAt sql.NullTime

	if err := row.Scan(&rec.ID, &rec.FormName, &fields, &rec.Status, &errMsg, &result, &rec.ReceivedAt, &processedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(fields), &rec.Fields); err != nil {
		return nil, fmt.Errorf("failed to decode submission fields: %w", err)
	}
	if errMsg.Valid {
		rec.Error = errMsg.String
	}
	if result.Valid {
		rec.Result = []byte(result.String)
	}
	if processedAt.Valid {
		rec.ProcessedAt = &processedAt.Time
	}
	return &rec, nil
}

// Get returns a logged submission.
func (r *SubmissionsRepository) Get(ctx context.Context, id string) (*models.SubmissionRecord, error) {
	rec, err := scanSubmission(r.db.QueryRowContext(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrSubmissionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return rec, nil
}

// List returns the newest submissions first, optionally filtered by status.
func (r *SubmissionsRepository) List(ctx context.Context, status string, limit int) ([]models.SubmissionRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+submissionColumns+` FROM submissions
		WHERE (? = '' OR status = ?)
		ORDER BY id DESC
		LIMIT ?
	`, status, status, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []models.SubmissionRecord
	for rows.Next() {
		rec, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating submissions: %w", err)
	}
	return records, nil
}
