package inquiry

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"campworks/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

const inquiryColumns = `id, title, content, author_id, author_name, email, phone, status, views, answer, answered_at, answered_by, created_at, updated_at`

func scanInquiry(row interface{ Scan(...any) error }) (*models.Inquiry, error) {
	var q models.Inquiry
	var answer, answeredBy sql.NullString
	var answeredAt sql.NullTime
	if err := row.Scan(&q.ID, &q.Title, &q.Content, &q.AuthorID, &q.AuthorName, &q.Email, &q.Phone,
		&q.Status, &q.Views, &answer, &answeredAt, &answeredBy, &q.CreatedAt, &q.UpdatedAt); err != nil {
		return nil, err
	}
	if answer.Valid {
		q.Answer = &answer.String
	}
	if answeredAt.Valid {
		t := answeredAt.Time
		q.AnsweredAt = &t
	}
	if answeredBy.Valid {
		q.AnsweredBy = &answeredBy.String
	}
	return &q, nil
}

func (r *Repo) Count(ctx context.Context) (int, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM inquiries`)
	var total int
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("count inquiries: %w", err)
	}
	return total, nil
}

// List returns inquiries newest first.
func (r *Repo) List(ctx context.Context, limit, offset int) ([]models.Inquiry, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+inquiryColumns+`
		FROM inquiries
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list inquiries: %w", err)
	}
	defer rows.Close()

	out := make([]models.Inquiry, 0, limit)
	for rows.Next() {
		q, err := scanInquiry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inquiry row: %w", err)
		}
		out = append(out, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.Inquiry, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+inquiryColumns+`
		FROM inquiries
		WHERE id = ?
	`, id)

	q, err := scanInquiry(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get inquiry: %w", err)
	}
	return q, nil
}

// IncrementViews bumps the view counter; readers tolerate the race.
func (r *Repo) IncrementViews(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE inquiries SET views = views + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	return nil
}

// Create stores a new inquiry. An empty ID is assigned.
func (r *Repo) Create(ctx context.Context, q *models.Inquiry) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.Status == "" {
		q.Status = models.InquiryStatusPending
	}

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO inquiries (id, title, content, author_id, author_name, email, phone, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, q.ID, q.Title, q.Content, q.AuthorID, q.AuthorName, q.Email, q.Phone, q.Status)
	if err != nil {
		return fmt.Errorf("create inquiry: %w", err)
	}
	return nil
}

// Answer records an admin reply and flips the inquiry to answered.
func (r *Repo) Answer(ctx context.Context, id, answer, answeredBy string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE inquiries
		SET answer = ?, status = ?, answered_at = CURRENT_TIMESTAMP, answered_by = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, answer, models.InquiryStatusAnswered, answeredBy, id)
	if err != nil {
		return false, fmt.Errorf("answer inquiry: %w", err)
	}
	rows, _ := res.RowsAffected()
	return rows > 0, nil
}

// ClearAnswer removes the reply and resets the inquiry to pending.
func (r *Repo) ClearAnswer(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE inquiries
		SET answer = NULL, status = ?, answered_at = NULL, answered_by = NULL, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, models.InquiryStatusPending, id)
	if err != nil {
		return false, fmt.Errorf("clear answer: %w", err)
	}
	rows, _ := res.RowsAffected()
	return rows > 0, nil
}

func (r *Repo) UpdateStatus(ctx context.Context, id, status string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE inquiries SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, status, id)
	if err != nil {
		return false, fmt.Errorf("update inquiry status: %w", err)
	}
	rows, _ := res.RowsAffected()
	return rows > 0, nil
}

func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM inquiries WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete inquiry: %w", err)
	}
	rows, _ := res.RowsAffected()
	return rows > 0, nil
}
