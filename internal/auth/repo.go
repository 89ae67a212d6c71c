package auth

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// User types.
const (
	UserTypeAdmin    = "admin"
	UserTypeCustomer = "customer"
)

// ValidUserType reports whether t is a known user type.
func ValidUserType(t string) bool {
	return t == UserTypeAdmin || t == UserTypeCustomer
}

type User struct {
	ID           string
	LoginID      string // the ID the user types at login
	PasswordHash string
	Name         string
	PhoneNumber  string
	UserType     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

const userColumns = `id, login_id, password_hash, name, phone_number, user_type, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.LoginID, &u.PasswordHash, &u.Name, &u.PhoneNumber, &u.UserType, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) Create(ctx context.Context, u User) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (id, login_id, password_hash, name, phone_number, user_type)
		VALUES (?, ?, ?, ?, ?, ?)
	`, u.ID, u.LoginID, u.PasswordHash, u.Name, u.PhoneNumber, u.UserType)

	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*User, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = ?
	`, id)

	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get by id: %w", err)
	}
	return u, nil
}

func (r *Repo) GetByLoginID(ctx context.Context, loginID string) (*User, error) {
	loginID = strings.TrimSpace(loginID)
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE login_id = ?
	`, loginID)

	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get by login id: %w", err)
	}
	return u, nil
}

func (r *Repo) Count(ctx context.Context) (int, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`)
	var total int
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return total, nil
}

// List returns users newest first.
func (r *Repo) List(ctx context.Context, limit, offset int) ([]User, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := make([]User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		out = append(out, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// UserUpdate carries the optional fields of an admin edit; nil means keep.
type UserUpdate struct {
	PasswordHash *string
	Name         *string
	PhoneNumber  *string
	UserType     *string
}

func (r *Repo) Update(ctx context.Context, id string, upd UserUpdate) (bool, error) {
	var sets []string
	var args []any

	if upd.PasswordHash != nil {
		sets = append(sets, "password_hash = ?")
		args = append(args, *upd.PasswordHash)
	}
	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.PhoneNumber != nil {
		sets = append(sets, "phone_number = ?")
		args = append(args, *upd.PhoneNumber)
	}
	if upd.UserType != nil {
		sets = append(sets, "user_type = ?")
		args = append(args, *upd.UserType)
	}
	if len(sets) == 0 {
		return false, fmt.Errorf("update user: nothing to update")
	}

	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)

	res, err := r.DB.ExecContext(ctx, `
		UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?
	`, args...)
	if err != nil {
		return false, fmt.Errorf("update user: %w", err)
	}
	rows, _ := res.RowsAffected()
	return rows > 0, nil
}

func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	rows, _ := res.RowsAffected()
	return rows > 0, nil
}
