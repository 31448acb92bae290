package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/teamflow/sprintbot/internal/model"
)

// UserRepo provides access to the users table. Deletes are logical: rows
// are flagged, never removed.
type UserRepo struct {
	db *sql.DB
}

const userColumns = `user_id, first_name, last_name, email, phone, password_hash, role, telegram_username, deleted`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var phone, hash, role, tgUsername sql.NullString
	var deleted int
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &phone, &hash, &role, &tgUsername, &deleted)
	if err != nil {
		return nil, err
	}
	u.Phone = phone.String
	u.PasswordHash = hash.String
	u.Role = role.String
	u.TelegramUsername = tgUsername.String
	u.Deleted = deleted != 0
	return &u, nil
}

// FindAll returns all non-deleted users ordered by id.
func (r *UserRepo) FindAll(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE deleted = 0 ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// FindByID returns the user with the given id, or nil if absent or deleted.
func (r *UserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE user_id = ? AND deleted = 0`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return u, nil
}

// FindByTelegramUsername returns the user registered under the given
// Telegram username, or nil if none matches.
func (r *UserRepo) FindByTelegramUsername(ctx context.Context, username string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE telegram_username = ? AND deleted = 0`, username)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return u, nil
}

// FindByEmail returns the user with the given email, or nil if none matches.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? AND deleted = 0`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return u, nil
}

// Create inserts a new user and fills in its assigned id.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (first_name, last_name, email, phone, password_hash, role, telegram_username, deleted)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 0)`,
		u.FirstName, u.LastName, u.Email, u.Phone, u.PasswordHash, u.Role, u.TelegramUsername)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	u.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read user id: %w", err)
	}
	return nil
}

// Update rewrites the mutable fields of an existing user.
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET first_name = ?, last_name = ?, email = ?, phone = ?, role = ?, telegram_username = ?
		 WHERE user_id = ? AND deleted = 0`,
		u.FirstName, u.LastName, u.Email, u.Phone, u.Role, u.TelegramUsername, u.ID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// Delete flags a user as deleted.
func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET deleted = 1 WHERE user_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
