package store

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/erazemk/orodjarna/internal/db"
	"github.com/erazemk/orodjarna/internal/model"
)

// CreateUser creates a new user. A taken username is ErrConflict.
func CreateUser(ctx context.Context, q db.Querier, username, passwordHash, role string) (*model.User, error) {
	if !model.RoleAtLeast(role, model.RoleUser) {
		return nil, model.NewValidationError("role", fmt.Sprintf("unknown role %q", role))
	}

	result, err := q.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, role) VALUES (?, ?, ?)`,
		username, passwordHash, role,
	)
	if err != nil {
		return nil, fmt.Errorf("creating user %s: %w", username, db.ClassifyError(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	return GetUser(ctx, q, id)
}

func getUserWhere(ctx context.Context, q db.Querier, pred sq.Sqlizer) (*model.User, error) {
	query, args, err := sq.Select("id", "username", "password_hash", "role", "created_at", "deleted_at").
		From("users").
		Where(pred).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building user query: %w", err)
	}

	u := &model.User{}
	err = q.QueryRowContext(ctx, query, args...).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// GetUser returns a user by ID, deleted or not.
func GetUser(ctx context.Context, q db.Querier, id int64) (*model.User, error) {
	return getUserWhere(ctx, q, sq.Eq{"id": id})
}

// GetUserByUsername returns the live user with username.
func GetUserByUsername(ctx context.Context, q db.Querier, username string) (*model.User, error) {
	return getUserWhere(ctx, q, sq.Eq{"username": username, "deleted_at": nil})
}
