package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/erazemk/orodjarna/internal/db"
)

const settingJWTSecret = "jwt_secret"

// GetSetting returns the value stored under key, or "" and false.
func GetSetting(ctx context.Context, q db.Querier, key string) (string, bool, error) {
	var value string
	err := q.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("querying setting %s: %w", key, err)
	}
	return value, true, nil
}

// EnsureSetting stores candidate under key unless a value is already there,
// then returns whichever value won. Concurrent callers all see the same value.
func EnsureSetting(ctx context.Context, q db.Querier, key, candidate string) (string, error) {
	if _, err := q.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`, key, candidate,
	); err != nil {
		return "", fmt.Errorf("storing setting %s: %w", key, err)
	}

	value, ok, err := GetSetting(ctx, q, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("setting %s vanished after insert", key)
	}
	return value, nil
}

// GetJWTSecret returns the token signing secret, generating it on first use.
func GetJWTSecret(ctx context.Context, q db.Querier) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}
	return EnsureSetting(ctx, q, settingJWTSecret, hex.EncodeToString(buf))
}
