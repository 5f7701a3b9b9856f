package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'manager', 'user')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS categories (
    id         INTEGER PRIMARY KEY,
    code       TEXT NOT NULL UNIQUE,
    name       TEXT NOT NULL,
    is_active  INTEGER NOT NULL DEFAULT 1,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS companies (
    id         INTEGER PRIMARY KEY,
    code       TEXT NOT NULL UNIQUE,
    name       TEXT NOT NULL,
    is_active  INTEGER NOT NULL DEFAULT 1,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS contractors (
    id         INTEGER PRIMARY KEY,
    code       TEXT NOT NULL UNIQUE,
    name       TEXT NOT NULL,
    is_active  INTEGER NOT NULL DEFAULT 1,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS machines (
    id         INTEGER PRIMARY KEY,
    code       TEXT NOT NULL UNIQUE,
    name       TEXT NOT NULL,
    is_active  INTEGER NOT NULL DEFAULT 1,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS locations (
    id         INTEGER PRIMARY KEY,
    code       TEXT NOT NULL UNIQUE,
    name       TEXT NOT NULL,
    is_active  INTEGER NOT NULL DEFAULT 1,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS items (
    id            INTEGER PRIMARY KEY,
    name          TEXT NOT NULL,
    serial_number TEXT UNIQUE,
    category_id   INTEGER REFERENCES categories(id),
    image_path    TEXT,
    status        TEXT NOT NULL DEFAULT 'AVAILABLE' CHECK (status IN ('AVAILABLE', 'ISSUED', 'MISSING')),
    is_active     INTEGER NOT NULL DEFAULT 1,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS issues (
    id            INTEGER PRIMARY KEY,
    issue_no      TEXT NOT NULL UNIQUE,
    item_id       INTEGER NOT NULL REFERENCES items(id),
    issued_by     INTEGER NOT NULL REFERENCES users(id),
    company_id    INTEGER REFERENCES companies(id),
    contractor_id INTEGER REFERENCES contractors(id),
    machine_id    INTEGER REFERENCES machines(id),
    location_id   INTEGER REFERENCES locations(id),
    operator_name TEXT NOT NULL DEFAULT '',
    remarks       TEXT NOT NULL DEFAULT '',
    is_returned   INTEGER NOT NULL DEFAULT 0,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- At most one open issue per item.
CREATE UNIQUE INDEX IF NOT EXISTS idx_issues_open_item
    ON issues(item_id) WHERE is_returned = 0;

CREATE TABLE IF NOT EXISTS returns (
    id               INTEGER PRIMARY KEY,
    return_code      TEXT NOT NULL UNIQUE,
    issue_id         INTEGER UNIQUE REFERENCES issues(id),
    item_id          INTEGER REFERENCES items(id),
    return_condition TEXT NOT NULL,
    returned_by      INTEGER NOT NULL REFERENCES users(id),
    image_path       TEXT NOT NULL,
    received_by      TEXT NOT NULL DEFAULT '',
    remarks          TEXT NOT NULL DEFAULT '',
    company_id       INTEGER REFERENCES companies(id),
    contractor_id    INTEGER REFERENCES contractors(id),
    machine_id       INTEGER REFERENCES machines(id),
    location_id      INTEGER REFERENCES locations(id),
    is_active        INTEGER NOT NULL DEFAULT 1,
    created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    CHECK ((issue_id IS NULL) <> (item_id IS NULL))
);

CREATE INDEX IF NOT EXISTS idx_returns_created ON returns(created_at);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
