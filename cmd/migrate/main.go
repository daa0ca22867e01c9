// Command migrate applies the production schema. Development environments use
// AutoMigrate on startup; this command is the explicit path for everything
// else.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"strings"

	"koinonia/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type migration struct {
	version int
	name    string
	up      string
}

var migrations = []migration{
	{
		version: 1,
		name:    "create_users",
		up: `CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username TEXT NOT NULL,
			email TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			display_name TEXT,
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			deleted_at TIMESTAMPTZ
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username ON users (username);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users (email);
		CREATE INDEX IF NOT EXISTS idx_users_deleted_at ON users (deleted_at);`,
	},
	{
		version: 2,
		name:    "create_contents",
		up: `CREATE TABLE IF NOT EXISTS contents (
			id BIGSERIAL PRIMARY KEY,
			type VARCHAR(20) NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			media_url TEXT,
			owner_id BIGINT NOT NULL REFERENCES users(id),
			published BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			deleted_at TIMESTAMPTZ
		);
		CREATE INDEX IF NOT EXISTS idx_contents_type ON contents (type);
		CREATE INDEX IF NOT EXISTS idx_contents_owner_id ON contents (owner_id);
		CREATE INDEX IF NOT EXISTS idx_contents_deleted_at ON contents (deleted_at);`,
	},
	{
		version: 3,
		name:    "create_engagements",
		up: `CREATE TABLE IF NOT EXISTS engagements (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			content_id BIGINT NOT NULL,
			content_type VARCHAR(20) NOT NULL,
			kind VARCHAR(20) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			platform VARCHAR(40),
			duration_seconds INTEGER,
			is_complete BOOLEAN,
			countable BOOLEAN
		);
		CREATE INDEX IF NOT EXISTS idx_engagements_user ON engagements (user_id);
		CREATE INDEX IF NOT EXISTS idx_engagements_content
			ON engagements (content_id, content_type, kind, created_at);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_engagements_tuple
			ON engagements (user_id, content_id, content_type, kind)
			WHERE kind IN ('like', 'bookmark', 'follow');`,
	},
	{
		version: 4,
		name:    "create_comments",
		up: `CREATE TABLE IF NOT EXISTS comments (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id),
			content_id BIGINT NOT NULL,
			content_type VARCHAR(20) NOT NULL,
			parent_id BIGINT REFERENCES comments(id),
			content TEXT NOT NULL,
			reactions TEXT NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			deleted_at TIMESTAMPTZ
		);
		CREATE INDEX IF NOT EXISTS idx_comments_content
			ON comments (content_id, content_type, created_at);
		CREATE INDEX IF NOT EXISTS idx_comments_parent_id ON comments (parent_id);
		CREATE INDEX IF NOT EXISTS idx_comments_deleted_at ON comments (deleted_at);`,
	},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/migrate <up|status>")
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return err
	}

	switch strings.ToLower(strings.TrimSpace(flag.Arg(0))) {
	case "up":
		return migrateUp(ctx, db, applied)
	case "status":
		for _, m := range migrations {
			state := "pending"
			if applied[m.version] {
				state = "applied"
			}
			log.Printf("%06d_%s: %s", m.version, m.name, state)
		}
		return nil
	default:
		return usage()
	}
}

func appliedVersions(ctx context.Context, db *sql.DB) (map[int]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

func migrateUp(ctx context.Context, db *sql.DB, applied map[int]bool) error {
	for _, m := range migrations {
		if applied[m.version] {
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.version, err)
		}
		if _, err := tx.ExecContext(ctx, m.up); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %06d_%s: %w", m.version, m.name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`,
			m.version, m.name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %06d_%s: %w", m.version, m.name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %06d_%s: %w", m.version, m.name, err)
		}
		log.Printf("applied %06d_%s", m.version, m.name)
	}
	log.Println("schema up to date")
	return nil
}
