// ABOUTME: Database schema definitions
// ABOUTME: Creates users, posts, meta, terms, links, options and submission log tables
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_login TEXT NOT NULL UNIQUE COLLATE NOCASE,
	user_email TEXT NOT NULL UNIQUE COLLATE NOCASE,
	user_pass TEXT NOT NULL,
	display_name TEXT NOT NULL DEFAULT '',
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	role TEXT NOT NULL,
	activation_key TEXT,
	activation_key_at DATETIME,
	registered_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS posts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	guid TEXT NOT NULL UNIQUE,
	post_type TEXT NOT NULL,
	post_title TEXT NOT NULL DEFAULT '',
	post_author INTEGER,
	post_status TEXT NOT NULL DEFAULT 'publish',
	post_content TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (post_author) REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS idx_posts_type_title ON posts(post_type, post_title);

CREATE TABLE IF NOT EXISTS postmeta (
	post_id INTEGER NOT NULL,
	meta_key TEXT NOT NULL,
	meta_value TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (post_id, meta_key),
	FOREIGN KEY (post_id) REFERENCES posts(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_postmeta_key_value ON postmeta(meta_key, meta_value);

CREATE TABLE IF NOT EXISTS post_terms (
	post_id INTEGER NOT NULL,
	taxonomy TEXT NOT NULL,
	term TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (post_id, taxonomy, term),
	FOREIGN KEY (post_id) REFERENCES posts(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS post_links (
	post_id INTEGER NOT NULL,
	relation TEXT NOT NULL,
	child_id INTEGER NOT NULL,
	position INTEGER NOT NULL,
	UNIQUE(post_id, relation, child_id),
	FOREIGN KEY (post_id) REFERENCES posts(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_post_links_post ON post_links(post_id, relation, position);

CREATE TABLE IF NOT EXISTS options (
	name TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS submissions (
	id TEXT PRIMARY KEY,
	form_name TEXT NOT NULL,
	fields TEXT NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('received', 'processed', 'failed', 'ignored')),
	error TEXT,
	result TEXT,
	received_at DATETIME NOT NULL,
	processed_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_submissions_status ON submissions(status);
CREATE INDEX IF NOT EXISTS idx_submissions_form ON submissions(form_name);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
