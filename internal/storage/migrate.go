package storage

import (
	"fmt"
	"strings"
)

type columnTypes struct {
	ID        string
	Short     string
	Text      string
	Timestamp string
}

func (db *DB) columnTypes() columnTypes {
	switch db.dialect {
	case DialectPostgres:
		return columnTypes{ID: "VARCHAR(64)", Short: "VARCHAR(512)", Text: "TEXT", Timestamp: "TIMESTAMPTZ"}
	case DialectMySQL:
		return columnTypes{ID: "VARCHAR(64)", Short: "VARCHAR(512)", Text: "LONGTEXT", Timestamp: "DATETIME(6)"}
	default:
		return columnTypes{ID: "TEXT", Short: "TEXT", Text: "TEXT", Timestamp: "DATETIME"}
	}
}

func (db *DB) migrations() []string {
	t := db.columnTypes()
	r := strings.NewReplacer("{id}", t.ID, "{short}", t.Short, "{text}", t.Text, "{ts}", t.Timestamp)

	tables := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id {id} PRIMARY KEY,
			email {short} NOT NULL,
			password_hash {short} NOT NULL,
			display_name {short} NOT NULL,
			avatar_url {short} NOT NULL,
			settings_json {text} NOT NULL,
			created_at {ts} NOT NULL,
			updated_at {ts} NOT NULL,
			UNIQUE (email)
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			token {id} PRIMARY KEY,
			user_id {id} NOT NULL,
			created_at {ts} NOT NULL,
			expires_at {ts} NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS documents (
			id {id} PRIMARY KEY,
			user_id {id} NOT NULL,
			title {short} NOT NULL,
			content {text} NOT NULL,
			markdown_content {text} NOT NULL,
			parent_id {id} NOT NULL,
			is_published BOOLEAN NOT NULL,
			published_url {short} NOT NULL,
			published_slug {short} NOT NULL,
			custom_domain {short} NOT NULL,
			seo_title {short} NOT NULL,
			seo_description {text} NOT NULL,
			cover_image_url {short} NOT NULL,
			icon_emoji {short} NOT NULL,
			position INTEGER NOT NULL,
			created_at {ts} NOT NULL,
			updated_at {ts} NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS document_versions (
			id {id} PRIMARY KEY,
			document_id {id} NOT NULL,
			content {text} NOT NULL,
			markdown_content {text} NOT NULL,
			version_number INTEGER NOT NULL,
			created_at {ts} NOT NULL,
			created_by {id} NOT NULL,
			UNIQUE (document_id, version_number)
		)`,
		`CREATE TABLE IF NOT EXISTS websites (
			id {id} PRIMARY KEY,
			user_id {id} NOT NULL,
			name {short} NOT NULL,
			description {text} NOT NULL,
			custom_domain {short} NOT NULL,
			subdomain {short} NOT NULL,
			theme_config {text} NOT NULL,
			is_active BOOLEAN NOT NULL,
			created_at {ts} NOT NULL,
			updated_at {ts} NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS website_pages (
			id {id} PRIMARY KEY,
			website_id {id} NOT NULL,
			document_id {id} NOT NULL,
			slug {short} NOT NULL,
			is_homepage BOOLEAN NOT NULL,
			position INTEGER NOT NULL,
			created_at {ts} NOT NULL,
			UNIQUE (website_id, slug)
		)`,
		`CREATE TABLE IF NOT EXISTS media_files (
			id {id} PRIMARY KEY,
			user_id {id} NOT NULL,
			document_id {id} NOT NULL,
			filename {short} NOT NULL,
			original_filename {short} NOT NULL,
			file_size BIGINT NOT NULL,
			mime_type {short} NOT NULL,
			storage_path {short} NOT NULL,
			public_url {short} NOT NULL,
			alt_text {short} NOT NULL,
			created_at {ts} NOT NULL
		)`,
	}

	indexes := [][2]string{
		{"idx_sessions_user", "sessions(user_id)"},
		{"idx_documents_user", "documents(user_id)"},
		{"idx_documents_slug", "documents(published_slug)"},
		{"idx_documents_updated", "documents(updated_at)"},
		{"idx_websites_user", "websites(user_id)"},
		{"idx_media_user", "media_files(user_id)"},
	}

	out := make([]string, 0, len(tables)+len(indexes))
	for _, m := range tables {
		out = append(out, r.Replace(m))
	}
	for _, idx := range indexes {
		if db.dialect == DialectMySQL {
			// MySQL has no CREATE INDEX IF NOT EXISTS; duplicates are tolerated in migrate.
			out = append(out, fmt.Sprintf("CREATE INDEX %s ON %s", idx[0], idx[1]))
			continue
		}
		out = append(out, fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s", idx[0], idx[1]))
	}
	return out
}

func (db *DB) migrate() error {
	for _, m := range db.migrations() {
		if _, err := db.conn.Exec(m); err != nil {
			if db.dialect == DialectMySQL && strings.Contains(err.Error(), "Duplicate key name") {
				continue
			}
			head := m
			if len(head) > 40 {
				head = head[:40]
			}
			return fmt.Errorf("migration failed: %s: %w", head, err)
		}
	}
	return nil
}
