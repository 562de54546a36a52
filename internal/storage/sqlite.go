package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"blocknotes/internal/domain"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect names a supported SQL backend.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
)

// Config selects and locates the relational backend.
type Config struct {
	Driver Dialect
	// DSN is the connection string for postgres and mysql.
	DSN string
	// Path is the database file for sqlite.
	Path string
}

// DB wraps a database/sql connection together with its dialect.
type DB struct {
	conn    *sql.DB
	dialect Dialect
}

// Open connects to the configured backend and runs migrations.
func Open(cfg Config) (*DB, error) {
	var (
		driverName string
		dsn        string
	)
	switch cfg.Driver {
	case DialectSQLite, "":
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
		cfg.Driver = DialectSQLite
		driverName = "sqlite"
		dsn = cfg.Path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_time_format=sqlite"
	case DialectPostgres:
		driverName = "postgres"
		dsn = cfg.DSN
	case DialectMySQL:
		driverName = "mysql"
		dsn = mysqlDSN(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}

	conn, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}
	if cfg.Driver == DialectSQLite {
		// SQLite only supports one writer; a single connection avoids SQLITE_BUSY.
		conn.SetMaxOpenConns(1)
	}

	db := &DB{conn: conn, dialect: cfg.Driver}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// mysqlDSN makes sure DATETIME columns scan into time.Time.
func mysqlDSN(dsn string) string {
	if strings.Contains(dsn, "parseTime=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&parseTime=true"
	}
	return dsn + "?parseTime=true"
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying database connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Dialect reports which backend the connection talks to.
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// Stores returns every domain store backed by this database.
func (db *DB) Stores() domain.Stores {
	return domain.Stores{
		Users:     NewUserStore(db),
		Sessions:  NewSessionStore(db),
		Documents: NewDocumentStore(db),
		Versions:  NewVersionStore(db),
		Websites:  NewWebsiteStore(db),
		Media:     NewMediaStore(db),
	}
}

// rebind rewrites ? placeholders into the dialect's positional form.
func (db *DB) rebind(query string) string {
	if db.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// mapError translates driver errors into domain errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "Duplicate entry") {
		return fmt.Errorf("%w: %s", domain.ErrConflict, msg)
	}
	return err
}
