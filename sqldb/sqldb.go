package sqldb

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/xo/dburl"
	_ "modernc.org/sqlite"
)

// MemoryURL selects an in-memory database which lives as long as the process.
const MemoryURL = "memory:"

// Open opens and pings a database given by a dburl url, e.g. "sqlite3:artigo.sqlite3", or MemoryURL.
func Open(dbArg string) (*sql.DB, error) {

	var driver, dsn string

	if dbArg == MemoryURL {
		driver = "sqlite"
		dsn = memoryDSN
	} else {
		dbURL, err := dburl.Parse(dbArg)
		if err != nil {
			return nil, fmt.Errorf("parsing database url: %w", err)
		}
		driver, dsn = dbURL.Driver, dbURL.DSN
		if driver == "sqlite3" {
			driver = "sqlite" // modernc.org/sqlite registers as "sqlite"
		}
		if driver != "sqlite" {
			return nil, fmt.Errorf("unsupported database driver: %s", dbURL.Driver)
		}
	}

	sqlDB, err := sql.Open(driver, WithTimeFormat(dsn))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if dsn == memoryDSN {
		// every connection would get its own database
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetConnMaxLifetime(0)
		sqlDB.SetConnMaxIdleTime(0)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return sqlDB, nil
}

const memoryDSN = ":memory:"

// WithTimeFormat makes modernc.org/sqlite write time.Time parameters in a format which the SQLite date functions
// understand. The session store computes julianday(expiry) from one.
func WithTimeFormat(dsn string) string {
	if strings.Contains(dsn, "_time_format=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_time_format=sqlite"
	}
	return dsn + "?_time_format=sqlite"
}

func mustPrepare(db *sql.DB, query string) *sql.Stmt {
	stmt, err := db.Prepare(query)
	if err != nil {
		panic(fmt.Sprintf("preparing %q: %v", query, err))
	}
	return stmt
}
