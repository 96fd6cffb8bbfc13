package rates

import (
	"database/sql"
	"time"

	apperrors "github.com/tokenlens/tokenlens/core/errors"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
)

// Cache persists the last fetched rate table in a small SQLite
// database so offline runs can reuse it.
type Cache struct {
	db *sql.DB
}

const cacheSchema = `
CREATE TABLE IF NOT EXISTS rates (
	code       TEXT PRIMARY KEY,
	rate       REAL NOT NULL,
	fetched_at INTEGER NOT NULL
);`

// OpenCache opens (creating if needed) the rate cache at path.
func OpenCache(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, apperrors.Wrap(err, "opening rate cache")
	}
	if _, err := db.Exec(cacheSchema); err != nil {
		db.Close()
		return nil, apperrors.Wrap(err, "initializing rate cache schema")
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Save replaces the cached table.
func (c *Cache) Save(rates map[string]float64, fetchedAt time.Time) error {
	tx, err := c.db.Begin()
	if err != nil {
		return apperrors.Wrap(err, "starting rate cache transaction")
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM rates`); err != nil {
		return apperrors.Wrap(err, "clearing rate cache")
	}

	stmt, err := tx.Prepare(`INSERT INTO rates (code, rate, fetched_at) VALUES (?, ?, ?)`)
	if err != nil {
		return apperrors.Wrap(err, "preparing rate insert")
	}
	defer stmt.Close()

	ts := fetchedAt.Unix()
	for code, rate := range rates {
		if rate <= 0 {
			continue
		}
		if _, err := stmt.Exec(code, rate, ts); err != nil {
			return apperrors.Wrapf(err, "caching rate %s", code)
		}
	}
	return tx.Commit()
}

// Load returns the cached table and when it was fetched.
func (c *Cache) Load() (map[string]float64, time.Time, error) {
	rows, err := c.db.Query(`SELECT code, rate, fetched_at FROM rates`)
	if err != nil {
		return nil, time.Time{}, apperrors.Wrap(err, "reading rate cache")
	}
	defer rows.Close()

	rates := make(map[string]float64)
	var fetchedAt time.Time
	for rows.Next() {
		var code string
		var rate float64
		var ts int64
		if err := rows.Scan(&code, &rate, &ts); err != nil {
			return nil, time.Time{}, apperrors.Wrap(err, "scanning rate cache row")
		}
		rates[code] = rate
		fetchedAt = time.Unix(ts, 0).UTC()
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, apperrors.Wrap(err, "iterating rate cache")
	}
	if len(rates) == 0 {
		return nil, time.Time{}, apperrors.NewNotFound("cached rates", "")
	}
	return rates, fetchedAt, nil
}
