package models

import (
	"database/sql"
	"time"
)

// Source is a configured RSS feed.
type Source struct {
	ID            int64        `db:"id"`
	Name          string       `db:"name"`
	URL           string       `db:"url"`
	SportHint     string       `db:"sport_hint"`
	Weight        int          `db:"weight"`
	Active        bool         `db:"active"`
	LastFetchedAt sql.NullTime `db:"last_fetched_at"`
	CreatedAt     time.Time    `db:"created_at"`
}
