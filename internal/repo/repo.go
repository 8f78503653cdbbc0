// Package repo is the storage layer. All timestamps are stored in UTC;
// conversion to the editorial timezone happens in the callers that need it.
package repo

import (
	"time"

	"goalwire/bot/internal/database"
)

// Repo wraps the database with the queries the pipeline needs.
type Repo struct {
	db  *database.DB
	now func() time.Time
}

func New(db *database.DB) *Repo {
	return &Repo{db: db, now: time.Now}
}
