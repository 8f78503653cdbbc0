package models

import (
	"database/sql"
	"time"
)

// Post types stored in the posts table.
const (
	PostTypeSingle = "single"
	PostTypeDigest = "digest"
)

// Post records a published Telegram message.
type Post struct {
	ID                int64          `db:"id"`
	ArticleID         sql.NullInt64  `db:"article_id"`
	TelegramMessageID sql.NullInt64  `db:"telegram_message_id"`
	TelegramChatID    sql.NullString `db:"telegram_chat_id"`
	Caption           string         `db:"caption"`
	ImagePath         sql.NullString `db:"image_path"`
	Sport             string         `db:"sport"`
	PostType          string         `db:"post_type"`
	PostedAt          time.Time      `db:"posted_at"`
}

// Digest groups several mid-score articles into one published message.
type Digest struct {
	ID                int64          `db:"id"`
	Sport             string         `db:"sport"`
	Caption           string         `db:"caption"`
	ArticleCount      int            `db:"article_count"`
	TelegramMessageID sql.NullInt64  `db:"telegram_message_id"`
	TelegramChatID    sql.NullString `db:"telegram_chat_id"`
	PostedAt          time.Time      `db:"posted_at"`
}

// DailyStats aggregates per-day counters keyed by UTC date.
type DailyStats struct {
	Date               string    `db:"date"`
	PostCount          int       `db:"post_count"`
	DigestCount        int       `db:"digest_count"`
	ArticlesFetched    int       `db:"articles_fetched"`
	ArticlesDuplicated int       `db:"articles_duplicated"`
	UpdatedAt          time.Time `db:"updated_at"`
}
