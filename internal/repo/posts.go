package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"goalwire/bot/internal/models"
)

// InsertPost records a published message.
func (r *Repo) InsertPost(ctx context.Context, post *models.Post) (int64, error) {
	if post.PostedAt.IsZero() {
		post.PostedAt = r.now().UTC()
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO posts (
			article_id, telegram_message_id, telegram_chat_id, caption,
			image_path, sport, post_type, posted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		post.ArticleID, post.TelegramMessageID, post.TelegramChatID,
		post.Caption, post.ImagePath, post.Sport, post.PostType, post.PostedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("inserting post: %w", err)
	}
	return res.LastInsertId()
}

// CountPostsSince counts posts published at or after the given time.
func (r *Repo) CountPostsSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM posts WHERE posted_at >= ?`, since.UTC())
	if err != nil {
		return 0, fmt.Errorf("counting posts: %w", err)
	}
	return count, nil
}

// LastPostTimeBySport returns the newest post time for one sport, or nil
// when the sport has never been posted.
func (r *Repo) LastPostTimeBySport(ctx context.Context, sport string) (*time.Time, error) {
	var postedAt time.Time
	err := r.db.GetContext(ctx, &postedAt, `
		SELECT posted_at FROM posts
		WHERE sport = ?
		ORDER BY posted_at DESC
		LIMIT 1`, sport)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last post lookup: %w", err)
	}
	return &postedAt, nil
}

// RecentPostTitles returns the article titles behind recent posts, used for
// the repetition penalty.
func (r *Repo) RecentPostTitles(ctx context.Context, since time.Time) ([]string, error) {
	var titles []string
	err := r.db.SelectContext(ctx, &titles, `
		SELECT a.title FROM posts p
		JOIN articles a ON a.id = p.article_id
		WHERE p.posted_at >= ?
		ORDER BY p.posted_at DESC`, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("recent post titles query: %w", err)
	}
	return titles, nil
}
