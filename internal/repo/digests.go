package repo

import (
	"context"
	"fmt"

	"goalwire/bot/internal/models"
)

// InsertDigest stores a digest with its member articles in one transaction
// and marks those articles as digested.
func (r *Repo) InsertDigest(ctx context.Context, digest *models.Digest, articleIDs []int64) (int64, error) {
	if digest.PostedAt.IsZero() {
		digest.PostedAt = r.now().UTC()
	}
	digest.ArticleCount = len(articleIDs)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting digest transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO digests (
			sport, caption, article_count, telegram_message_id,
			telegram_chat_id, posted_at
		) VALUES (?, ?, ?, ?, ?, ?)`,
		digest.Sport, digest.Caption, digest.ArticleCount,
		digest.TelegramMessageID, digest.TelegramChatID, digest.PostedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("inserting digest: %w", err)
	}

	digestID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	now := r.now().UTC()
	for position, articleID := range articleIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO digest_items (digest_id, article_id, position)
			VALUES (?, ?, ?)`, digestID, articleID, position); err != nil {
			return 0, fmt.Errorf("inserting digest item: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE articles SET is_digested = 1, updated_at = ? WHERE id = ?`,
			now, articleID); err != nil {
			return 0, fmt.Errorf("marking article digested: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing digest: %w", err)
	}
	return digestID, nil
}
