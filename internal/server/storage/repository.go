package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"goalwire/bot/internal/database"
	"goalwire/bot/internal/models"
)

// ArticleRepository defines the read-only queries behind the status API.
type ArticleRepository interface {
	FetchArticles(ctx context.Context, limit int, since *time.Time, cursorTimestamp *time.Time, cursorID *int64) ([]models.Article, error)
	RecentPosts(ctx context.Context, since time.Time, limit int) ([]models.Post, error)
}

// sqlxRepository implements ArticleRepository using sqlx.
type sqlxRepository struct {
	db *database.DB
}

// NewRepository creates a new repository instance.
func NewRepository(db *database.DB) ArticleRepository {
	return &sqlxRepository{db: db}
}

// FetchArticles retrieves articles based on time or cursor.
func (r *sqlxRepository) FetchArticles(ctx context.Context, limit int, since *time.Time, cursorTimestamp *time.Time, cursorID *int64) ([]models.Article, error) {
	var articles []models.Article
	var query string
	var args []any

	// Consistent ordering is required for cursor pagination.
	const baseQuery = `SELECT * FROM articles `
	const orderBy = ` ORDER BY created_at ASC, id ASC LIMIT ?`

	if cursorTimestamp != nil && cursorID != nil {
		query = baseQuery + `WHERE (created_at > ?) OR (created_at = ? AND id > ?)` + orderBy
		args = append(args, cursorTimestamp.UTC(), cursorTimestamp.UTC(), *cursorID, limit)
	} else if since != nil {
		query = baseQuery + `WHERE created_at > ?` + orderBy
		args = append(args, since.UTC(), limit)
	} else {
		return nil, fmt.Errorf("either 'since' or cursor parameters must be provided")
	}

	err := r.db.SelectContext(ctx, &articles, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []models.Article{}, nil
		}
		return nil, fmt.Errorf("database query failed: %w", err)
	}

	return articles, nil
}

// RecentPosts lists published posts, newest first.
func (r *sqlxRepository) RecentPosts(ctx context.Context, since time.Time, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.SelectContext(ctx, &posts, `
		SELECT * FROM posts
		WHERE posted_at >= ?
		ORDER BY posted_at DESC
		LIMIT ?`, since.UTC(), limit)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []models.Post{}, nil
		}
		return nil, fmt.Errorf("recent posts query: %w", err)
	}
	return posts, nil
}
