package sqlite

import (
	"context"
	"fmt"

	"github.com/sakif/conduit/internal/apperror"
	"github.com/sakif/conduit/internal/repository"
)

// compile-time check that *DB implements repository.FavoriteRepository
var _ repository.FavoriteRepository = (*DB)(nil)

// AddFavorite inserts the (user, article) pair and bumps the article's
// denormalized counter in one transaction, so the counter always equals the
// relation's cardinality after the commit.
//
// A duplicate pair trips the composite primary key and maps to Conflict
// ("already favorited" is a caller mistake, not a server fault). An insert
// that succeeds without confirming a row breaks the persisted-favorite
// invariant and is reported as an internal error.
func (db *DB) AddFavorite(ctx context.Context, userID, articleID string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning favorite tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO favorites (user_id, article_id) VALUES (?, ?)`,
		userID, articleID,
	)
	if err != nil {
		if isUniqueViolation(err, "favorites.user_id") {
			return apperror.Conflict("article already favorited")
		}
		return fmt.Errorf("sqlite: inserting favorite: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.Internal("favorite insert confirmed no row")
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE articles SET favorites_count = favorites_count + 1 WHERE id = ?`,
		articleID,
	); err != nil {
		return fmt.Errorf("sqlite: incrementing favorites count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing favorite: %w", err)
	}
	return nil
}

// RemoveFavorite deletes the pair and decrements the counter in one
// transaction. Deleting a pair that was never there means the caller's view
// of the world is wrong in a way the API contract says cannot happen, so it
// surfaces as an internal error rather than an idempotent no-op.
func (db *DB) RemoveFavorite(ctx context.Context, userID, articleID string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning unfavorite tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = ? AND article_id = ?`,
		userID, articleID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting favorite: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.Internal("favorite delete affected no rows")
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE articles SET favorites_count = favorites_count - 1 WHERE id = ?`,
		articleID,
	); err != nil {
		return fmt.Errorf("sqlite: decrementing favorites count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing unfavorite: %w", err)
	}
	return nil
}

// FavoritedArticleIDs resolves a favoriter username to the article ids they
// favorited. An unknown username simply yields no rows — the caller treats
// an empty set as an unsatisfiable filter either way.
func (db *DB) FavoritedArticleIDs(ctx context.Context, username string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT f.article_id
		 FROM favorites f
		 JOIN users u ON u.id = f.user_id
		 WHERE u.username = ?`,
		username,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing favorites of %s: %w", username, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scanning favorite article id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating favorites: %w", err)
	}

	return ids, nil
}
