package sqlite

import (
	"context"
	"fmt"

	"github.com/sakif/conduit/internal/apperror"
	"github.com/sakif/conduit/internal/repository"
)

// compile-time check that *DB implements repository.FollowRepository
var _ repository.FollowRepository = (*DB)(nil)

// AddFollow inserts a follow edge. The composite primary key rejects a
// duplicate edge; two concurrent follow requests resolve here rather than
// through the service's pre-check.
func (db *DB) AddFollow(ctx context.Context, followerID, followeeID string) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO follows (follower_id, following_id) VALUES (?, ?)`,
		followerID, followeeID,
	)
	if err != nil {
		if isUniqueViolation(err, "follows.follower_id") {
			return apperror.Conflict("already following this profile")
		}
		return fmt.Errorf("sqlite: inserting follow %s -> %s: %w", followerID, followeeID, err)
	}
	return nil
}

// RemoveFollow deletes a follow edge. An absent edge is not an error; the
// returned boolean tells the caller whether anything changed.
func (db *DB) RemoveFollow(ctx context.Context, followerID, followeeID string) (bool, error) {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = ? AND following_id = ?`,
		followerID, followeeID,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: deleting follow %s -> %s: %w", followerID, followeeID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

func (db *DB) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	var following bool
	err := db.conn.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM follows WHERE follower_id = ? AND following_id = ?
		 )`,
		followerID, followeeID,
	).Scan(&following)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking follow %s -> %s: %w", followerID, followeeID, err)
	}
	return following, nil
}

// FolloweeIDs returns the full set of users the given user follows, for the
// feed to capture once per request.
func (db *DB) FolloweeIDs(ctx context.Context, followerID string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT following_id FROM follows WHERE follower_id = ?`,
		followerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing followees of %s: %w", followerID, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scanning followee id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating followees: %w", err)
	}

	return ids, nil
}
