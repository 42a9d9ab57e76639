package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"golang.org/x/sync/errgroup"

	"github.com/sakif/conduit/internal/apperror"
	"github.com/sakif/conduit/internal/model"
	"github.com/sakif/conduit/internal/repository"
)

// compile-time check that *DB implements repository.ArticleRepository
var _ repository.ArticleRepository = (*DB)(nil)

// Listing page sizes. Offset pagination is fine at this scale; the clamp
// stops a caller from requesting the whole table in one page.
const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// cond is one typed condition of the predicate set: a SQL fragment over the
// aliased articles/users join plus its bind arguments.
//
// The whole predicate set is materialized as a []cond exactly once per
// listing request, and both the count query and the data query are built
// from that same slice. Keeping a single source for the WHERE clause is
// what guarantees articlesCount always describes the same population the
// page was drawn from.
type cond struct {
	expr string
	args []any
}

// articleConds translates a resolved filter into the predicate set. All
// present predicates are conjoined; absent filters add nothing.
func articleConds(filter repository.ArticleFilter) []cond {
	var conds []cond

	if filter.Tag != "" {
		// Membership test against the JSON tag array.
		conds = append(conds, cond{
			expr: `EXISTS (SELECT 1 FROM json_each(a.tag_list) WHERE json_each.value = ?)`,
			args: []any{filter.Tag},
		})
	}
	if filter.AuthorID != "" {
		conds = append(conds, cond{expr: `a.author_id = ?`, args: []any{filter.AuthorID}})
	}
	if filter.AuthorIDs != nil {
		conds = append(conds, inCond("a.author_id", filter.AuthorIDs))
	}
	if filter.IDs != nil {
		conds = append(conds, inCond("a.id", filter.IDs))
	}

	return conds
}

// inCond builds "column IN (?, ?, ...)". The service never passes an empty
// set (it short-circuits instead), but if one arrives it must stay
// unsatisfiable rather than degenerate into invalid SQL.
func inCond(column string, vals []string) cond {
	if len(vals) == 0 {
		return cond{expr: `1 = 0`}
	}
	args := make([]any, len(vals))
	for i, v := range vals {
		args[i] = v
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(vals)), ", ")
	return cond{
		expr: column + ` IN (` + placeholders + `)`,
		args: args,
	}
}

// whereClause renders the conjunction. An empty predicate set imposes no
// constraint.
func whereClause(conds []cond) (string, []any) {
	if len(conds) == 0 {
		return "", nil
	}
	exprs := make([]string, len(conds))
	var args []any
	for i, c := range conds {
		exprs[i] = c.expr
		args = append(args, c.args...)
	}
	return " WHERE " + strings.Join(exprs, " AND "), args
}

// articleViewColumns is the projection shared by every read that returns an
// ArticleView: the article row, the author summary from the users join, and
// the three viewer-derived fields.
//
// favorites_count is computed live from the favorites relation in the same
// pass rather than read from the denormalized column, so a page assembled
// while favorites are churning still reports the true cardinality.
// favorited/following are evaluated against the viewer id bound as the
// first two arguments; an anonymous viewer binds "" which matches no row,
// so both come back false.
const articleViewColumns = `
	a.slug, a.title, a.description, a.body, a.tag_list,
	a.created_at, a.updated_at,
	(SELECT COUNT(*) FROM favorites f WHERE f.article_id = a.id) AS favorites_count,
	EXISTS (SELECT 1 FROM favorites f WHERE f.article_id = a.id AND f.user_id = ?1) AS favorited,
	u.username, u.bio, u.image,
	EXISTS (SELECT 1 FROM follows fl WHERE fl.follower_id = ?1 AND fl.following_id = a.author_id) AS following`

// ListArticles runs the data query and the count query concurrently from
// the identical predicate set and combines the results. If either query
// fails the whole listing fails; no partial result is returned.
func (db *DB) ListArticles(ctx context.Context, filter repository.ArticleFilter, page repository.Page, viewerID string) ([]model.ArticleView, int, error) {
	limit := page.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := page.Offset
	if offset < 0 {
		offset = 0
	}

	conds := articleConds(filter)
	where, whereArgs := whereClause(conds)

	// Newest first. The id tie-break keeps the order stable when two
	// articles share a creation timestamp (xid is time-sortable).
	dataQuery := `SELECT ` + articleViewColumns + `
		 FROM articles a
		 JOIN users u ON u.id = a.author_id` + where + `
		 ORDER BY a.created_at DESC, a.id DESC
		 LIMIT ? OFFSET ?`
	dataArgs := append([]any{viewerID}, whereArgs...)
	dataArgs = append(dataArgs, limit, offset)

	// Identical joins and predicate set, no limit/offset.
	countQuery := `SELECT COUNT(*)
		 FROM articles a
		 JOIN users u ON u.id = a.author_id` + where
	countArgs := whereArgs

	var (
		views []model.ArticleView
		total int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := db.conn.QueryContext(gctx, dataQuery, dataArgs...)
		if err != nil {
			return fmt.Errorf("sqlite: listing articles: %w", err)
		}
		defer rows.Close()

		views = make([]model.ArticleView, 0, limit)
		for rows.Next() {
			view, err := scanArticleView(rows)
			if err != nil {
				return err
			}
			views = append(views, *view)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("sqlite: iterating articles: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := db.conn.QueryRowContext(gctx, countQuery, countArgs...).Scan(&total); err != nil {
			return fmt.Errorf("sqlite: counting articles: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	return views, total, nil
}

// GetArticleView re-reads a single article through the same projection the
// listing uses. Create/update/favorite responses come from here so their
// shape and counting semantics cannot drift from the listing's.
func (db *DB) GetArticleView(ctx context.Context, articleID, viewerID string) (*model.ArticleView, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+articleViewColumns+`
		 FROM articles a
		 JOIN users u ON u.id = a.author_id
		 WHERE a.id = ?2`,
		viewerID, articleID,
	)

	view, err := scanArticleView(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("article")
		}
		return nil, err
	}
	return view, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanArticleView(s scanner) (*model.ArticleView, error) {
	var (
		view    model.ArticleView
		tagJSON string
	)
	err := s.Scan(
		&view.Slug,
		&view.Title,
		&view.Description,
		&view.Body,
		&tagJSON,
		&view.CreatedAt,
		&view.UpdatedAt,
		&view.FavoritesCount,
		&view.Favorited,
		&view.Author.Username,
		&view.Author.Bio,
		&view.Author.Image,
		&view.Author.Following,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("sqlite: scanning article row: %w", err)
	}

	if err := json.Unmarshal([]byte(tagJSON), &view.TagList); err != nil {
		return nil, fmt.Errorf("sqlite: decoding tag list %q: %w", tagJSON, err)
	}
	if view.TagList == nil {
		view.TagList = []string{}
	}

	return &view, nil
}

// CreateArticle inserts a new article row. The slug UNIQUE constraint is
// the authority on uniqueness; a rejection maps to the same Conflict the
// service's pre-check produces, so a race between two creates with the same
// derived slug surfaces as a clean 409 instead of a 500.
func (db *DB) CreateArticle(ctx context.Context, article *model.Article) error {
	article.ID = xid.New().String()
	now := time.Now().UTC()
	article.CreatedAt = now
	article.UpdatedAt = now

	tagJSON, err := marshalTags(article.TagList)
	if err != nil {
		return err
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO articles (id, slug, title, description, body, tag_list, author_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		article.ID,
		article.Slug,
		article.Title,
		article.Description,
		article.Body,
		tagJSON,
		article.AuthorID,
		article.CreatedAt,
		article.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "articles.slug") {
			return apperror.Conflict("article with this slug already exists")
		}
		return fmt.Errorf("sqlite: inserting article %s: %w", article.Slug, err)
	}

	return nil
}

func (db *DB) GetArticleBySlug(ctx context.Context, slug string) (*model.Article, error) {
	var (
		a       model.Article
		tagJSON string
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, slug, title, description, body, tag_list, favorites_count, author_id, created_at, updated_at
		 FROM articles WHERE slug = ?`,
		slug,
	).Scan(
		&a.ID,
		&a.Slug,
		&a.Title,
		&a.Description,
		&a.Body,
		&tagJSON,
		&a.FavoritesCount,
		&a.AuthorID,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("article")
		}
		return nil, fmt.Errorf("sqlite: getting article %s: %w", slug, err)
	}

	if err := json.Unmarshal([]byte(tagJSON), &a.TagList); err != nil {
		return nil, fmt.Errorf("sqlite: decoding tag list %q: %w", tagJSON, err)
	}
	if a.TagList == nil {
		a.TagList = []string{}
	}

	return &a, nil
}

// UpdateArticle writes the merged row back. The service has already applied
// the partial update and re-derived the slug if the title changed.
func (db *DB) UpdateArticle(ctx context.Context, article *model.Article) error {
	article.UpdatedAt = time.Now().UTC()

	tagJSON, err := marshalTags(article.TagList)
	if err != nil {
		return err
	}

	result, err := db.conn.ExecContext(ctx,
		`UPDATE articles
		 SET slug = ?, title = ?, description = ?, body = ?, tag_list = ?, updated_at = ?
		 WHERE id = ?`,
		article.Slug,
		article.Title,
		article.Description,
		article.Body,
		tagJSON,
		article.UpdatedAt,
		article.ID,
	)
	if err != nil {
		if isUniqueViolation(err, "articles.slug") {
			return apperror.Conflict("article with this slug already exists")
		}
		return fmt.Errorf("sqlite: updating article %s: %w", article.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("article")
	}

	return nil
}

// DeleteArticle removes the row. Favorites and comments referencing it go
// with it via ON DELETE CASCADE.
func (db *DB) DeleteArticle(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM articles WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting article %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("article")
	}

	return nil
}

// SlugExists reports whether the slug is taken by an article other than
// excludeID. An update excludes the article being updated so keeping its
// own slug never reads as a collision.
func (db *DB) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var exists bool
	err := db.conn.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM articles WHERE slug = ? AND id <> ?)`,
		slug, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking slug %s: %w", slug, err)
	}
	return exists, nil
}

func marshalTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("sqlite: encoding tag list: %w", err)
	}
	return string(b), nil
}
