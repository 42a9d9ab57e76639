// Package repository declares the storage interfaces the service layer
// programs against. The sqlite subpackage provides the implementation;
// tests substitute in-memory fakes.
package repository

import (
	"context"

	"github.com/sakif/conduit/internal/model"
)

// ArticleFilter is the resolved predicate set for a listing request.
//
// The zero value means "no constraint". The service layer resolves
// name-based filters (author username, favoriter username) down to the
// identifier fields here before the store ever sees them; a filter that
// cannot be resolved never reaches the store — the service short-circuits
// to an empty page instead.
//
// The sqlite implementation turns this struct into one slice of conditions
// and builds BOTH the count query and the data query from that identical
// slice, so the returned total can never drift from the returned page.
type ArticleFilter struct {
	// Tag constrains to articles whose tag list contains this tag.
	Tag string
	// AuthorID constrains to articles owned by this author.
	AuthorID string
	// AuthorIDs constrains to articles owned by any of these authors
	// (feed mode). nil imposes no constraint; an empty non-nil slice is
	// never passed — the service short-circuits first.
	AuthorIDs []string
	// IDs constrains to this set of article ids (favoriter mode). Same
	// nil/empty convention as AuthorIDs.
	IDs []string
}

// Page carries limit/offset pagination. The store clamps Limit to 1..100
// (default 20) and Offset to >= 0.
type Page struct {
	Limit  int
	Offset int
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
}

// FollowRepository manages the directed follow edges consumed by profiles
// and the feed.
type FollowRepository interface {
	// AddFollow inserts the edge. Inserting an existing edge returns a
	// conflict error; callers that want idempotent behaviour pre-check
	// with IsFollowing.
	AddFollow(ctx context.Context, followerID, followeeID string) error
	// RemoveFollow deletes the edge if present. Removing an absent edge
	// is not an error; the boolean reports whether a row was deleted.
	RemoveFollow(ctx context.Context, followerID, followeeID string) (bool, error)
	IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error)
	// FolloweeIDs returns every user the given user follows. The feed
	// captures this set once per request and reuses it for both the
	// count and the data query.
	FolloweeIDs(ctx context.Context, followerID string) ([]string, error)
}

type ArticleRepository interface {
	CreateArticle(ctx context.Context, article *model.Article) error
	GetArticleBySlug(ctx context.Context, slug string) (*model.Article, error)
	// GetArticleView re-reads an article joined with its author and the
	// viewer-scoped derived fields. viewerID may be empty (anonymous).
	GetArticleView(ctx context.Context, articleID, viewerID string) (*model.ArticleView, error)
	// ListArticles runs the count query and the data query concurrently
	// from the same filter and returns the page plus the unpaginated
	// total. Rows are ordered newest-first with a stable tie-break.
	ListArticles(ctx context.Context, filter ArticleFilter, page Page, viewerID string) ([]model.ArticleView, int, error)
	UpdateArticle(ctx context.Context, article *model.Article) error
	DeleteArticle(ctx context.Context, id string) error
	// SlugExists reports whether any article other than excludeID uses
	// the slug. Pass excludeID="" to check against all articles.
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
}

type FavoriteRepository interface {
	// AddFavorite inserts the (userID, articleID) pair and increments the
	// article's denormalized counter in one transaction. A duplicate pair
	// returns a conflict error.
	AddFavorite(ctx context.Context, userID, articleID string) error
	// RemoveFavorite deletes the pair and decrements the counter in one
	// transaction. Deleting an absent pair returns an internal error:
	// callers are expected to have confirmed a favorited state.
	RemoveFavorite(ctx context.Context, userID, articleID string) error
	// FavoritedArticleIDs resolves a favoriter username to the set of
	// article ids they favorited. Unknown usernames yield an empty set.
	FavoritedArticleIDs(ctx context.Context, username string) ([]string, error)
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *model.Comment) error
	// ListComments returns an article's comments joined with their
	// author summaries, oldest first.
	ListComments(ctx context.Context, articleID string) ([]model.CommentView, error)
}
