// Package service contains the business logic layer.
//
// Handlers parse HTTP and delegate here; services validate, enforce
// ownership and uniqueness rules, and orchestrate the repositories. They
// accept plain parameters and return models plus apperror-typed failures —
// no HTTP types on either side.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/sakif/conduit/internal/apperror"
	"github.com/sakif/conduit/internal/model"
	"github.com/sakif/conduit/internal/repository"
)

const (
	MaxTitleLength = 200
	MaxTagLength   = 100
)

var (
	nonWordChars   = regexp.MustCompile(`[^\w\s-]`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
	dashRuns       = regexp.MustCompile(`-+`)
)

// Slugify derives a URL-safe slug from an article title: lower-case,
// trimmed, punctuation stripped, whitespace collapsed to single dashes,
// repeated dashes collapsed. The derivation is deterministic — the same
// title always yields the same slug, which is why uniqueness has to be
// checked against the store rather than assumed.
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = nonWordChars.ReplaceAllString(slug, "")
	slug = whitespaceRuns.ReplaceAllString(slug, "-")
	slug = dashRuns.ReplaceAllString(slug, "-")
	return slug
}

// ListArticlesRequest is a listing request before name resolution: the
// optional filters exactly as the query string supplied them.
type ListArticlesRequest struct {
	Tag       string
	Author    string
	Favorited string
	Limit     int
	Offset    int
}

type CreateArticleInput struct {
	Title       string
	Description string
	Body        string
	TagList     []string
}

// UpdateArticleInput carries a partial update: nil means "leave this field
// alone", which is distinct from a pointer to the empty string.
type UpdateArticleInput struct {
	Title       *string
	Description *string
	Body        *string
}

// ArticleService owns article listing, the personalized feed, article CRUD,
// and the favorite toggle.
type ArticleService struct {
	articles  repository.ArticleRepository
	favorites repository.FavoriteRepository
	follows   repository.FollowRepository
	users     repository.UserRepository
	logger    *slog.Logger
}

func NewArticleService(
	articles repository.ArticleRepository,
	favorites repository.FavoriteRepository,
	follows repository.FollowRepository,
	users repository.UserRepository,
	logger *slog.Logger,
) *ArticleService {
	return &ArticleService{
		articles:  articles,
		favorites: favorites,
		follows:   follows,
		users:     users,
		logger:    logger,
	}
}

// List returns one page of articles matching the request's filters plus the
// total count of matches, enriched for viewerID (may be empty).
//
// Name-based filters resolve first. If any of them fails to resolve — the
// author doesn't exist, the favoriter favorited nothing — the predicate set
// is unsatisfiable and we answer an empty zero-count page without running
// an article query. Falling through to an unfiltered listing here would be
// far worse than an empty answer.
func (s *ArticleService) List(ctx context.Context, req ListArticlesRequest, viewerID string) ([]model.ArticleView, int, error) {
	filter, err := s.buildFilter(ctx, req.Tag, req.Author, req.Favorited)
	if err != nil {
		return nil, 0, err
	}
	if filter == nil {
		return []model.ArticleView{}, 0, nil
	}

	views, total, err := s.articles.ListArticles(ctx, *filter,
		repository.Page{Limit: req.Limit, Offset: req.Offset}, viewerID)
	if err != nil {
		s.logger.Error("failed to list articles", slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("listing articles: %w", err)
	}

	return views, total, nil
}

// buildFilter resolves the name-based filters into an ArticleFilter.
// A nil filter (with nil error) means the predicate set is unsatisfiable.
// The lookups are the only store access; nothing here mutates state.
func (s *ArticleService) buildFilter(ctx context.Context, tag, author, favorited string) (*repository.ArticleFilter, error) {
	var filter repository.ArticleFilter

	if tag = strings.TrimSpace(tag); tag != "" {
		filter.Tag = tag
	}

	if author = strings.TrimSpace(author); author != "" {
		user, err := s.users.GetUserByUsername(ctx, author)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				return nil, nil
			}
			return nil, fmt.Errorf("resolving author filter: %w", err)
		}
		filter.AuthorID = user.ID
	}

	if favorited = strings.TrimSpace(favorited); favorited != "" {
		ids, err := s.favorites.FavoritedArticleIDs(ctx, favorited)
		if err != nil {
			return nil, fmt.Errorf("resolving favorited filter: %w", err)
		}
		if len(ids) == 0 {
			return nil, nil
		}
		filter.IDs = ids
	}

	return &filter, nil
}

// Feed returns one page of articles by authors the viewer follows, newest
// first. Feed requires an authenticated viewer — the handler guarantees a
// non-empty viewerID.
//
// The followee set is captured once and used for both the count and the
// data query of this request, so a concurrent unfollow can't make the page
// and its total disagree. A viewer following nobody gets the empty page
// immediately, with no article query issued.
func (s *ArticleService) Feed(ctx context.Context, viewerID string, limit, offset int) ([]model.ArticleView, int, error) {
	followeeIDs, err := s.follows.FolloweeIDs(ctx, viewerID)
	if err != nil {
		return nil, 0, fmt.Errorf("resolving followees: %w", err)
	}
	if len(followeeIDs) == 0 {
		return []model.ArticleView{}, 0, nil
	}

	views, total, err := s.articles.ListArticles(ctx,
		repository.ArticleFilter{AuthorIDs: followeeIDs},
		repository.Page{Limit: limit, Offset: offset}, viewerID)
	if err != nil {
		s.logger.Error("failed to list feed",
			slog.String("userID", viewerID),
			slog.String("error", err.Error()),
		)
		return nil, 0, fmt.Errorf("listing feed: %w", err)
	}

	return views, total, nil
}

// Create validates the input, derives the slug, and inserts the article.
//
// The insert path doesn't carry the author summary, so the response is a
// re-read of the fresh row joined with its author — the same projection
// every other article response uses.
func (s *ArticleService) Create(ctx context.Context, authorID string, in CreateArticleInput) (*model.ArticleView, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "title is required")
	}
	if len(title) > MaxTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}
	tags, err := normalizeTags(in.TagList)
	if err != nil {
		return nil, err
	}

	slug := Slugify(title)
	if slug == "" {
		return nil, apperror.ValidationFailed("title", "title must contain at least one word character")
	}

	// Courtesy pre-check for a clean conflict message; the store's UNIQUE
	// constraint still decides the race between two identical titles.
	taken, err := s.articles.SlugExists(ctx, slug, "")
	if err != nil {
		return nil, fmt.Errorf("checking slug: %w", err)
	}
	if taken {
		return nil, apperror.Conflict("article with this slug already exists")
	}

	article := &model.Article{
		Slug:        slug,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Body:        in.Body,
		TagList:     tags,
		AuthorID:    authorID,
	}
	if err := s.articles.CreateArticle(ctx, article); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		s.logger.Error("failed to create article",
			slog.String("slug", slug),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating article: %w", err)
	}

	s.logger.Info("article created",
		slog.String("id", article.ID),
		slog.String("slug", article.Slug),
		slog.String("authorID", authorID),
	)

	return s.articles.GetArticleView(ctx, article.ID, authorID)
}

// Update applies a partial update to the requester's own article. Only the
// fields the caller supplied change; a changed title re-derives the slug
// and re-checks uniqueness against every *other* article, so keeping the
// same title (or a title that maps to the same slug) never conflicts with
// itself.
func (s *ArticleService) Update(ctx context.Context, slug, requesterID string, in UpdateArticleInput) (*model.ArticleView, error) {
	article, err := s.articles.GetArticleBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if article.AuthorID != requesterID {
		return nil, apperror.Forbidden("you are not the author of this article")
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apperror.ValidationFailed("title", "title is required")
		}
		if len(title) > MaxTitleLength {
			return nil, apperror.ValidationFailed("title",
				fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
		}

		newSlug := Slugify(title)
		if newSlug == "" {
			return nil, apperror.ValidationFailed("title", "title must contain at least one word character")
		}
		if newSlug != article.Slug {
			taken, err := s.articles.SlugExists(ctx, newSlug, article.ID)
			if err != nil {
				return nil, fmt.Errorf("checking slug: %w", err)
			}
			if taken {
				return nil, apperror.Conflict("article with this slug already exists")
			}
		}
		article.Title = title
		article.Slug = newSlug
	}
	if in.Description != nil {
		article.Description = strings.TrimSpace(*in.Description)
	}
	if in.Body != nil {
		article.Body = *in.Body
	}

	if err := s.articles.UpdateArticle(ctx, article); err != nil {
		if errors.Is(err, apperror.ErrConflict) || errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		s.logger.Error("failed to update article",
			slog.String("id", article.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating article: %w", err)
	}

	s.logger.Info("article updated",
		slog.String("id", article.ID),
		slog.String("slug", article.Slug),
	)

	return s.articles.GetArticleView(ctx, article.ID, requesterID)
}

// Delete removes the requester's own article. Favorites and comments go
// with it at the storage layer.
func (s *ArticleService) Delete(ctx context.Context, slug, requesterID string) error {
	article, err := s.articles.GetArticleBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if article.AuthorID != requesterID {
		return apperror.Forbidden("you are not the author of this article")
	}

	if err := s.articles.DeleteArticle(ctx, article.ID); err != nil {
		return err
	}

	s.logger.Info("article deleted",
		slog.String("id", article.ID),
		slog.String("slug", article.Slug),
	)
	return nil
}

// Favorite records userID's favorite on the article and returns the
// article view reflecting it: favorited=true and the count one above the
// article's prior value. A duplicate favorite is the caller's error
// (Conflict), not a silent no-op.
func (s *ArticleService) Favorite(ctx context.Context, slug, userID string) (*model.ArticleView, error) {
	article, err := s.articles.GetArticleBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if err := s.favorites.AddFavorite(ctx, userID, article.ID); err != nil {
		if errors.Is(err, apperror.ErrConflict) || errors.Is(err, apperror.ErrInternal) {
			return nil, err
		}
		return nil, fmt.Errorf("favoriting article: %w", err)
	}

	return s.articles.GetArticleView(ctx, article.ID, userID)
}

// Unfavorite removes userID's favorite from the article. Removing a
// favorite that isn't there means the caller's state is out of step with
// ours, which the contract treats as an internal fault rather than an
// idempotent success.
func (s *ArticleService) Unfavorite(ctx context.Context, slug, userID string) (*model.ArticleView, error) {
	article, err := s.articles.GetArticleBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if err := s.favorites.RemoveFavorite(ctx, userID, article.ID); err != nil {
		if errors.Is(err, apperror.ErrInternal) {
			return nil, err
		}
		return nil, fmt.Errorf("unfavoriting article: %w", err)
	}

	return s.articles.GetArticleView(ctx, article.ID, userID)
}

// normalizeTags trims each tag and drops empties; nil in, empty list out.
func normalizeTags(tags []string) ([]string, error) {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if len(tag) > MaxTagLength {
			return nil, apperror.ValidationFailed("tagList",
				fmt.Sprintf("tags must be %d characters or less", MaxTagLength))
		}
		out = append(out, tag)
	}
	return out, nil
}
