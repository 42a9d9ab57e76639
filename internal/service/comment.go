package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/conduit/internal/apperror"
	"github.com/sakif/conduit/internal/model"
	"github.com/sakif/conduit/internal/repository"
)

const MaxCommentLength = 10000

// CommentService handles the comment thread under an article. Thin by
// design: comments are pass-through entities with no derived state.
type CommentService struct {
	comments repository.CommentRepository
	articles repository.ArticleRepository
	users    repository.UserRepository
	logger   *slog.Logger
}

func NewCommentService(
	comments repository.CommentRepository,
	articles repository.ArticleRepository,
	users repository.UserRepository,
	logger *slog.Logger,
) *CommentService {
	return &CommentService{
		comments: comments,
		articles: articles,
		users:    users,
		logger:   logger,
	}
}

// Create adds a comment by authorID to the article identified by slug.
func (s *CommentService) Create(ctx context.Context, slug, authorID, body string) (*model.CommentView, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperror.ValidationFailed("body", "comment body is required")
	}
	if len(body) > MaxCommentLength {
		return nil, apperror.ValidationFailed("body",
			fmt.Sprintf("comment body must be %d characters or less", MaxCommentLength))
	}

	article, err := s.articles.GetArticleBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{
		Body:      body,
		AuthorID:  authorID,
		ArticleID: article.ID,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		s.logger.Error("failed to create comment",
			slog.String("articleID", article.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	author, err := s.users.GetUserByID(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("loading comment author: %w", err)
	}

	return &model.CommentView{
		ID:        comment.ID,
		Body:      comment.Body,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
		Author:    *profileOf(author, false),
	}, nil
}

// List returns the article's comments with author summaries, oldest first.
func (s *CommentService) List(ctx context.Context, slug string) ([]model.CommentView, error) {
	article, err := s.articles.GetArticleBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	comments, err := s.comments.ListComments(ctx, article.ID)
	if err != nil {
		s.logger.Error("failed to list comments",
			slog.String("articleID", article.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing comments: %w", err)
	}

	return comments, nil
}
