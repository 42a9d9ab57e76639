package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/conduit/internal/auth"
	"github.com/sakif/conduit/internal/model"
	"github.com/sakif/conduit/internal/service"
)

// ArticleHandler exposes article listing, the feed, article CRUD, and the
// favorite toggle.
//
// Identity comes from the auth middleware: RequireAuth-protected routes are
// guaranteed a userID in the context, OptionalAuth routes may or may not
// carry one. Handlers read it with auth.UserIDFromContext and pass it down
// as a plain string — the service layer never sees a request.
type ArticleHandler struct {
	articles *service.ArticleService
	logger   *slog.Logger
}

func NewArticleHandler(articles *service.ArticleService, logger *slog.Logger) *ArticleHandler {
	return &ArticleHandler{articles: articles, logger: logger}
}

// articleEnvelope wraps single-article responses; every article-returning
// endpoint uses the same shape.
type articleEnvelope struct {
	Article *model.ArticleView `json:"article"`
}

type articleListEnvelope struct {
	Articles      []model.ArticleView `json:"articles"`
	ArticlesCount int                 `json:"articlesCount"`
}

// createArticleRequest is the body of POST /api/articles. The outer
// "article" key matches what API clients send.
type createArticleRequest struct {
	Article struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Body        string   `json:"body"`
		TagList     []string `json:"tagList"`
	} `json:"article"`
}

// updateArticleRequest uses pointer fields so "absent" and "set to empty"
// stay distinguishable — the partial-update contract depends on it.
type updateArticleRequest struct {
	Article struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Body        *string `json:"body"`
	} `json:"article"`
}

// HandleList serves GET /api/articles: the global listing with optional
// tag/author/favorited filters and limit/offset pagination. Works for
// anonymous viewers; a logged-in viewer additionally gets favorited and
// following computed against their identity.
func (h *ArticleHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := auth.UserIDFromContext(r.Context())

	req := service.ListArticlesRequest{
		Tag:       r.URL.Query().Get("tag"),
		Author:    r.URL.Query().Get("author"),
		Favorited: r.URL.Query().Get("favorited"),
		Limit:     queryInt(r, "limit", 0),
		Offset:    queryInt(r, "offset", 0),
	}

	articles, total, err := h.articles.List(r.Context(), req, viewerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, articleListEnvelope{
		Articles:      articles,
		ArticlesCount: total,
	})
}

// HandleFeed serves GET /api/articles/feed: articles by followed authors,
// newest first. Auth required — there is no anonymous feed.
func (h *ArticleHandler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	articles, total, err := h.articles.Feed(r.Context(), userID,
		queryInt(r, "limit", 0), queryInt(r, "offset", 0))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, articleListEnvelope{
		Articles:      articles,
		ArticlesCount: total,
	})
}

// HandleCreate serves POST /api/articles.
func (h *ArticleHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req createArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid article JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	article, err := h.articles.Create(r.Context(), userID, service.CreateArticleInput{
		Title:       req.Article.Title,
		Description: req.Article.Description,
		Body:        req.Article.Body,
		TagList:     req.Article.TagList,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, articleEnvelope{Article: article})
}

// HandleUpdate serves PUT /api/articles/{slug}. Owner only.
func (h *ArticleHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	slug := r.PathValue("slug")

	var req updateArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid article JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	article, err := h.articles.Update(r.Context(), slug, userID, service.UpdateArticleInput{
		Title:       req.Article.Title,
		Description: req.Article.Description,
		Body:        req.Article.Body,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, articleEnvelope{Article: article})
}

// HandleDelete serves DELETE /api/articles/{slug}. Owner only; 204 on
// success.
func (h *ArticleHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	slug := r.PathValue("slug")

	if err := h.articles.Delete(r.Context(), slug, userID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleFavorite serves POST /api/articles/{slug}/favorite.
func (h *ArticleHandler) HandleFavorite(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	slug := r.PathValue("slug")

	article, err := h.articles.Favorite(r.Context(), slug, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, articleEnvelope{Article: article})
}

// HandleUnfavorite serves DELETE /api/articles/{slug}/favorite.
func (h *ArticleHandler) HandleUnfavorite(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	slug := r.PathValue("slug")

	article, err := h.articles.Unfavorite(r.Context(), slug, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, articleEnvelope{Article: article})
}
