package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/conduit/internal/auth"
	"github.com/sakif/conduit/internal/model"
	"github.com/sakif/conduit/internal/service"
)

// CommentHandler exposes the comment thread under an article.
type CommentHandler struct {
	comments *service.CommentService
	logger   *slog.Logger
}

func NewCommentHandler(comments *service.CommentService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, logger: logger}
}

type commentEnvelope struct {
	Comment *model.CommentView `json:"comment"`
}

type commentListEnvelope struct {
	Comments []model.CommentView `json:"comments"`
}

type createCommentRequest struct {
	Comment struct {
		Body string `json:"body"`
	} `json:"comment"`
}

// HandleCreate serves POST /api/articles/{slug}/comments.
func (h *CommentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	slug := r.PathValue("slug")

	var req createCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid comment JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	comment, err := h.comments.Create(r.Context(), slug, userID, req.Comment.Body)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, commentEnvelope{Comment: comment})
}

// HandleList serves GET /api/articles/{slug}/comments.
func (h *CommentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	comments, err := h.comments.List(r.Context(), slug)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, commentListEnvelope{Comments: comments})
}
