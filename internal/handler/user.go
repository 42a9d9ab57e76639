package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/conduit/internal/auth"
	"github.com/sakif/conduit/internal/model"
	"github.com/sakif/conduit/internal/service"
)

// UserHandler exposes registration, login, and the current-user account
// endpoints. Successful responses always carry a fresh token so clients
// never have to juggle a separate refresh call.
type UserHandler struct {
	users  *service.UserService
	tokens *auth.TokenService
	logger *slog.Logger
}

func NewUserHandler(users *service.UserService, tokens *auth.TokenService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, tokens: tokens, logger: logger}
}

type userEnvelope struct {
	User userResponse `json:"user"`
}

type userResponse struct {
	Email    string `json:"email"`
	Token    string `json:"token"`
	Username string `json:"username"`
	Bio      string `json:"bio"`
	Image    string `json:"image"`
}

type registerRequest struct {
	User struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	} `json:"user"`
}

type loginRequest struct {
	User struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	} `json:"user"`
}

type updateUserRequest struct {
	User struct {
		Email    *string `json:"email"`
		Username *string `json:"username"`
		Password *string `json:"password"`
		Bio      *string `json:"bio"`
		Image    *string `json:"image"`
	} `json:"user"`
}

// HandleRegister serves POST /api/users.
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid register JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	user, err := h.users.Register(r.Context(), req.User.Username, req.User.Email, req.User.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.writeUser(w, http.StatusCreated, user)
}

// HandleLogin serves POST /api/users/login.
func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid login JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	user, err := h.users.Login(r.Context(), req.User.Email, req.User.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.writeUser(w, http.StatusOK, user)
}

// HandleGetCurrent serves GET /api/user.
func (h *UserHandler) HandleGetCurrent(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	user, err := h.users.Get(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	h.writeUser(w, http.StatusOK, user)
}

// HandleUpdate serves PUT /api/user.
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid user update JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	user, err := h.users.Update(r.Context(), userID, service.UpdateUserInput{
		Email:    req.User.Email,
		Username: req.User.Username,
		Password: req.User.Password,
		Bio:      req.User.Bio,
		Image:    req.User.Image,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	h.writeUser(w, http.StatusOK, user)
}

func (h *UserHandler) writeUser(w http.ResponseWriter, status int, user *model.User) {
	token, err := h.tokens.Generate(user.ID)
	if err != nil {
		h.logger.Error("failed to generate token",
			slog.String("userID", user.ID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, status, userEnvelope{User: userResponse{
		Email:    user.Email,
		Token:    token,
		Username: user.Username,
		Bio:      user.Bio,
		Image:    user.Image,
	}})
}
