package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/conduit/internal/apperror"
	"github.com/sakif/conduit/internal/auth"
	"github.com/sakif/conduit/internal/model"
	"github.com/sakif/conduit/internal/repository"
)

const (
	MaxUsernameLength = 100
	MaxEmailLength    = 255
	MinPasswordLength = 8
)

// UpdateUserInput carries a partial profile update: nil means "leave this
// field alone".
type UpdateUserInput struct {
	Email    *string
	Username *string
	Password *string
	Bio      *string
	Image    *string
}

// UserService handles registration, login, and account updates.
type UserService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewUserService(users repository.UserRepository, passwords *auth.PasswordService, logger *slog.Logger) *UserService {
	return &UserService{
		users:     users,
		passwords: passwords,
		logger:    logger,
	}
}

// Register creates a new account. Email and username must both be free;
// the pre-check gives the friendly message, the store's UNIQUE constraints
// decide any race.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))

	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if len(password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, apperror.Conflict("user with this email or username already exists")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("checking email: %w", err)
	}
	if _, err := s.users.GetUserByUsername(ctx, username); err == nil {
		return nil, apperror.Conflict("user with this email or username already exists")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("checking username: %w", err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", "password is not usable")
	}

	user := &model.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		s.logger.Error("failed to create user",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("id", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Login verifies the credentials and returns the account.
//
// A missing account and a wrong password return the same Unauthorized
// message, so a probe can't distinguish "no such email" from "bad
// password".
func (s *UserService) Login(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("invalid email or password")
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthorized("invalid email or password")
	}

	s.logger.Info("user logged in", slog.String("id", user.ID))
	return user, nil
}

// Get returns the account by its id (from the token's subject claim).
func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	return s.users.GetUserByID(ctx, id)
}

// Update applies a partial update to the account. Changing email or
// username re-checks availability against all other accounts; a changed
// password is re-hashed, never stored raw.
func (s *UserService) Update(ctx context.Context, id string, in UpdateUserInput) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*in.Email))
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		if email != user.Email {
			if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
				return nil, apperror.Conflict("email is already taken")
			} else if !errors.Is(err, apperror.ErrNotFound) {
				return nil, fmt.Errorf("checking email: %w", err)
			}
			user.Email = email
		}
	}

	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if err := validateUsername(username); err != nil {
			return nil, err
		}
		if username != user.Username {
			if _, err := s.users.GetUserByUsername(ctx, username); err == nil {
				return nil, apperror.Conflict("username is already taken")
			} else if !errors.Is(err, apperror.ErrNotFound) {
				return nil, fmt.Errorf("checking username: %w", err)
			}
			user.Username = username
		}
	}

	if in.Password != nil {
		if len(*in.Password) < MinPasswordLength {
			return nil, apperror.ValidationFailed("password",
				fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
		}
		hash, err := s.passwords.Hash(*in.Password)
		if err != nil {
			return nil, apperror.ValidationFailed("password", "password is not usable")
		}
		user.PasswordHash = hash
	}

	if in.Bio != nil {
		user.Bio = strings.TrimSpace(*in.Bio)
	}
	if in.Image != nil {
		user.Image = strings.TrimSpace(*in.Image)
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		s.logger.Error("failed to update user",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating user: %w", err)
	}

	s.logger.Info("user updated", slog.String("id", user.ID))
	return user, nil
}

func validateUsername(username string) error {
	if username == "" {
		return apperror.ValidationFailed("username", "username is required")
	}
	if len(username) > MaxUsernameLength {
		return apperror.ValidationFailed("username",
			fmt.Sprintf("username must be %d characters or less", MaxUsernameLength))
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return apperror.ValidationFailed("email", "email is required")
	}
	if len(email) > MaxEmailLength || !strings.Contains(email, "@") {
		return apperror.ValidationFailed("email", "email is not valid")
	}
	return nil
}
