package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/conduit/internal/apperror"
	"github.com/sakif/conduit/internal/model"
	"github.com/sakif/conduit/internal/repository"
)

// ProfileService serves public profiles and drives the follow relation the
// feed is built on.
type ProfileService struct {
	users   repository.UserRepository
	follows repository.FollowRepository
	logger  *slog.Logger
}

func NewProfileService(users repository.UserRepository, follows repository.FollowRepository, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		users:   users,
		follows: follows,
		logger:  logger,
	}
}

// Get returns the profile for username as seen by viewerID. For anonymous
// viewers (empty viewerID) Following is always false — the follow lookup
// isn't even issued.
func (s *ProfileService) Get(ctx context.Context, username, viewerID string) (*model.Profile, error) {
	user, err := s.lookup(ctx, username)
	if err != nil {
		return nil, err
	}

	following := false
	if viewerID != "" {
		following, err = s.follows.IsFollowing(ctx, viewerID, user.ID)
		if err != nil {
			return nil, fmt.Errorf("checking follow state: %w", err)
		}
	}

	return profileOf(user, following), nil
}

// Follow makes viewerID follow username. Following someone you already
// follow succeeds without touching the store — the pre-check keeps the
// common retry cheap. Two racing first-follows are decided by the store's
// composite key; the loser's rejection surfaces as Conflict.
func (s *ProfileService) Follow(ctx context.Context, viewerID, username string) (*model.Profile, error) {
	user, err := s.lookup(ctx, username)
	if err != nil {
		return nil, err
	}
	if user.ID == viewerID {
		return nil, apperror.ValidationFailed("username", "you cannot follow yourself")
	}

	following, err := s.follows.IsFollowing(ctx, viewerID, user.ID)
	if err != nil {
		return nil, fmt.Errorf("checking follow state: %w", err)
	}
	if !following {
		if err := s.follows.AddFollow(ctx, viewerID, user.ID); err != nil {
			if errors.Is(err, apperror.ErrConflict) {
				return nil, err
			}
			return nil, fmt.Errorf("following profile: %w", err)
		}
		s.logger.Info("profile followed",
			slog.String("followerID", viewerID),
			slog.String("followeeID", user.ID),
		)
	}

	return profileOf(user, true), nil
}

// Unfollow makes viewerID stop following username. Unfollowing someone you
// never followed is a harmless no-op.
func (s *ProfileService) Unfollow(ctx context.Context, viewerID, username string) (*model.Profile, error) {
	user, err := s.lookup(ctx, username)
	if err != nil {
		return nil, err
	}
	if user.ID == viewerID {
		return nil, apperror.ValidationFailed("username", "you cannot unfollow yourself")
	}

	removed, err := s.follows.RemoveFollow(ctx, viewerID, user.ID)
	if err != nil {
		return nil, fmt.Errorf("unfollowing profile: %w", err)
	}
	if removed {
		s.logger.Info("profile unfollowed",
			slog.String("followerID", viewerID),
			slog.String("followeeID", user.ID),
		)
	}

	return profileOf(user, false), nil
}

// lookup finds a user by username, translating the miss into a
// profile-flavoured NotFound so callers see "profile not found" rather
// than a leaked internal entity name.
func (s *ProfileService) lookup(ctx context.Context, username string) (*model.User, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFound("profile")
		}
		return nil, fmt.Errorf("looking up profile %s: %w", username, err)
	}
	return user, nil
}

func profileOf(user *model.User, following bool) *model.Profile {
	return &model.Profile{
		Username:  user.Username,
		Bio:       user.Bio,
		Image:     user.Image,
		Following: following,
	}
}
