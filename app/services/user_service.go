package services

import (
	"errors"
	"fmt"
	"time"

	"quill/app/apperr"
	"quill/app/authz"
	"quill/app/cache"
	"quill/app/models"
	"quill/app/repositories"
)

// Profile is a user with follow counts. IsFollowing is set only when the
// viewer is authenticated.
type Profile struct {
	User        *models.User `json:"user"`
	Followers   int          `json:"followers"`
	Following   int          `json:"following"`
	IsFollowing *bool        `json:"isFollowing,omitempty"`
}

// UserService manages profiles, roles and follow relationships.
type UserService struct {
	users    repositories.UserRepository
	follows  repositories.FollowRepository
	activity *ActivityRecorder
	cache    cache.Invalidator
	now      func() time.Time
}

func NewUserService(users repositories.UserRepository, follows repositories.FollowRepository, activity *ActivityRecorder, inv cache.Invalidator) *UserService {
	return &UserService{users: users, follows: follows, activity: activity, cache: inv, now: time.Now}
}

func (s *UserService) getUser(id string) (*models.User, error) {
	user, err := s.users.GetByID(id)
	if isNotFound(err) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *UserService) Profile(viewer *models.Principal, id string) (*Profile, error) {
	user, err := s.getUser(id)
	if err != nil {
		return nil, err
	}
	followers, err := s.follows.Followers(id)
	if err != nil {
		return nil, fmt.Errorf("list followers: %w", err)
	}
	following, err := s.follows.Following(id)
	if err != nil {
		return nil, fmt.Errorf("list following: %w", err)
	}
	profile := &Profile{User: user, Followers: len(followers), Following: len(following)}
	if viewer != nil && viewer.ID != id {
		ok, err := s.follows.IsFollowing(viewer.ID, id)
		if err != nil {
			return nil, fmt.Errorf("check follow: %w", err)
		}
		profile.IsFollowing = &ok
	}
	return profile, nil
}

// SetRole changes a user's role. Admins only.
func (s *UserService) SetRole(p *models.Principal, id string, role models.Role) (*models.User, error) {
	if err := authz.RequireAdmin(p); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, apperr.BadRequest("Invalid role")
	}
	user, err := s.getUser(id)
	if err != nil {
		return nil, err
	}

	user.Role = role
	user.UpdatedAt = s.now()
	if err := s.users.Update(user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	invalidate(s.cache, cache.ClassUsers)
	return user, nil
}

// Follow makes the principal follow the target user.
func (s *UserService) Follow(p *models.Principal, targetID string) error {
	if err := authz.RequireAuth(p); err != nil {
		return err
	}
	if p.ID == targetID {
		return apperr.BadRequest("You cannot follow yourself")
	}

	err := s.follows.Follow(&models.Follow{FollowerID: p.ID, FollowingID: targetID, CreatedAt: s.now()})
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return apperr.NotFound("User not found")
	case errors.Is(err, repositories.ErrConflict):
		return apperr.BadRequest("Already following this user")
	case err != nil:
		return fmt.Errorf("follow: %w", err)
	}

	s.activity.Record(p.ID, models.VerbUserFollowed, targetID, "")
	invalidate(s.cache, cache.ClassUsers)
	return nil
}

// Unfollow removes the follow edge from the principal to targetID.
func (s *UserService) Unfollow(p *models.Principal, targetID string) error {
	if err := authz.RequireAuth(p); err != nil {
		return err
	}
	if _, err := s.getUser(targetID); err != nil {
		return err
	}

	err := s.follows.Unfollow(p.ID, targetID)
	if isNotFound(err) {
		return apperr.BadRequest("You are not following this user")
	}
	if err != nil {
		return fmt.Errorf("unfollow: %w", err)
	}
	invalidate(s.cache, cache.ClassUsers)
	return nil
}

func (s *UserService) Followers(id string) ([]*models.User, error) {
	return s.related(id, s.follows.Followers)
}

func (s *UserService) Following(id string) ([]*models.User, error) {
	return s.related(id, s.follows.Following)
}

func (s *UserService) related(id string, list func(string) ([]string, error)) ([]*models.User, error) {
	if _, err := s.getUser(id); err != nil {
		return nil, err
	}
	ids, err := list(id)
	if err != nil {
		return nil, fmt.Errorf("list follows: %w", err)
	}
	users := make([]*models.User, 0, len(ids))
	for _, uid := range ids {
		u, err := s.users.GetByID(uid)
		if isNotFound(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get user: %w", err)
		}
		users = append(users, u)
	}
	return users, nil
}
