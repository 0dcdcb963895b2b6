package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"quill/app/apperr"
	"quill/app/authz"
	"quill/app/models"
	"quill/app/repositories"
	"quill/app/security"
)

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Username string `json:"username" validate:"required,alphanum,min=3,max=30"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthService registers accounts and issues access tokens.
type AuthService struct {
	users  repositories.UserRepository
	tokens *security.Tokens
	cost   int
	now    func() time.Time
}

func NewAuthService(users repositories.UserRepository, tokens *security.Tokens, bcryptCost int) *AuthService {
	return &AuthService{users: users, tokens: tokens, cost: bcryptCost, now: time.Now}
}

// Register creates an AUTHOR account and returns it with a token.
func (s *AuthService) Register(in RegisterInput) (*models.User, string, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	if err := models.Validate(&in); err != nil {
		return nil, "", err
	}

	hash, err := security.HashPassword(in.Password, s.cost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := &models.User{
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: hash,
		Role:         models.RoleAuthor,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return nil, "", apperr.Conflict("Email or username already in use")
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

// Login checks credentials. Unknown emails and wrong passwords fail the
// same way.
func (s *AuthService) Login(in LoginInput) (*models.User, string, error) {
	if err := models.Validate(&in); err != nil {
		return nil, "", err
	}

	invalid := apperr.Unauthorized("Invalid email or password")
	user, err := s.users.GetByEmail(in.Email)
	if isNotFound(err) {
		return nil, "", invalid
	}
	if err != nil {
		return nil, "", fmt.Errorf("find user: %w", err)
	}
	if !security.CheckPassword(user.PasswordHash, in.Password) {
		return nil, "", invalid
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

// Me returns the account behind the principal.
func (s *AuthService) Me(p *models.Principal) (*models.User, error) {
	if err := authz.RequireAuth(p); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(p.ID)
	if isNotFound(err) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}
