package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/flick-business/flick-business/internal/shared"
)

// ErrInvalidCredentials covers both unknown email and wrong password so
// login responses never reveal which one failed.
var ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", shared.ErrUnauthorized)

// Service implements account registration, login and profile management.
type Service struct {
	repo   Repository
	tokens *TokenIssuer
}

// NewService constructs Service.
func NewService(repo Repository, tokens *TokenIssuer) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Register creates an account and returns a fresh token.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if err := shared.Validate(req); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}
	id, err := s.repo.Create(ctx, User{Name: req.Name, Email: req.Email, PasswordHash: string(hash)})
	if err != nil {
		return nil, err
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{Token: token, User: user}, nil
}

// Login verifies credentials and returns a fresh token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := shared.Validate(req); err != nil {
		return nil, err
	}
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{Token: token, User: user}, nil
}

// Me returns the authenticated user's profile.
func (s *Service) Me(ctx context.Context, userID int64) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}

// UpdateProfile edits name, email and optionally the password.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) (*User, error) {
	if err := shared.Validate(req); err != nil {
		return nil, err
	}
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Name = req.Name
	user.Email = req.Email
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("auth: hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}
	if err := s.repo.Update(ctx, *user); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, userID)
}

// DeleteAccount removes the user and everything owned by it.
func (s *Service) DeleteAccount(ctx context.Context, userID int64) error {
	return s.repo.Delete(ctx, userID)
}
