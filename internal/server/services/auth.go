// Package services contains server-side business logic. This file implements
// AuthService, which handles registration and login.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophsocial/internal/common"
	"github.com/dmitrijs2005/gophsocial/internal/logging"
	"github.com/dmitrijs2005/gophsocial/internal/server/auth"
	"github.com/dmitrijs2005/gophsocial/internal/server/events"
	"github.com/dmitrijs2005/gophsocial/internal/server/models"
	"github.com/dmitrijs2005/gophsocial/internal/server/repositories/repomanager"
)

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// RegisterInput carries the registration form. Only Email and Password are
// required.
type RegisterInput struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Username   string `json:"username"`
	ProfileImg string `json:"profileImg"`
	Bio        string `json:"bio"`
}

type AuthService struct {
	repomanager repomanager.RepositoryManager
	tokens      *auth.TokenService
	events      events.Publisher
	log         logging.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(m repomanager.RepositoryManager, tokens *auth.TokenService, p events.Publisher, log logging.Logger) *AuthService {
	return &AuthService{
		repomanager: m,
		tokens:      tokens,
		events:      p,
		log:         log.With("module", "auth"),
	}
}

// Register validates the input, stores the user with a bcrypt hash and
// returns it with a fresh token.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if in.Email == "" || in.Password == "" {
		return nil, common.ErrMissingCredentials
	}
	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	repo := s.repomanager.Users()

	_, err := repo.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, common.ErrEmailTaken
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	u, err := repo.Create(ctx, &models.User{
		Email:      in.Email,
		Password:   hash,
		Username:   in.Username,
		ProfileImg: in.ProfileImg,
		Bio:        in.Bio,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, fmt.Errorf("error issuing token: %w", err)
	}

	s.log.Info(ctx, "user registered", "user_id", u.ID)
	publish(ctx, s.events, s.log, events.SubjectUserRegistered, u.ID, "")

	return &AuthResult{User: u, Token: token}, nil
}

// Login checks credentials. Unknown email and wrong password both yield
// common.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, common.ErrMissingCredentials
	}

	u, err := s.repomanager.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// keep the response time close to a real mismatch
			_, _ = auth.CheckPassword(s.dummy(), password)
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	ok, err := auth.CheckPassword(u.Password, password)
	if err != nil {
		return nil, fmt.Errorf("error checking password: %w", err)
	}
	if !ok {
		return nil, common.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, fmt.Errorf("error issuing token: %w", err)
	}

	return &AuthResult{User: u, Token: token}, nil
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = auth.HashPassword("gophsocial-dummy-password")
	})
	return s.dummyHash
}
