package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/Skotchmaster/shopcore/internal/hash"
	"github.com/Skotchmaster/shopcore/internal/logging"
	"github.com/Skotchmaster/shopcore/internal/models"
	"github.com/Skotchmaster/shopcore/internal/mykafka"
	"github.com/Skotchmaster/shopcore/internal/repo"
	"github.com/Skotchmaster/shopcore/internal/tokens"
	"gorm.io/gorm"
)

const minPasswordLen = 6

type AuthService struct {
	Repo   *repo.GormRepo
	Secret []byte
	TTL    time.Duration
	Events EventPublisher
}

type AuthResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

func (s *AuthService) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || password == "" {
		return nil, fail(ErrValidation, "username, email and password are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fail(ErrValidation, "email is not valid")
	}
	if len(password) < minPasswordLen {
		return nil, fail(ErrValidation, "password must be at least %d characters", minPasswordLen)
	}

	taken, err := s.Repo.UserTaken(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fail(ErrValidation, "username or email already registered")
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("register_error", "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	u := &models.User{Username: username, Email: email, PasswordHash: pwHash, Role: models.RoleUser}
	if err := s.Repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	res, err := s.issue(u)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.Events, mykafka.TopicUsers, key(u.ID), "user_registered", map[string]any{"id": u.ID, "username": u.Username})
	return res, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fail(ErrValidation, "username and password are required")
	}

	u, err := s.Repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fail(ErrUnauthorized, "invalid credentials")
		}
		return nil, err
	}
	if !hash.CheckPassword(u.PasswordHash, password) {
		return nil, fail(ErrUnauthorized, "invalid credentials")
	}

	return s.issue(u)
}

func (s *AuthService) Me(ctx context.Context, id uint) (*models.User, error) {
	u, err := s.Repo.GetUser(ctx, id)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return u, nil
}

func (s *AuthService) issue(u *models.User) (*AuthResult, error) {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	tok, exp, err := tokens.SignAccessToken(u.ID, u.Role, s.Secret, ttl)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: u, Token: tok, ExpiresAt: exp}, nil
}
