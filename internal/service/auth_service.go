package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"petition-service/internal/auth"
	"petition-service/internal/model"
	"petition-service/internal/repository"
)

type LoginResult struct {
	AccessToken string            `json:"access_token"`
	TokenType   string            `json:"token_type"`
	ExpiresAt   time.Time         `json:"expires_at"`
	User        model.UserProfile `json:"user"`
}

type AuthService struct {
	users    UserStore
	sessions SessionStore
	tokens   *auth.Tokens
	log      zerolog.Logger
	now      func() time.Time
}

func NewAuthService(users UserStore, sessions SessionStore, tokens *auth.Tokens, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		log:      log.With().Str("component", "auth_service").Logger(),
		now:      time.Now,
	}
}

// Login verifies the password and opens a session. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		s.log.Warn().Str("user_id", user.ID.String()).Msg("password mismatch")
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	session := &model.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.tokens.TTL()),
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	token, expiresAt, err := s.tokens.Issue(*user, session.ID, now)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.log.Info().Str("user_id", user.ID.String()).Str("role", string(user.Role)).Msg("user logged in")
	return &LoginResult{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User:        model.NewUserProfile(*user),
	}, nil
}

// Authenticate resolves a bearer token to a principal. The session behind the
// token must exist, be unrevoked and belong to the token's subject.
func (s *AuthService) Authenticate(ctx context.Context, token string) (model.Principal, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return model.Principal{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	session, err := s.sessions.GetByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Principal{}, fmt.Errorf("%w: unknown session", ErrUnauthorized)
		}
		return model.Principal{}, err
	}
	if session.UserID != claims.UserID || !session.Active(s.now()) {
		return model.Principal{}, fmt.Errorf("%w: session is no longer active", ErrUnauthorized)
	}
	return model.Principal{UserID: claims.UserID, SessionID: claims.SessionID, Role: claims.Role}, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, principal model.Principal) (*model.UserProfile, error) {
	user, err := s.users.GetByID(ctx, principal.UserID)
	if err != nil {
		return nil, translateStoreError(err)
	}
	profile := model.NewUserProfile(*user)
	return &profile, nil
}

func (s *AuthService) Logout(ctx context.Context, principal model.Principal) error {
	if err := s.sessions.Revoke(ctx, principal.SessionID, s.now()); err != nil {
		return translateStoreError(err)
	}
	s.log.Info().Str("user_id", principal.UserID.String()).Msg("user logged out")
	return nil
}
