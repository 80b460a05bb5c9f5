package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/storefront/storefront-go/internal/crypto"
	"github.com/storefront/storefront-go/internal/model"
	"github.com/storefront/storefront-go/internal/repository"
	"github.com/storefront/storefront-go/internal/validator"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWrongPassword      = errors.New("wrong password")
	ErrIdentityTaken      = errors.New("email or phone number already exists")
	ErrTokenRevoked       = errors.New("token has been revoked")
)

// ValidationError carries the field-level messages of a rejected payload.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

func validationError(messages []string) error {
	if len(messages) == 0 {
		return nil
	}
	return &ValidationError{Messages: messages}
}

// UserStore is the Credential Store as seen by the services.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// Denylist records token ids revoked before their expiry.
type Denylist interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AuthService handles registration, login and session token business logic.
type AuthService struct {
	log      *slog.Logger
	users    UserStore
	hasher   *crypto.Hasher
	tokens   *crypto.TokenIssuer
	denylist Denylist
}

// NewAuthService creates a new AuthService. denylist may be nil, in which case
// logout is advisory and tokens stay valid until they expire.
func NewAuthService(
	log *slog.Logger,
	users UserStore,
	hasher *crypto.Hasher,
	tokens *crypto.TokenIssuer,
	denylist Denylist,
) *AuthService {
	return &AuthService{
		log:      log,
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		denylist: denylist,
	}
}

// Register validates the payload and stores a new user with a hashed password.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (int64, error) {
	const op = "AuthService.Register"

	if err := validationError(validator.UserRegistration(req)); err != nil {
		return 0, err
	}

	phone, err := req.Phone.Int64()
	if err != nil {
		return 0, fmt.Errorf("%s: parsing phone: %w", op, err)
	}

	hash, err := s.hasher.HashPassword(req.Password)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	user := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    phone,
		Password: hash,
	}

	// The unique keys on email and phone decide duplicates; no prior lookup.
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return 0, ErrIdentityTaken
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user registered", slog.Int64("user_id", user.ID))
	return user.ID, nil
}

// Login verifies the credentials and returns a freshly signed session token.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (string, error) {
	const op = "AuthService.Login"

	if err := validationError(validator.UserLogin(req)); err != nil {
		return "", err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	match, err := s.hasher.VerifyPassword(req.Password, user.Password)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if !match {
		return "", ErrWrongPassword
	}

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user logged in", slog.Int64("user_id", user.ID))
	return token, nil
}

// Authenticate validates a bearer token and rejects revoked ones.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*crypto.Claims, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	if s.denylist != nil {
		revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("AuthService.Authenticate: %w", err)
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}

	return claims, nil
}

// Logout revokes the presented token when a denylist is configured.
func (s *AuthService) Logout(ctx context.Context, claims *crypto.Claims) error {
	if err := s.revoke(ctx, claims); err != nil {
		return fmt.Errorf("AuthService.Logout: %w", err)
	}
	s.log.Info("user logged out", slog.Int64("user_id", claims.UserID))
	return nil
}

// Refresh mints a new token for the same user. With a denylist configured
// the presented token is revoked, so each refresh rotates the session.
func (s *AuthService) Refresh(ctx context.Context, claims *crypto.Claims) (string, error) {
	const op = "AuthService.Refresh"

	token, err := s.tokens.GenerateToken(claims.UserID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := s.revoke(ctx, claims); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return token, nil
}

func (s *AuthService) revoke(ctx context.Context, claims *crypto.Claims) error {
	if s.denylist == nil || claims.ExpiresAt == nil {
		return nil
	}
	return s.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}
