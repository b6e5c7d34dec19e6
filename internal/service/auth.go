package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/ecom/internal/models"
	"github.com/Skotchmaster/ecom/internal/repo"
	"github.com/Skotchmaster/ecom/pkg/hash"
	"github.com/Skotchmaster/ecom/pkg/logging"
	"github.com/Skotchmaster/ecom/pkg/tokens"
	"gorm.io/gorm"
)

type AuthService struct {
	Repo      *repo.GormRepo
	JWTSecret []byte
	TokenTTL  time.Duration
}

type LoginResult struct {
	AccessToken string
	AccessExp   time.Time
	Role        string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, email, password, name string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("register_error", "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := models.User{
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: pwHash,
		Role:         models.RoleUser,
	}
	if err := s.Repo.CreateUserIfNotExists(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			return nil, fmt.Errorf("%w: user %s already exists", ErrConflict, email)
		}
		return nil, err
	}

	return s.issue(&user)
}

func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.Repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

// EnsureAdmin creates the bootstrap administrator, or promotes an existing
// account with that email. A blank email disables the bootstrap.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" {
		return nil
	}

	user, err := s.Repo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if user.Role == models.RoleAdmin {
			return nil
		}
		return s.Repo.UpdateUserRole(ctx, user.ID, models.RoleAdmin)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	if password == "" {
		return fmt.Errorf("%w: admin password is required", ErrValidation)
	}
	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return err
	}
	admin := models.User{Email: email, Name: "admin", PasswordHash: pwHash, Role: models.RoleAdmin}
	if err := s.Repo.CreateUserIfNotExists(ctx, &admin); err != nil && !errors.Is(err, repo.ErrUserAlreadyExist) {
		return err
	}
	return nil
}

func (s *AuthService) issue(user *models.User) (*LoginResult, error) {
	token, exp, err := tokens.NewAccessToken(user.Email, user.Role, s.TokenTTL, s.JWTSecret)
	if err != nil {
		return nil, err
	}
	return &LoginResult{AccessToken: token, AccessExp: exp, Role: user.Role}, nil
}
