package admins

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mleong/mangobox-backend/pkg/auth"
	"github.com/mleong/mangobox-backend/pkg/config"
	"github.com/mleong/mangobox-backend/pkg/db/models"
	"github.com/mleong/mangobox-backend/pkg/enums"
	pkgerrors "github.com/mleong/mangobox-backend/pkg/errors"
	"github.com/mleong/mangobox-backend/pkg/logger"
	"github.com/mleong/mangobox-backend/pkg/security"
)

// adminRepo is the persistence surface the service needs.
type adminRepo interface {
	GetByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	Create(ctx context.Context, user *models.AdminUser) (*models.AdminUser, error)
	Count(ctx context.Context) (int64, error)
}

// LoginResult carries the minted token and the signed-in user.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.AdminUser
}

// Service signs admin users in and bootstraps the first account.
type Service interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	EnsureSeedAdmin(ctx context.Context) error
}

type service struct {
	repo        adminRepo
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	seedCfg     config.AdminSeedConfig
	logg        *logger.Logger
	now         func() time.Time
}

// NewService wires the admin auth service.
func NewService(repo adminRepo, jwtCfg config.JWTConfig, passwordCfg config.PasswordConfig, seedCfg config.AdminSeedConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("admin repository is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		repo:        repo,
		jwtCfg:      jwtCfg,
		passwordCfg: passwordCfg,
		seedCfg:     seedCfg,
		logg:        logg,
		now:         time.Now,
	}, nil
}

// Login verifies the credentials and mints an access token. Unknown emails
// and bad passwords return the same error.
func (s *service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading admin user")
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verifying password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	issuedAt := s.now()
	token, err := auth.MintAccessToken(s.jwtCfg, issuedAt, auth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting access token")
	}

	return &LoginResult{
		Token:     token,
		ExpiresAt: issuedAt.Add(s.jwtCfg.Expiration()),
		User:      user,
	}, nil
}

// EnsureSeedAdmin creates the configured owner account when no admin exists
// yet. Without a configured password a temporary one is generated and logged
// once.
func (s *service) EnsureSeedAdmin(ctx context.Context) error {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting admin users: %w", err)
	}
	if count > 0 {
		return nil
	}
	if strings.TrimSpace(s.seedCfg.Email) == "" {
		s.logg.Warn(ctx, "no admin users exist and no seed email is configured")
		return nil
	}

	password := s.seedCfg.Password
	generated := false
	if password == "" {
		password, err = security.GenerateTempPassword(20)
		if err != nil {
			return fmt.Errorf("generating seed password: %w", err)
		}
		generated = true
	}

	hash, err := security.HashPassword(password, s.passwordCfg)
	if err != nil {
		return fmt.Errorf("hashing seed password: %w", err)
	}

	user := &models.AdminUser{
		Email:        strings.ToLower(strings.TrimSpace(s.seedCfg.Email)),
		PasswordHash: hash,
		Role:         enums.AdminRoleOwner,
	}
	if _, err := s.repo.Create(ctx, user); err != nil {
		return fmt.Errorf("creating seed admin: %w", err)
	}

	ctx = s.logg.WithField(ctx, "email", user.Email)
	if generated {
		s.logg.Info(s.logg.WithField(ctx, "temp_password", password), "seed admin created with a temporary password")
	} else {
		s.logg.Info(ctx, "seed admin created")
	}
	return nil
}
