// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login and session tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/icarus/internal/common"
	"github.com/dmitrijs2005/icarus/internal/logging"
	"github.com/dmitrijs2005/icarus/internal/server/auth"
	"github.com/dmitrijs2005/icarus/internal/server/config"
	"github.com/dmitrijs2005/icarus/internal/server/models"
	"github.com/dmitrijs2005/icarus/internal/server/repositories/repomanager"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type credentials struct {
	UserName string `validate:"required"`
	Password string `validate:"required"`
}

// UserService provides authentication-related operations:
// - Register: create users
// - Login: verify credentials
// - IssueSession / Authenticate: mint and check session tokens
type UserService struct {
	db              *sql.DB
	repomanager     repomanager.RepositoryManager
	jwtSecret       []byte
	sessionValidity time.Duration
	logger          logging.Logger
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{
		db:              db,
		repomanager:     m,
		jwtSecret:       []byte(cfg.SecretKey),
		sessionValidity: cfg.SessionValidityDuration,
		logger:          logger,
	}
}

// Register creates a new user. A taken username yields
// common.ErrorDuplicateUsername (also matching common.ErrorStorage) and leaves
// the store unchanged.
func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	if err := validate.Struct(credentials{UserName: username, Password: password}); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInvalidRequest, err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: password too long", common.ErrorInvalidRequest)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.Create(ctx, &models.User{UserName: username, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, fmt.Errorf("%w: %w", common.ErrorDuplicateUsername, common.ErrorStorage)
		}
		return nil, fmt.Errorf("%w: error creating user: %v", common.ErrorStorage, err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Login verifies the password of username. Unknown users and wrong passwords
// are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, username, password string) (*models.User, error) {
	if err := validate.Struct(credentials{UserName: username, Password: password}); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInvalidRequest, err)
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorStorage, err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, common.ErrorUnauthorized
	}

	return user, nil
}

// Get returns the user with id userID.
func (s *UserService) Get(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorStorage, err)
	}
	return user, nil
}

// IssueSession mints a signed session token for userID.
func (s *UserService) IssueSession(userID string) (string, error) {
	token, err := auth.GenerateToken(userID, s.jwtSecret, s.sessionValidity)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return token, nil
}

// SessionValidity is the lifetime of tokens minted by IssueSession.
func (s *UserService) SessionValidity() time.Duration {
	return s.sessionValidity
}

// Authenticate resolves a session token to a user id.
func (s *UserService) Authenticate(token string) (string, error) {
	userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
	}
	return userID, nil
}

// SeedDemoUser creates the demo account when no users exist yet. It returns
// the created user, or nil when nothing was seeded.
func (s *UserService) SeedDemoUser(ctx context.Context, password string) (*models.User, error) {
	if password == "" {
		return nil, nil
	}

	n, err := s.repomanager.Users(s.db).Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorStorage, err)
	}
	if n > 0 {
		return nil, nil
	}

	user, err := s.Register(ctx, common.DemoUserName, password)
	if err != nil {
		if errors.Is(err, common.ErrorDuplicateUsername) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}
