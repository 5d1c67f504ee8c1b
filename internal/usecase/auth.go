package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"MarketDash/internal/domain"
	"MarketDash/internal/domain/models"
	domrepo "MarketDash/internal/domain/repository"
	applogger "MarketDash/pkg/logger"

	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(u *models.User) (token string, expiresAt time.Time, err error)
}

type AuthUseCase struct {
	users  domrepo.UserStore
	tokens TokenIssuer
	cost   int
	logger *applogger.Logger
}

func NewAuthUseCase(users domrepo.UserStore, tokens TokenIssuer, bcryptCost int, logger *applogger.Logger) *AuthUseCase {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = applogger.Nop()
	}
	return &AuthUseCase{users: users, tokens: tokens, cost: bcryptCost, logger: logger}
}

const maxPasswordBytes = 72

// Register creates an active user. Duplicate username or email wraps
// domain.ErrConflict.
func (uc *AuthUseCase) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if len(req.Password) > maxPasswordBytes {
		return nil, fmt.Errorf("password exceeds %d bytes: %w", maxPasswordBytes, domain.ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), uc.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := uc.users.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	uc.logger.Info("user registered",
		applogger.Int64("user_id", u.ID),
		applogger.String("username", u.Username),
	)
	return u, nil
}

// Login verifies credentials and issues a bearer token. Unknown users and
// wrong passwords are indistinguishable to the caller.
func (uc *AuthUseCase) Login(ctx context.Context, req models.LoginRequest) (*models.TokenResponse, error) {
	u, err := uc.users.GetUserByUsername(ctx, req.Username)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		uc.logger.Info("login rejected", applogger.String("username", req.Username))
		return nil, domain.ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, domain.ErrInactiveUser
	}

	token, exp, err := uc.tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	return &models.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   exp,
		User:        *u,
	}, nil
}

// Me loads the user behind an authenticated request.
func (uc *AuthUseCase) Me(ctx context.Context, userID int64) (*models.User, error) {
	u, err := uc.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, domain.ErrInactiveUser
	}
	return u, nil
}
