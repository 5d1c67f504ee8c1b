package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"MarketDash/internal/domain"
	"MarketDash/internal/domain/models"
	domrepo "MarketDash/internal/domain/repository"
	"MarketDash/pkg/postgres"

	"github.com/jmoiron/sqlx"
)

type PGUserStore struct {
	db *sqlx.DB
}

var _ domrepo.UserStore = (*PGUserStore)(nil)

func NewPGUserStore(db *sqlx.DB) *PGUserStore {
	return &PGUserStore{db: db}
}

func (s *PGUserStore) CreateUser(ctx context.Context, u *models.User) error {
	const q = `
		INSERT INTO users (username, email, password_hash, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	err := s.db.QueryRowxContext(ctx, q, u.Username, u.Email, u.PasswordHash, u.IsActive).
		Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if constraint, ok := postgres.IsUniqueViolation(err); ok {
			return fmt.Errorf("create user (%s): %w", constraint, domain.ErrConflict)
		}
		return fmt.Errorf("create user: %w", err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return nil
}

func (s *PGUserStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.get(ctx, `SELECT id, username, email, password_hash, is_active, created_at FROM users WHERE username = $1`, username)
}

func (s *PGUserStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.get(ctx, `SELECT id, username, email, password_hash, is_active, created_at FROM users WHERE id = $1`, id)
}

func (s *PGUserStore) get(ctx context.Context, q string, arg interface{}) (*models.User, error) {
	var u models.User
	if err := s.db.GetContext(ctx, &u, q, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}
