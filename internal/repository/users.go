package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Smarty6452/hbros-platform/backend/internal/domain"
)

func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (email, name, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	args := []any{user.Email, user.Name, user.PasswordHash, user.Role}
	if err := r.db.QueryRow(ctx, query, args...).Scan(&user.ID, &user.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == "users_email_key" {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("create user: %w", err)
	}

	user.CreatedAt = user.CreatedAt.UTC()
	return nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, name, password_hash, role, created_at
		FROM users WHERE email = $1
	`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	user := &domain.User{
		Email: email,
	}

	dst := []any{&user.ID, &user.Name, &user.PasswordHash, &user.Role, &user.CreatedAt}
	if err := r.db.QueryRow(ctx, query, email).Scan(dst...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	user.CreatedAt = user.CreatedAt.UTC()
	return user, nil
}
