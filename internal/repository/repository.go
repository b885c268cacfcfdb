package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Smarty6452/hbros-platform/backend/internal/config"
)

// PostgreSQL 错误码
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// DBTX 是 *pgxpool.Pool 的子集，测试中由 pgxmock 提供
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repository struct {
	cfg *config.Config
	db  DBTX
}

func NewRepository(cfg *config.Config, db DBTX) *Repository {
	return &Repository{
		cfg: cfg,
		db:  db,
	}
}

func (r *Repository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
}
