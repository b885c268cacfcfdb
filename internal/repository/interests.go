package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Smarty6452/hbros-platform/backend/internal/domain"
)

// CreateInterest 直接插入，重复的 (job_id, user_id) 由主键约束拒绝并转换为 domain.ErrAlreadyInterested
func (r *Repository) CreateInterest(ctx context.Context, interest *domain.Interest) error {
	query := `
		INSERT INTO job_interests (job_id, user_id, interested_at)
		VALUES ($1, $2, $3)
	`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if _, err := r.db.Exec(ctx, query, interest.JobID, interest.UserID, interest.InterestedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch {
			case pgErr.Code == uniqueViolation && pgErr.ConstraintName == "job_interests_pkey":
				return domain.ErrAlreadyInterested
			case pgErr.Code == foreignKeyViolation && pgErr.ConstraintName == "job_interests_job_id_fkey":
				// 岗位在检查之后被删除
				return domain.ErrJobNotFound
			}
		}
		return fmt.Errorf("create interest: %w", err)
	}

	return nil
}

func (r *Repository) ListInterestedUsers(ctx context.Context, posterID int64) ([]*domain.InterestedUser, error) {
	query := `
		SELECT j.id, j.title, u.name, u.email, ji.interested_at
		FROM job_interests ji
		JOIN jobs j ON j.id = ji.job_id
		JOIN users u ON u.id = ji.user_id
		WHERE j.poster_id = $1
		ORDER BY ji.interested_at DESC, ji.job_id DESC, ji.user_id DESC
	`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, query, posterID)
	if err != nil {
		return nil, fmt.Errorf("list interested users: %w", err)
	}
	defer rows.Close()

	result := make([]*domain.InterestedUser, 0)
	for rows.Next() {
		iu := &domain.InterestedUser{}
		if err := rows.Scan(&iu.JobID, &iu.JobTitle, &iu.UserName, &iu.UserEmail, &iu.InterestedAt); err != nil {
			return nil, fmt.Errorf("list interested users: %w", err)
		}
		iu.InterestedAt = iu.InterestedAt.UTC()
		result = append(result, iu)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list interested users: %w", err)
	}

	return result, nil
}
