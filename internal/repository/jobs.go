package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Smarty6452/hbros-platform/backend/internal/domain"
)

// 岗位视图统一带上发布者名字和感兴趣人数
const jobSummarySelect = `
	SELECT
		j.id,
		j.title,
		j.body,
		j.posted_at,
		j.poster_id,
		u.name,
		(SELECT COUNT(*) FROM job_interests ji WHERE ji.job_id = j.id)
	FROM jobs j
	JOIN users u ON u.id = j.poster_id
`

func scanJobSummary(row pgx.Row) (*domain.JobSummary, error) {
	s := &domain.JobSummary{}
	dst := []any{&s.ID, &s.Title, &s.Body, &s.PostedAt, &s.PosterID, &s.PosterName, &s.InterestedCount}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}
	s.PostedAt = s.PostedAt.UTC()
	return s, nil
}

func collectJobSummaries(rows pgx.Rows) ([]*domain.JobSummary, error) {
	defer rows.Close()

	jobs := make([]*domain.JobSummary, 0)
	for rows.Next() {
		s, err := scanJobSummary(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return jobs, nil
}

func (r *Repository) CreateJob(ctx context.Context, job *domain.Job) error {
	query := `
		INSERT INTO jobs (title, body, posted_at, poster_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	args := []any{job.Title, job.Body, job.PostedAt, job.PosterID}
	if err := r.db.QueryRow(ctx, query, args...).Scan(&job.ID); err != nil {
		return fmt.Errorf("create job: %w", err)
	}

	return nil
}

func (r *Repository) GetJobByID(ctx context.Context, id int64) (*domain.JobSummary, error) {
	query := jobSummarySelect + ` WHERE j.id = $1`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	job, err := scanJobSummary(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("get job: %w", err)
	}

	return job, nil
}

// ListActiveJobs 中的可见窗口条件与 domain.IsActive 等价：posted_at + 2 个月 > now
func (r *Repository) ListActiveJobs(ctx context.Context, filter domain.JobFilter) ([]*domain.JobSummary, error) {
	query := jobSummarySelect + `
		WHERE j.posted_at + make_interval(months => $1) > $2
		  AND ($3 = '' OR strpos(j.title, $3) > 0 OR strpos(j.body, $3) > 0)
		ORDER BY j.posted_at DESC, j.id DESC
		LIMIT $4 OFFSET $5
	`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	args := []any{domain.ActiveWindowMonths, filter.Now, filter.Search, filter.Limit, filter.Offset}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list active jobs: %w", err)
	}

	jobs, err := collectJobSummaries(rows)
	if err != nil {
		return nil, fmt.Errorf("list active jobs: %w", err)
	}

	return jobs, nil
}

func (r *Repository) ListJobsByPoster(ctx context.Context, posterID int64) ([]*domain.JobSummary, error) {
	query := jobSummarySelect + `
		WHERE j.poster_id = $1
		ORDER BY j.posted_at DESC, j.id DESC
	`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, query, posterID)
	if err != nil {
		return nil, fmt.Errorf("list jobs by poster: %w", err)
	}

	jobs, err := collectJobSummaries(rows)
	if err != nil {
		return nil, fmt.Errorf("list jobs by poster: %w", err)
	}

	return jobs, nil
}

// UpdateJobContent 只改标题和内容，id、posted_at 和 poster_id 永远不变
func (r *Repository) UpdateJobContent(ctx context.Context, job *domain.Job) error {
	query := `
		UPDATE jobs
		SET
			title = $1,
			body = $2
		WHERE id = $3 AND poster_id = $4
	`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, query, job.Title, job.Body, job.ID, job.PosterID)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrJobNotFound
	}

	return nil
}

// DeleteJob 删除岗位，job_interests 中的记录由外键级联删除
func (r *Repository) DeleteJob(ctx context.Context, id, posterID int64) error {
	query := `
		DELETE FROM jobs WHERE id = $1 AND poster_id = $2
	`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, query, id, posterID)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrJobNotFound
	}

	return nil
}
