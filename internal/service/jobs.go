package service

import (
	"context"
	"fmt"
	"math"

	"github.com/Smarty6452/hbros-platform/backend/internal/domain"
)

type ListJobsParams struct {
	Page     int
	PageSize int
	Search   string
}

type Jobs struct {
	jobs        JobStore
	interests   InterestLedger
	maxPageSize int
	now         Clock
}

func NewJobs(jobs JobStore, interests InterestLedger, maxPageSize int, now Clock) *Jobs {
	if now == nil {
		now = utcNow
	}
	return &Jobs{
		jobs:        jobs,
		interests:   interests,
		maxPageSize: maxPageSize,
		now:         now,
	}
}

// ListJobs 返回当前可见的岗位，按发布时间倒序分页
func (s *Jobs) ListJobs(ctx context.Context, params ListJobsParams) ([]*domain.JobSummary, error) {
	if params.Page < 1 || params.PageSize <= 0 || params.PageSize > s.maxPageSize {
		return nil, domain.ErrInvalidPagination
	}
	// 偏移量 (page-1)*size 不能溢出
	if params.Page-1 > math.MaxInt/params.PageSize {
		return nil, domain.ErrInvalidPagination
	}

	now := s.now()
	jobs, err := s.jobs.ListActiveJobs(ctx, domain.JobFilter{
		Now:    now,
		Search: params.Search,
		Limit:  params.PageSize,
		Offset: (params.Page - 1) * params.PageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	for _, j := range jobs {
		j.IsActive = true
	}
	return jobs, nil
}

// GetJob 对已过期的岗位与不存在的岗位一视同仁
func (s *Jobs) GetJob(ctx context.Context, id int64) (*domain.JobSummary, error) {
	job, err := s.jobs.GetJobByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !domain.IsActive(job.PostedAt, s.now()) {
		return nil, domain.ErrJobNotFound
	}

	job.IsActive = true
	return job, nil
}

// ListMine 返回 caller 发布的所有岗位，包括已过期的
func (s *Jobs) ListMine(ctx context.Context, caller domain.Caller) ([]*domain.JobSummary, error) {
	if !CanPost(caller) {
		return nil, domain.ErrRoleNotAllowed
	}

	jobs, err := s.jobs.ListJobsByPoster(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("list my jobs: %w", err)
	}

	now := s.now()
	for _, j := range jobs {
		j.IsActive = domain.IsActive(j.PostedAt, now)
	}
	return jobs, nil
}

func (s *Jobs) CreateJob(ctx context.Context, caller domain.Caller, title, body string) (*domain.Job, error) {
	if !CanPost(caller) {
		return nil, domain.ErrRoleNotAllowed
	}

	job := &domain.Job{
		Title:    title,
		Body:     body,
		PostedAt: s.now().UTC(),
		PosterID: caller.ID,
	}
	if err := s.jobs.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	return job, nil
}

// loadManaged 依次检查存在性和所有权，非发布者无法得知岗位是否过期
func (s *Jobs) loadManaged(ctx context.Context, caller domain.Caller, id int64) (*domain.JobSummary, error) {
	job, err := s.jobs.GetJobByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !CanManage(&job.Job, caller) {
		return nil, domain.ErrForbidden
	}

	return job, nil
}

// UpdateJob 只允许修改标题和内容，发布时间与发布者保持不变
func (s *Jobs) UpdateJob(ctx context.Context, caller domain.Caller, id int64, title, body string) (*domain.Job, error) {
	current, err := s.loadManaged(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if !domain.IsActive(current.PostedAt, s.now()) {
		return nil, domain.ErrJobExpired
	}

	job := current.Job
	job.Title = title
	job.Body = body
	if err := s.jobs.UpdateJobContent(ctx, &job); err != nil {
		return nil, err
	}

	return &job, nil
}

// DeleteJob 无论岗位是否过期都允许删除，相关兴趣记录由外键级联删除
func (s *Jobs) DeleteJob(ctx context.Context, caller domain.Caller, id int64) error {
	job, err := s.loadManaged(ctx, caller, id)
	if err != nil {
		return err
	}

	return s.jobs.DeleteJob(ctx, job.ID, caller.ID)
}

func (s *Jobs) ListInterestedUsers(ctx context.Context, caller domain.Caller) ([]*domain.InterestedUser, error) {
	if !CanPost(caller) {
		return nil, domain.ErrRoleNotAllowed
	}

	users, err := s.interests.ListInterestedUsers(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("list interested users: %w", err)
	}
	return users, nil
}
