package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Smarty6452/hbros-platform/backend/internal/domain"
	"github.com/Smarty6452/hbros-platform/backend/internal/metrics"
)

type Interests struct {
	jobs          JobStore
	ledger        InterestLedger
	notifier      NotificationChannel
	notifyTimeout time.Duration
	now           Clock
}

func NewInterests(jobs JobStore, ledger InterestLedger, notifier NotificationChannel, notifyTimeout time.Duration, now Clock) *Interests {
	if now == nil {
		now = utcNow
	}
	if notifyTimeout <= 0 {
		notifyTimeout = 3 * time.Second
	}
	return &Interests{
		jobs:          jobs,
		ledger:        ledger,
		notifier:      notifier,
		notifyTimeout: notifyTimeout,
		now:           now,
	}
}

// ExpressInterest 记录 caller 对岗位的兴趣并通知发布者。
// 同一用户对同一岗位只会记录一次，并发的重复请求由存储层的唯一约束裁决
func (s *Interests) ExpressInterest(ctx context.Context, caller domain.Caller, jobID int64) (*domain.Interest, error) {
	if !CanExpressInterest(caller) {
		metrics.ObserveInterest(metrics.InterestRejected)
		return nil, domain.ErrRoleNotAllowed
	}

	job, err := s.jobs.GetJobByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			metrics.ObserveInterest(metrics.InterestRejected)
		}
		return nil, err
	}

	now := s.now().UTC()
	if !domain.IsActive(job.PostedAt, now) {
		metrics.ObserveInterest(metrics.InterestRejected)
		return nil, domain.ErrJobNotFound
	}

	interest := &domain.Interest{
		JobID:        job.ID,
		UserID:       caller.ID,
		InterestedAt: now,
	}
	if err := s.ledger.CreateInterest(ctx, interest); err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyInterested):
			metrics.ObserveInterest(metrics.InterestDuplicate)
		case errors.Is(err, domain.ErrJobNotFound):
			metrics.ObserveInterest(metrics.InterestRejected)
		}
		return nil, err
	}
	metrics.ObserveInterest(metrics.InterestRecorded)

	s.notifyPoster(ctx, &job.Job, caller, now)

	return interest, nil
}

// notifyPoster 在兴趣已经写入之后执行，任何错误都只记录日志
func (s *Interests) notifyPoster(ctx context.Context, job *domain.Job, caller domain.Caller, at time.Time) {
	if s.notifier == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()

	n := domain.NewInterestNotification(job, caller.DisplayName(), at)
	if err := s.notifier.NotifyUser(ctx, job.PosterID, n); err != nil {
		slog.Warn("通知发布者失败", "job_id", job.ID, "poster_id", job.PosterID, "error", err)
	}
}
