// Package service holds the job board's business rules. It is independent of HTTP and
// receives the caller explicitly on every operation.
package service

import (
	"context"
	"time"

	"github.com/Smarty6452/hbros-platform/backend/internal/domain"
)

// JobStore 是岗位的持久化存储
type JobStore interface {
	CreateJob(ctx context.Context, job *domain.Job) error
	GetJobByID(ctx context.Context, id int64) (*domain.JobSummary, error)
	ListActiveJobs(ctx context.Context, filter domain.JobFilter) ([]*domain.JobSummary, error)
	ListJobsByPoster(ctx context.Context, posterID int64) ([]*domain.JobSummary, error)
	UpdateJobContent(ctx context.Context, job *domain.Job) error
	DeleteJob(ctx context.Context, id, posterID int64) error
}

// InterestLedger 记录 (岗位, 用户) 的兴趣，重复写入必须返回 domain.ErrAlreadyInterested
type InterestLedger interface {
	CreateInterest(ctx context.Context, interest *domain.Interest) error
	ListInterestedUsers(ctx context.Context, posterID int64) ([]*domain.InterestedUser, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// NotificationChannel 把通知推送给某个用户当前在线的所有会话，尽力而为
type NotificationChannel interface {
	NotifyUser(ctx context.Context, userID int64, n *domain.Notification) error
}

// MailPublisher 把邮件放入发送队列
type MailPublisher interface {
	PublishMail(ctx context.Context, msg *domain.MailMessage) error
}

// Clock 返回当前时间，测试中可以替换
type Clock func() time.Time

func utcNow() time.Time {
	return time.Now().UTC()
}
