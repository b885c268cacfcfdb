package seed

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"github.com/Smarty6452/hbros-platform/backend/internal/domain"
	"github.com/Smarty6452/hbros-platform/backend/internal/utils"
)

type Store interface {
	CreateUser(ctx context.Context, user *domain.User) error
	CreateJob(ctx context.Context, job *domain.Job) error
	CreateInterest(ctx context.Context, interest *domain.Interest) error
}

type Options struct {
	Posters            int
	Viewers            int
	JobsPerPoster      int
	InterestsPerViewer int
	Password           string
	EmailDomain        string
	// MaxJobAge 超过 2 个月时会生成一部分已过期的岗位
	MaxJobAge time.Duration
	Now       time.Time
}

type Result struct {
	Users     int
	Jobs      int
	Interests int
}

// SeedDemoData 插入随机的发布者、浏览者、岗位和兴趣记录，单条失败只记录日志
func SeedDemoData(ctx context.Context, s Store, opts Options) Result {
	res := Result{}
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}

	posters := createUsers(ctx, s, opts, domain.RolePoster, opts.Posters)
	viewers := createUsers(ctx, s, opts, domain.RoleViewer, opts.Viewers)
	res.Users = len(posters) + len(viewers)

	jobs := make([]*domain.Job, 0, len(posters)*opts.JobsPerPoster)
	for _, poster := range posters {
		for i := 0; i < opts.JobsPerPoster; i++ {
			job := utils.GenerateRandomJob(poster.ID, opts.Now, opts.MaxJobAge)
			if err := s.CreateJob(ctx, job); err != nil {
				slog.Error("无法插入岗位", "error", err)
				continue
			}
			jobs = append(jobs, job)
		}
	}
	res.Jobs = len(jobs)

	if len(jobs) == 0 {
		return res
	}

	for _, viewer := range viewers {
		for i := 0; i < opts.InterestsPerViewer; i++ {
			job := jobs[rand.Intn(len(jobs))]
			interest := &domain.Interest{
				JobID:        job.ID,
				UserID:       viewer.ID,
				InterestedAt: job.PostedAt.Add(time.Duration(rand.Int63n(int64(opts.Now.Sub(job.PostedAt)) + 1))),
			}
			if err := s.CreateInterest(ctx, interest); err != nil {
				// 随机选中同一个岗位时会重复，跳过即可
				if !errors.Is(err, domain.ErrAlreadyInterested) {
					slog.Error("无法插入兴趣记录", "error", err)
				}
				continue
			}
			res.Interests++
		}
	}

	return res
}

func createUsers(ctx context.Context, s Store, opts Options, role domain.Role, n int) []*domain.User {
	users := make([]*domain.User, 0, n)
	for i := 0; i < n; i++ {
		user, err := utils.GenerateRandomUser(opts.Password, opts.EmailDomain, role)
		if err != nil {
			slog.Error("无法生成随机用户", "error", err)
			continue
		}

		if err := s.CreateUser(ctx, user); err != nil {
			slog.Error("无法插入用户", "email", user.Email, "error", err)
			continue
		}
		users = append(users, user)
	}
	return users
}
