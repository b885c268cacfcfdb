// Package testhelper provides in-memory stand-ins for the storage, notification
// and mail dependencies used by service and handler tests.
package testhelper

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Smarty6452/hbros-platform/backend/internal/domain"
)

type interestKey struct {
	jobID  int64
	userID int64
}

// MemStore 在内存中模拟数据库的约束：兴趣主键唯一、删除岗位级联删除兴趣
type MemStore struct {
	mu        sync.Mutex
	nextID    int64
	users     map[int64]*domain.User
	jobs      map[int64]*domain.Job
	interests map[interestKey]time.Time
}

func NewMemStore() *MemStore {
	return &MemStore{
		users:     map[int64]*domain.User{},
		jobs:      map[int64]*domain.Job{},
		interests: map[interestKey]time.Time{},
	}
}

func (m *MemStore) AddUser(name string, role domain.Role) domain.Caller {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.users[m.nextID] = &domain.User{ID: m.nextID, Name: name, Email: strings.ToLower(name) + "@test", Role: role}
	return domain.Caller{ID: m.nextID, Role: role, Name: name}
}

func (m *MemStore) AddJob(posterID int64, title string, postedAt time.Time) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.jobs[m.nextID] = &domain.Job{ID: m.nextID, Title: title, Body: title + " body", PostedAt: postedAt, PosterID: posterID}
	return m.nextID
}

func (m *MemStore) Job(id int64) (domain.Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return domain.Job{}, false
	}
	return *j, true
}

func (m *MemStore) InterestCount(jobID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.countLocked(jobID)
}

func (m *MemStore) countLocked(jobID int64) int {
	n := 0
	for k := range m.interests {
		if k.jobID == jobID {
			n++
		}
	}
	return n
}

func (m *MemStore) summaryLocked(j *domain.Job) *domain.JobSummary {
	s := &domain.JobSummary{Job: *j, InterestedCount: m.countLocked(j.ID)}
	if u, ok := m.users[j.PosterID]; ok {
		s.PosterName = u.Name
	}
	return s
}

func sortSummaries(jobs []*domain.JobSummary) {
	sort.Slice(jobs, func(a, b int) bool {
		if !jobs[a].PostedAt.Equal(jobs[b].PostedAt) {
			return jobs[a].PostedAt.After(jobs[b].PostedAt)
		}
		return jobs[a].ID > jobs[b].ID
	})
}

func (m *MemStore) CreateJob(_ context.Context, job *domain.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	job.ID = m.nextID
	stored := *job
	m.jobs[job.ID] = &stored
	return nil
}

func (m *MemStore) GetJobByID(_ context.Context, id int64) (*domain.JobSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return m.summaryLocked(j), nil
}

func (m *MemStore) ListActiveJobs(_ context.Context, filter domain.JobFilter) ([]*domain.JobSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.JobSummary, 0)
	for _, j := range m.jobs {
		if !domain.IsActive(j.PostedAt, filter.Now) {
			continue
		}
		if filter.Search != "" && !strings.Contains(j.Title, filter.Search) && !strings.Contains(j.Body, filter.Search) {
			continue
		}
		result = append(result, m.summaryLocked(j))
	}
	sortSummaries(result)

	if filter.Offset >= len(result) {
		return []*domain.JobSummary{}, nil
	}
	result = result[filter.Offset:]
	if len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (m *MemStore) ListJobsByPoster(_ context.Context, posterID int64) ([]*domain.JobSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.JobSummary, 0)
	for _, j := range m.jobs {
		if j.PosterID == posterID {
			result = append(result, m.summaryLocked(j))
		}
	}
	sortSummaries(result)
	return result, nil
}

func (m *MemStore) UpdateJobContent(_ context.Context, job *domain.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[job.ID]
	if !ok || j.PosterID != job.PosterID {
		return domain.ErrJobNotFound
	}
	j.Title = job.Title
	j.Body = job.Body
	return nil
}

func (m *MemStore) DeleteJob(_ context.Context, id, posterID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok || j.PosterID != posterID {
		return domain.ErrJobNotFound
	}
	delete(m.jobs, id)
	for k := range m.interests {
		if k.jobID == id {
			delete(m.interests, k)
		}
	}
	return nil
}

func (m *MemStore) CreateInterest(_ context.Context, interest *domain.Interest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[interest.JobID]; !ok {
		return domain.ErrJobNotFound
	}
	key := interestKey{jobID: interest.JobID, userID: interest.UserID}
	if _, ok := m.interests[key]; ok {
		return domain.ErrAlreadyInterested
	}
	m.interests[key] = interest.InterestedAt
	return nil
}

func (m *MemStore) ListInterestedUsers(_ context.Context, posterID int64) ([]*domain.InterestedUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]interestKey, 0)
	for k := range m.interests {
		if m.jobs[k.jobID].PosterID == posterID {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(a, b int) bool {
		ta, tb := m.interests[keys[a]], m.interests[keys[b]]
		if !ta.Equal(tb) {
			return ta.After(tb)
		}
		if keys[a].jobID != keys[b].jobID {
			return keys[a].jobID > keys[b].jobID
		}
		return keys[a].userID > keys[b].userID
	})

	result := make([]*domain.InterestedUser, 0, len(keys))
	for _, k := range keys {
		j := m.jobs[k.jobID]
		u := m.users[k.userID]
		result = append(result, &domain.InterestedUser{JobID: j.ID, JobTitle: j.Title, UserName: u.Name, UserEmail: u.Email, InterestedAt: m.interests[k]})
	}
	return result, nil
}

func (m *MemStore) CreateUser(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	m.nextID++
	user.ID = m.nextID
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *MemStore) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			found := *u
			return &found, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

type SentNotification struct {
	UserID       int64
	Notification *domain.Notification
}

type RecordingNotifier struct {
	Err error

	mu   sync.Mutex
	sent []SentNotification
}

func (r *RecordingNotifier) NotifyUser(_ context.Context, userID int64, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.sent = append(r.sent, SentNotification{UserID: userID, Notification: n})
	return nil
}

func (r *RecordingNotifier) Notifications() []SentNotification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]SentNotification(nil), r.sent...)
}

type RecordingMail struct {
	Err error

	mu   sync.Mutex
	msgs []*domain.MailMessage
}

func (r *RecordingMail) PublishMail(_ context.Context, msg *domain.MailMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.msgs = append(r.msgs, msg)
	return nil
}

func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func (r *RecordingMail) Messages() []*domain.MailMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*domain.MailMessage(nil), r.msgs...)
}
