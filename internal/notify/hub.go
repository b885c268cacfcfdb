package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Smarty6452/hbros-platform/backend/internal/metrics"
)

const DefaultSessionBuffer = 16

var ErrHubClosed = errors.New("notification hub is closed")

// Session 是某个用户的一条实时连接，同一用户可以同时有多个会话
type Session struct {
	ID     string
	UserID int64

	ch chan []byte
}

// Messages 在会话被注销或 Hub 关闭后被关闭
func (s *Session) Messages() <-chan []byte {
	return s.ch
}

type Stats struct {
	Delivered int64
	Dropped   int64
}

type Hub struct {
	rdb    redis.UniversalClient
	prefix string
	buffer int

	mu       sync.RWMutex
	sessions map[int64]map[string]*Session
	closed   bool

	pubsub *redis.PubSub
	wg     sync.WaitGroup

	delivered atomic.Int64
	dropped   atomic.Int64
}

func NewHub(rdb redis.UniversalClient, prefix string, buffer int) *Hub {
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}
	if buffer <= 0 {
		buffer = DefaultSessionBuffer
	}
	return &Hub{
		rdb:      rdb,
		prefix:   prefix,
		buffer:   buffer,
		sessions: make(map[int64]map[string]*Session),
	}
}

// Start 订阅所有用户频道，订阅确认后才返回
func (h *Hub) Start(ctx context.Context) error {
	pubsub := h.rdb.PSubscribe(ctx, h.prefix+"*")
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("subscribe notifications: %w", err)
	}
	h.pubsub = pubsub

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		for msg := range pubsub.Channel() {
			h.dispatch(msg)
		}
	}()

	slog.Info("通知中心已启动", "pattern", h.prefix+"*")
	return nil
}

func (h *Hub) dispatch(msg *redis.Message) {
	suffix, ok := strings.CutPrefix(msg.Channel, h.prefix)
	if !ok {
		return
	}
	userID, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil {
		slog.Warn("无法解析通知频道", "channel", msg.Channel)
		return
	}

	payload := []byte(msg.Payload)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, s := range h.sessions[userID] {
		select {
		case s.ch <- payload:
			h.delivered.Add(1)
			metrics.NotificationsDelivered.Inc()
		default:
			h.dropped.Add(1)
			metrics.NotificationsDropped.Inc()
			slog.Warn("会话缓冲区已满，丢弃通知", "user_id", userID, "session_id", s.ID)
		}
	}
}

func (h *Hub) Register(userID int64) (*Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}

	s := &Session{
		ID:     uuid.NewString(),
		UserID: userID,
		ch:     make(chan []byte, h.buffer),
	}
	if h.sessions[userID] == nil {
		h.sessions[userID] = make(map[string]*Session)
	}
	h.sessions[userID][s.ID] = s
	metrics.StreamSessionsActive.Inc()

	return s, nil
}

func (h *Hub) Unregister(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	userSessions, ok := h.sessions[s.UserID]
	if !ok {
		return
	}
	if _, ok := userSessions[s.ID]; !ok {
		return
	}

	delete(userSessions, s.ID)
	if len(userSessions) == 0 {
		delete(h.sessions, s.UserID)
	}
	close(s.ch)
	metrics.StreamSessionsActive.Dec()
}

// SessionCount 返回某个用户在本实例上的会话数
func (h *Hub) SessionCount(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[userID])
}

func (h *Hub) Stats() Stats {
	return Stats{
		Delivered: h.delivered.Load(),
		Dropped:   h.dropped.Load(),
	}
}

// Close 取消订阅并关闭所有会话，使正在进行的推送连接退出
func (h *Hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	for userID, userSessions := range h.sessions {
		for _, s := range userSessions {
			close(s.ch)
			metrics.StreamSessionsActive.Dec()
		}
		delete(h.sessions, userID)
	}
	h.mu.Unlock()

	var err error
	if h.pubsub != nil {
		err = h.pubsub.Close()
	}
	h.wg.Wait()
	return err
}
