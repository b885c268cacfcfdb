// Package notify delivers real-time notifications to users. Publishers push to a
// per-user Redis channel; every API instance runs a Hub that pattern-subscribes to
// those channels and fans messages out to the user's locally connected sessions.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/Smarty6452/hbros-platform/backend/internal/domain"
	"github.com/Smarty6452/hbros-platform/backend/internal/metrics"
)

const DefaultChannelPrefix = "notifications:user:"

func userChannel(prefix string, userID int64) string {
	return prefix + strconv.FormatInt(userID, 10)
}

// Publisher 把通知发布到 Redis，不持久化，不重试
type Publisher struct {
	rdb    redis.UniversalClient
	prefix string
}

func NewPublisher(rdb redis.UniversalClient, prefix string) *Publisher {
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}
	return &Publisher{
		rdb:    rdb,
		prefix: prefix,
	}
}

func (p *Publisher) NotifyUser(ctx context.Context, userID int64, n *domain.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		metrics.ObservePublish(err)
		return fmt.Errorf("marshal notification: %w", err)
	}

	err = p.rdb.Publish(ctx, userChannel(p.prefix, userID), payload).Err()
	metrics.ObservePublish(err)
	if err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}

	return nil
}
