package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Smarty6452/hbros-platform/backend/internal/notify"
)

const notificationEvent = "ReceiveNotification"

// StreamNotifications 以 Server-Sent Events 推送当前用户的通知，直到客户端断开或服务关闭
func (h *Handler) StreamNotifications(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r.Context())

	session, err := h.hub.Register(caller.ID)
	if err != nil {
		if errors.Is(err, notify.ErrHubClosed) {
			h.errorResponse(w, r, http.StatusServiceUnavailable, "server is shutting down")
			return
		}
		h.internalServerError(w, r, err)
		return
	}
	defer h.hub.Unregister(session)

	rc := http.NewResponseController(w)
	// 推送连接是长连接，不受服务器写超时限制
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		slog.Error("无法刷新推送连接", "user_id", caller.ID, "error", err)
		return
	}

	slog.Debug("推送连接已建立", "user_id", caller.ID, "session_id", session.ID)
	defer slog.Debug("推送连接已关闭", "user_id", caller.ID, "session_id", session.ID)

	interval := time.Duration(h.config.Notification.HeartbeatInterval) * time.Second
	if interval <= 0 {
		interval = 25 * time.Second
	}
	heartbeat := time.NewTicker(interval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case payload, ok := <-session.Messages():
			if !ok {
				return
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", notificationEvent, payload); err != nil {
				return
			}
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": heartbeat\n\n"); err != nil {
				return
			}
		}

		if err := rc.Flush(); err != nil {
			return
		}
	}
}
