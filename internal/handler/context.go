package handler

import (
	"context"

	"github.com/Smarty6452/hbros-platform/backend/internal/domain"
)

type ContextKey string

var (
	CallerCtxKey    ContextKey = "caller"
	RequestIDCtxKey ContextKey = "requestID"
)

// callerFrom 只能在 authenticate 中间件之后调用
func callerFrom(ctx context.Context) domain.Caller {
	caller, _ := ctx.Value(CallerCtxKey).(domain.Caller)
	return caller
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDCtxKey).(string)
	return id
}
