package domain

import (
	"time"
)

type Role string

const (
	RolePoster Role = "Poster"
	RoleViewer Role = "Viewer"
)

func (r Role) Valid() bool {
	return r == RolePoster || r == RoleViewer
}

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Caller 是一次请求的发起者，由认证中间件根据令牌构造后显式传给 service
type Caller struct {
	ID   int64
	Role Role
	Name string
}

// DisplayName 在令牌中没有名字时回退为 "Someone"
func (c Caller) DisplayName() string {
	if c.Name == "" {
		return "Someone"
	}
	return c.Name
}
