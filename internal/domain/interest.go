package domain

import "time"

type Interest struct {
	JobID        int64     `json:"jobId"`
	UserID       int64     `json:"userId"`
	InterestedAt time.Time `json:"interestedAt"`
}

// InterestedUser 是发布者查看自己岗位的感兴趣用户时的一行记录
type InterestedUser struct {
	JobID        int64     `json:"jobId"`
	JobTitle     string    `json:"jobTitle"`
	UserName     string    `json:"userName"`
	UserEmail    string    `json:"userEmail"`
	InterestedAt time.Time `json:"interestedAt"`
}
