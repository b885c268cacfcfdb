package domain

import "time"

type Job struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	Body     string    `json:"body"`
	PostedAt time.Time `json:"postedDate"`
	PosterID int64     `json:"posterId"`
}

// JobSummary 是列表和详情接口返回的视图，附带发布者名字和当前感兴趣人数
type JobSummary struct {
	Job
	PosterName      string `json:"posterName"`
	InterestedCount int    `json:"interestedCount"`
	IsActive        bool   `json:"isActive"`
}

// JobFilter 描述公开列表的查询条件，Now 决定可见窗口的位置
type JobFilter struct {
	Now    time.Time
	Search string
	Limit  int
	Offset int
}
