package domain

import (
	"fmt"
	"time"
)

const NotificationTypeNewInterest = "NewInterest"

type Notification struct {
	Type      string    `json:"type"`
	JobID     int64     `json:"jobId"`
	JobTitle  string    `json:"jobTitle"`
	UserName  string    `json:"userName"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func NewInterestNotification(job *Job, userName string, at time.Time) *Notification {
	return &Notification{
		Type:      NotificationTypeNewInterest,
		JobID:     job.ID,
		JobTitle:  job.Title,
		UserName:  userName,
		Message:   fmt.Sprintf("%s showed interest in your job!", userName),
		Timestamp: at,
	}
}
