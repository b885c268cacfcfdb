package domain

import "time"

// ActiveWindowMonths 是岗位发布后保持可见的日历月数
const ActiveWindowMonths = 2

// AddMonths 按日历月相加，目标月份天数不足时取该月最后一天（1 月 31 日 + 1 个月 = 2 月最后一天），
// 与 PostgreSQL 中 timestamptz + interval 'N months' 的行为一致
func AddMonths(t time.Time, months int) time.Time {
	t = t.UTC()
	year, month, day := t.Date()

	first := time.Date(year, month+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	lastDay := first.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}

	return time.Date(first.Year(), first.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// ExpiresAt 返回岗位失效的时刻，该时刻本身已经不可见
func ExpiresAt(postedAt time.Time) time.Time {
	return AddMonths(postedAt, ActiveWindowMonths)
}

// IsActive 当且仅当 now < postedAt + 2 个日历月
func IsActive(postedAt, now time.Time) bool {
	return now.Before(ExpiresAt(postedAt))
}
