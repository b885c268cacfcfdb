package utils

import (
	"math/rand"
	"strings"
	"time"

	"github.com/mozillazg/go-pinyin"
	"golang.org/x/crypto/bcrypt"

	"github.com/Smarty6452/hbros-platform/backend/internal/domain"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "霞", "飞", "玲", "超",
	"华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌", "庆",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var digits = "0123456789"

// GenerateEmailLocalPart 取名字每个字拼音的前若干个字母，再追加几位数字
func GenerateEmailLocalPart(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	var sb strings.Builder

	for _, py := range pinyinArray {
		length := rand.Intn(len(py)) + 1
		sb.WriteString(py[:length])
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		sb.WriteByte(digits[rand.Intn(len(digits))])
	}

	return sb.String()
}

func GenerateRandomUser(password string, emailDomainName string, role domain.Role) (*domain.User, error) {
	name := GenerateRandomChineseName()
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         name,
		Email:        GenerateEmailLocalPart(name) + "@" + emailDomainName,
		PasswordHash: string(passwordHash),
		Role:         role,
	}

	return user, nil
}

var jobTitles = []string{
	"Fix leaky faucet",
	"Assemble IKEA wardrobe",
	"Paint the living room",
	"Mount TV on the wall",
	"Clean out the gutters",
	"Replace bathroom tiles",
	"Mow the back lawn",
	"Install ceiling fan",
	"Repair garden fence",
	"Move a sofa upstairs",
}

var jobBodies = []string{
	"Need someone this week, tools are available on site.",
	"Small job, should take about two hours. Parking available.",
	"Looking for an experienced handyman, please bring your own tools.",
	"Flexible on timing, weekends preferred.",
	"Urgent repair needed, happy to pay extra for a quick visit.",
}

// GenerateRandomJob 生成发布时间在 now 之前 maxAge 以内的岗位，maxAge 大于 2 个月时部分岗位已过期
func GenerateRandomJob(posterID int64, now time.Time, maxAge time.Duration) *domain.Job {
	var age time.Duration
	if maxAge > 0 {
		age = time.Duration(rand.Int63n(int64(maxAge)))
	}

	return &domain.Job{
		Title:    jobTitles[rand.Intn(len(jobTitles))],
		Body:     jobBodies[rand.Intn(len(jobBodies))],
		PostedAt: now.Add(-age).UTC().Truncate(time.Second),
		PosterID: posterID,
	}
}
