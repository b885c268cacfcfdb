package service

import "github.com/Smarty6452/hbros-platform/backend/internal/domain"

// CanManage 判断 caller 是否可以修改或删除该岗位，只有发布者本人可以
func CanManage(job *domain.Job, caller domain.Caller) bool {
	return caller.Role == domain.RolePoster && job.PosterID == caller.ID
}

// CanPost 判断 caller 是否可以发布岗位
func CanPost(caller domain.Caller) bool {
	return caller.Role == domain.RolePoster
}

// CanExpressInterest 只有 Viewer 可以对岗位表示兴趣
func CanExpressInterest(caller domain.Caller) bool {
	return caller.Role == domain.RoleViewer
}
