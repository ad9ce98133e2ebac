package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ── 休假类型代码 ──
//
// 与薪酬报表口径一致的法定代码；ZS-<N> 为系统合成的短工日标记
// （缺 N 小时），不允许手工设置，与真实休假代码在同一条记录上互斥。

const (
	TimeOffVacation    = "CO"  // 年休假
	TimeOffMedical     = "CM"  // 病假
	TimeOffHoliday     = "SN"  // 法定节假日
	TimeOffWeekendWork = "SD"  // 周末上班
	TimeOffRecovery    = "R"   // 调休
	TimeOffUnpaid      = "CFP" // 无薪假
)

// ShortDayPrefix 短工日代码前缀
const ShortDayPrefix = "ZS"

var plainTimeOffCodes = map[string]bool{
	TimeOffVacation:    true,
	TimeOffMedical:     true,
	TimeOffHoliday:     true,
	TimeOffWeekendWork: true,
	TimeOffRecovery:    true,
	TimeOffUnpaid:      true,
}

// IsPlainTimeOff 是否为真实休假代码（非 ZS 合成标记）
func IsPlainTimeOff(code string) bool {
	return plainTimeOffCodes[code]
}

// IsShortDayCode 是否为 ZS-<N> 短工日标记
func IsShortDayCode(code string) bool {
	rest, found := strings.CutPrefix(code, ShortDayPrefix+"-")
	if !found {
		return false
	}
	n, err := strconv.Atoi(rest)
	return err == nil && n > 0
}

// ShortDayCode 构造短工日标记，如 ShortDayCode(2) == "ZS-2"
func ShortDayCode(missingHours int) string {
	return fmt.Sprintf("%s-%d", ShortDayPrefix, missingHours)
}

// ── 记录来源 ──

const (
	SourceSelf         = "self"         // 员工自报集
	SourceConsolidated = "consolidated" // 管理员汇总集（权威视图）
)

// WorkEntry 考勤记录：一名员工某个自然日的出勤情况
// 自然键为 (user_id, work_date, source)，同一来源同一天至多一条；
// 删除以"清空墓碑"表示（时间置空、计数归零），不做物理删行，
// 保留该日期槽位的审计痕迹。
type WorkEntry struct {
	EntryID  string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"         json:"entry_id"`
	UserID   int       `gorm:"not null;uniqueIndex:uq_work_entries_key"               json:"user_id"`
	WorkDate time.Time `gorm:"type:date;not null;uniqueIndex:uq_work_entries_key"     json:"work_date"`
	Source   string    `gorm:"type:varchar(16);not null;default:'self';uniqueIndex:uq_work_entries_key" json:"source"`

	StartTime       *time.Time `gorm:"type:timestamptz"              json:"start_time"`
	EndTime         *time.Time `gorm:"type:timestamptz"              json:"end_time"`
	WorkedMinutes   int        `gorm:"not null;default:0"            json:"worked_minutes"`
	OvertimeMinutes int        `gorm:"not null;default:0"            json:"overtime_minutes"`
	TempStopMinutes int        `gorm:"not null;default:0"            json:"temp_stop_minutes"`
	TempStopCount   int        `gorm:"not null;default:0"            json:"temp_stop_count"`
	LunchDeducted   bool       `gorm:"not null;default:false"        json:"lunch_deducted"`
	TimeOffType     *string    `gorm:"type:varchar(16)"              json:"time_off_type"`
	Status          string     `gorm:"type:varchar(40);not null"     json:"status"`

	VersionedModel
}

// TableName 指定表名
func (WorkEntry) TableName() string {
	return "work_entries"
}

// DateKey 自然日键（忽略时分秒），合并与排序的比较基准
func (e *WorkEntry) DateKey() string {
	return e.WorkDate.Format("2006-01-02")
}

// HasBothTimes 是否已录入完整的上下班时间
func (e *WorkEntry) HasBothTimes() bool {
	return e.StartTime != nil && e.EndTime != nil
}

// IsSpecialDay 特殊工作日：真实休假代码 + 完整上下班时间
// （法定假日/休假日出勤，全部工时按加班计酬）
func (e *WorkEntry) IsSpecialDay() bool {
	return e.TimeOffType != nil && IsPlainTimeOff(*e.TimeOffType) && e.HasBothTimes()
}

// IsTombstone 清空墓碑：时间为空且所有数值字段归零
func (e *WorkEntry) IsTombstone() bool {
	return e.StartTime == nil && e.EndTime == nil &&
		e.WorkedMinutes == 0 && e.OvertimeMinutes == 0 &&
		e.TempStopMinutes == 0 && e.TempStopCount == 0 &&
		e.TimeOffType == nil
}

// [自证通过] internal/model/work_entry.go
