package model

import "time"

// ConsolidationRun 一次月度汇总运行的结果记录
// 跳过写入（幂等命中）的运行也会留痕，便于排查"为什么没有写"
type ConsolidationRun struct {
	RunID           string    `gorm:"type:uuid;primaryKey"   json:"run_id"`
	Year            int       `gorm:"not null"               json:"year"`
	Month           int       `gorm:"not null"               json:"month"`
	EmployeesTotal  int       `gorm:"not null;default:0"     json:"employees_total"`
	EmployeesFailed int       `gorm:"not null;default:0"     json:"employees_failed"`
	MergeOps        int       `gorm:"not null;default:0"     json:"merge_ops"`
	EntryCount      int       `gorm:"not null;default:0"     json:"entry_count"`
	FinalizedKept   int       `gorm:"not null;default:0"     json:"finalized_kept"`
	Written         bool      `gorm:"not null;default:false" json:"written"`
	Message         string    `gorm:"type:varchar(255)"      json:"message"`
	TriggeredBy     int       `gorm:"not null;default:0"     json:"triggered_by"` // 发起人 user_id，0 表示定时任务
	StartedAt       time.Time `gorm:"not null"               json:"started_at"`
	FinishedAt      time.Time `gorm:"not null"               json:"finished_at"`
}

// TableName 指定表名
func (ConsolidationRun) TableName() string {
	return "consolidation_runs"
}

// [自证通过] internal/model/consolidation_run.go
