package dto

// ── 节假日日历模块 DTO ──

// HolidayImportResult 节假日导入结果
// Skipped 为已有记录而未覆盖的 (员工, 日期) 组合数
type HolidayImportResult struct {
	Year           int      `json:"year"`
	Holidays       int      `json:"holidays"`
	EntriesCreated int      `json:"entries_created"`
	Skipped        int      `json:"skipped"`
	Dates          []string `json:"dates"`
}
