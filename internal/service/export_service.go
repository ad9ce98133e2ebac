package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/thlhody/GraphicDepartmentv30-sub004/internal/model"
	"github.com/thlhody/GraphicDepartmentv30-sub004/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportEmptyMonth   = errors.New("该期间汇总集为空，无可导出数据")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 导出对象是汇总集（权威视图），自报集不单独导出
//   - Excel 格式：员工 × 日历日矩阵，单元格为休假代码或当日工时，
//     行尾附薪酬口径合计列
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportConsolidatedMonth 导出某期间汇总集为 Excel
	ExportConsolidatedMonth(ctx context.Context, year, month int) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportConsolidatedMonth — 导出月度汇总为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 单 Sheet "考勤汇总"
//   - 行：每名出现在汇总集中的员工一行（按工号升序）
//   - 列：工号 | 姓名 | 1 ~ 月末日 | 合计列（实际/加班/临时离岗/短工日/休假天）
//   - 日单元格：休假代码原样；有工时则以小时呈现；空日为 "-"
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportConsolidatedMonth(ctx context.Context, year, month int) (*bytes.Buffer, string, error) {
	if month < 1 || month > 12 || year < 2000 || year > 2100 {
		return nil, "", ErrPeriodInvalid
	}

	// 1. 查询汇总集
	entries, err := s.repo.WorkEntry.ListMonthAll(ctx, model.SourceConsolidated, year, time.Month(month))
	if err != nil {
		s.logger.Error("查询汇总集失败", zap.Int("year", year), zap.Int("month", month), zap.Error(err))
		return nil, "", err
	}
	if len(entries) == 0 {
		return nil, "", ErrExportEmptyMonth
	}

	// 2. 员工姓名索引（离职员工不在名册，行内标注）
	roster, err := s.repo.Employee.ListActive(ctx)
	if err != nil {
		s.logger.Error("加载员工名册失败", zap.Error(err))
		return nil, "", err
	}
	nameByUser := make(map[int]string, len(roster))
	for _, emp := range roster {
		nameByUser[emp.UserID] = emp.Name
	}

	// 3. 构建数据索引: "userID:day" → entry，并收集员工行与合计
	type rowTotals struct {
		worked   int
		overtime int
		tempStop int
		shortDay int
		timeOff  int
	}
	entryIndex := make(map[string]*model.WorkEntry, len(entries))
	totals := make(map[int]*rowTotals)
	var userIDs []int
	for i := range entries {
		e := &entries[i]
		entryIndex[fmt.Sprintf("%d:%d", e.UserID, e.WorkDate.Day())] = e

		t, ok := totals[e.UserID]
		if !ok {
			t = &rowTotals{}
			totals[e.UserID] = t
			userIDs = append(userIDs, e.UserID)
		}
		t.worked += e.WorkedMinutes
		t.overtime += e.OvertimeMinutes
		t.tempStop += e.TempStopMinutes
		if e.TimeOffType != nil {
			switch {
			case model.IsShortDayCode(*e.TimeOffType):
				t.shortDay++
			case model.IsPlainTimeOff(*e.TimeOffType):
				t.timeOff++
			}
		}
	}
	sort.Ints(userIDs)

	daysInMonth := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()

	// 4. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "考勤汇总"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	// 列宽：工号/姓名/日历日/合计
	f.SetColWidth(sheetName, "A", "A", 8)
	f.SetColWidth(sheetName, "B", "B", 14)
	f.SetColWidth(sheetName, colName(2), colName(1+daysInMonth), 6)
	f.SetColWidth(sheetName, colName(2+daysInMonth), colName(6+daysInMonth), 13)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%04d-%02d 考勤汇总", year, month))
	f.MergeCell(sheetName, "A1", cell(colName(6+daysInMonth), 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	row := 2
	f.SetCellValue(sheetName, cell("A", row), "工号")
	f.SetCellValue(sheetName, cell("B", row), "姓名")
	for d := 1; d <= daysInMonth; d++ {
		f.SetCellValue(sheetName, cell(colName(1+d), row), d)
	}
	totalHeaders := []string{"实际工时(分)", "加班(分)", "临时离岗(分)", "短工日(天)", "休假(天)"}
	for i, h := range totalHeaders {
		f.SetCellValue(sheetName, cell(colName(2+daysInMonth+i), row), h)
	}

	// 数据行
	row = 3
	for _, userID := range userIDs {
		name, ok := nameByUser[userID]
		if !ok {
			name = "已离职"
		}
		f.SetCellValue(sheetName, cell("A", row), userID)
		f.SetCellValue(sheetName, cell("B", row), name)

		for d := 1; d <= daysInMonth; d++ {
			f.SetCellValue(sheetName, cell(colName(1+d), row), dayCellText(entryIndex[fmt.Sprintf("%d:%d", userID, d)]))
		}

		t := totals[userID]
		totalValues := []int{t.worked, t.overtime, t.tempStop, t.shortDay, t.timeOff}
		for i, v := range totalValues {
			f.SetCellValue(sheetName, cell(colName(2+daysInMonth+i), row), v)
		}
		row++
	}

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("考勤汇总_%04d-%02d.xlsx", year, month)
	return buf, filename, nil
}

// ── 辅助函数 ──

// dayCellText 日单元格文本：休假代码 > 当日工时（小时） > 空位
// 特殊工作日（休假日出勤）同时呈现代码与加班时长
func dayCellText(e *model.WorkEntry) string {
	if e == nil {
		return "-"
	}
	if e.TimeOffType != nil {
		if e.IsSpecialDay() {
			return fmt.Sprintf("%s/%s", *e.TimeOffType, hoursText(e.OvertimeMinutes))
		}
		return *e.TimeOffType
	}
	total := e.WorkedMinutes + e.OvertimeMinutes
	if total == 0 {
		return "-"
	}
	return hoursText(total)
}

// hoursText 分钟数转小时呈现，整小时不带小数
func hoursText(minutes int) string {
	if minutes%60 == 0 {
		return fmt.Sprintf("%d", minutes/60)
	}
	return fmt.Sprintf("%.1f", float64(minutes)/60)
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
