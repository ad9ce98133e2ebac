package service

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
)

// ── ICS 解析器 ──────────────────────────────────────────────
//
// 职责：将标准 iCalendar (RFC 5545) 的法定节假日日历解析为
// (日期, 节日名) 列表，供节假日导入作业落 SN 记录。
//
// 设计决策：
//   - 节假日以全天事件（DTSTART;VALUE=DATE）发布，取 DTSTART 所在自然日；
//     携带时刻的事件同样截断到自然日
//   - 多日假期在日历中逐日出事件，不展开 DTEND 区间
//   - 同一自然日出现多个事件时取第一个（名称仅用于留痕）
// ─────────────────────────────────────────────────────────────

const icsMaxFileSize = 5 * 1024 * 1024 // 5MB

// parsedHoliday ICS 解析中间结构
type parsedHoliday struct {
	Date time.Time // UTC 自然日零点
	Name string
}

// parseHolidayCalendar 解析节假日日历内容，按日期升序返回
func parseHolidayCalendar(reader io.Reader) ([]parsedHoliday, error) {
	cal, err := ics.ParseCalendar(io.LimitReader(reader, icsMaxFileSize))
	if err != nil {
		return nil, fmt.Errorf("ICS 格式解析失败: %w", err)
	}

	seen := make(map[string]bool)
	var holidays []parsedHoliday
	for _, evt := range cal.Events() {
		h, ok := parseHolidayEvent(evt)
		if !ok {
			continue
		}
		key := h.Date.Format("20060102")
		if seen[key] {
			continue
		}
		seen[key] = true
		holidays = append(holidays, h)
	}

	sort.Slice(holidays, func(i, j int) bool {
		return holidays[i].Date.Before(holidays[j].Date)
	})
	return holidays, nil
}

// parseHolidayEvent 解析单个 VEVENT 组件
func parseHolidayEvent(evt *ics.VEvent) (parsedHoliday, bool) {
	summary := evt.GetProperty(ics.ComponentPropertySummary)
	if summary == nil || strings.TrimSpace(summary.Value) == "" {
		return parsedHoliday{}, false
	}

	date, err := parseICSDate(evt, ics.ComponentPropertyDtStart)
	if err != nil {
		return parsedHoliday{}, false
	}

	return parsedHoliday{Date: date, Name: strings.TrimSpace(summary.Value)}, true
}

// parseICSDate 从 VEVENT 中解析日期属性并截断到 UTC 自然日
func parseICSDate(evt *ics.VEvent, propName ics.ComponentProperty) (time.Time, error) {
	prop := evt.GetProperty(propName)
	if prop == nil {
		return time.Time{}, fmt.Errorf("missing property %s", propName)
	}

	formats := []string{
		"20060102",
		"20060102T150405Z",
		"20060102T150405",
	}
	for _, layout := range formats {
		if t, err := time.Parse(layout, prop.Value); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("无法解析日期: %s", prop.Value)
}
