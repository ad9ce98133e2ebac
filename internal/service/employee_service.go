package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/thlhody/GraphicDepartmentv30-sub004/internal/dto"
	"github.com/thlhody/GraphicDepartmentv30-sub004/internal/model"
	"github.com/thlhody/GraphicDepartmentv30-sub004/internal/repository"
)

// ── 员工名册模块业务错误 ──

var (
	ErrEmployeeNotFound    = errors.New("员工不存在")
	ErrEmployeeEmailExists = errors.New("该邮箱已被其他员工使用")
	ErrBalanceInsufficient = errors.New("年假余额不足，无法扣减")
)

// EmployeeService 员工名册业务接口
// 名册是汇总作业的输入（在册员工集合 + 每人的日标准工时）；
// 年假余额只走这里的读与增减，合并与汇总不碰余额
type EmployeeService interface {
	Create(ctx context.Context, actor dto.Actor, req *dto.CreateEmployeeRequest) (*dto.EmployeeResponse, error)
	GetByID(ctx context.Context, userID int) (*dto.EmployeeResponse, error)
	List(ctx context.Context, req *dto.EmployeeListRequest) (*dto.EmployeeListResponse, error)
	Update(ctx context.Context, actor dto.Actor, userID int, req *dto.UpdateEmployeeRequest) (*dto.EmployeeResponse, error)
	Deactivate(ctx context.Context, actor dto.Actor, userID int) error
	GetBalance(ctx context.Context, actor dto.Actor, userID int) (*dto.HolidayBalanceResponse, error)
	AdjustBalance(ctx context.Context, actor dto.Actor, userID int, req *dto.AdjustBalanceRequest) (*dto.HolidayBalanceResponse, error)
}

type employeeService struct {
	cfg    scheduleDefaults
	repo   *repository.Repository
	logger *zap.Logger
}

// scheduleDefaults 建档时的日标准工时默认值
type scheduleDefaults struct {
	DefaultScheduleHours int
}

// NewEmployeeService 创建 EmployeeService 实例
func NewEmployeeService(defaultScheduleHours int, repo *repository.Repository, logger *zap.Logger) EmployeeService {
	return &employeeService{
		cfg:    scheduleDefaults{DefaultScheduleHours: defaultScheduleHours},
		repo:   repo,
		logger: logger,
	}
}

// ────────────────────── Create ──────────────────────

func (s *employeeService) Create(ctx context.Context, actor dto.Actor, req *dto.CreateEmployeeRequest) (*dto.EmployeeResponse, error) {
	existing, err := s.repo.Employee.GetByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询员工失败", zap.String("email", req.Email), zap.Error(err))
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmployeeEmailExists
	}

	scheduleHours := req.ScheduleHours
	if scheduleHours == 0 {
		scheduleHours = s.cfg.DefaultScheduleHours
	}

	emp := &model.Employee{
		Name:           req.Name,
		Email:          req.Email,
		ScheduleHours:  scheduleHours,
		HolidayBalance: req.HolidayBalance,
		IsActive:       true,
	}
	operator := actor.UserID
	emp.CreatedBy = &operator
	emp.UpdatedBy = &operator

	if err := s.repo.Employee.Create(ctx, emp); err != nil {
		s.logger.Error("创建员工失败", zap.String("email", req.Email), zap.Error(err))
		return nil, err
	}

	s.logger.Info("员工建档", zap.Int("user_id", emp.UserID), zap.Int("operator", actor.UserID))
	return toEmployeeResponse(emp), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *employeeService) GetByID(ctx context.Context, userID int) (*dto.EmployeeResponse, error) {
	emp, err := s.getEmployee(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toEmployeeResponse(emp), nil
}

// ────────────────────── List ──────────────────────

func (s *employeeService) List(ctx context.Context, req *dto.EmployeeListRequest) (*dto.EmployeeListResponse, error) {
	emps, total, err := s.repo.Employee.List(ctx, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询员工列表失败", zap.Error(err))
		return nil, err
	}

	items := make([]*dto.EmployeeResponse, 0, len(emps))
	for i := range emps {
		items = append(items, toEmployeeResponse(&emps[i]))
	}
	return &dto.EmployeeListResponse{Total: int(total), Items: items}, nil
}

// ────────────────────── Update ──────────────────────

func (s *employeeService) Update(ctx context.Context, actor dto.Actor, userID int, req *dto.UpdateEmployeeRequest) (*dto.EmployeeResponse, error) {
	emp, err := s.getEmployee(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Email != "" && req.Email != emp.Email {
		other, err := s.repo.Employee.GetByEmail(ctx, req.Email)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询员工失败", zap.String("email", req.Email), zap.Error(err))
			return nil, err
		}
		if other != nil && other.UserID != userID {
			return nil, ErrEmployeeEmailExists
		}
		emp.Email = req.Email
	}
	if req.Name != "" {
		emp.Name = req.Name
	}
	if req.ScheduleHours != 0 {
		emp.ScheduleHours = req.ScheduleHours
	}

	operator := actor.UserID
	emp.UpdatedBy = &operator

	if err := s.repo.Employee.Update(ctx, emp); err != nil {
		s.logger.Error("更新员工失败", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}
	return toEmployeeResponse(emp), nil
}

// ────────────────────── Deactivate ──────────────────────

func (s *employeeService) Deactivate(ctx context.Context, actor dto.Actor, userID int) error {
	if _, err := s.getEmployee(ctx, userID); err != nil {
		return err
	}

	if err := s.repo.Employee.Deactivate(ctx, userID, actor.UserID); err != nil {
		s.logger.Error("停用员工失败", zap.Int("user_id", userID), zap.Error(err))
		return err
	}

	// 历史考勤与汇总底稿保留；离职后名册不再输出该员工
	s.logger.Info("员工停用", zap.Int("user_id", userID), zap.Int("operator", actor.UserID))
	return nil
}

// ────────────────────── GetBalance ──────────────────────

func (s *employeeService) GetBalance(ctx context.Context, actor dto.Actor, userID int) (*dto.HolidayBalanceResponse, error) {
	if !actor.IsAdmin() && userID != actor.UserID {
		return nil, ErrNotOwnEntry
	}

	emp, err := s.getEmployee(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.HolidayBalanceResponse{UserID: emp.UserID, Balance: emp.HolidayBalance}, nil
}

// ────────────────────── AdjustBalance ──────────────────────

func (s *employeeService) AdjustBalance(ctx context.Context, actor dto.Actor, userID int, req *dto.AdjustBalanceRequest) (*dto.HolidayBalanceResponse, error) {
	if _, err := s.getEmployee(ctx, userID); err != nil {
		return nil, err
	}

	// 原子增减：扣到负数的更新不落库，影响行数为 0
	affected, err := s.repo.Employee.AdjustHolidayBalance(ctx, userID, req.Delta)
	if err != nil {
		s.logger.Error("调整年假余额失败", zap.Int("user_id", userID), zap.Int("delta", req.Delta), zap.Error(err))
		return nil, err
	}
	if affected == 0 {
		return nil, ErrBalanceInsufficient
	}

	emp, err := s.getEmployee(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("年假余额调整",
		zap.Int("user_id", userID), zap.Int("delta", req.Delta),
		zap.Int("balance", emp.HolidayBalance), zap.String("reason", req.Reason),
		zap.Int("operator", actor.UserID))
	return &dto.HolidayBalanceResponse{UserID: emp.UserID, Balance: emp.HolidayBalance}, nil
}

// ── 内部辅助方法 ──

func (s *employeeService) getEmployee(ctx context.Context, userID int) (*model.Employee, error) {
	emp, err := s.repo.Employee.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		s.logger.Error("查询员工失败", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}
	return emp, nil
}

func toEmployeeResponse(emp *model.Employee) *dto.EmployeeResponse {
	return &dto.EmployeeResponse{
		UserID:         emp.UserID,
		Name:           emp.Name,
		Email:          emp.Email,
		ScheduleHours:  emp.ScheduleHours,
		HolidayBalance: emp.HolidayBalance,
		IsActive:       emp.IsActive,
	}
}
