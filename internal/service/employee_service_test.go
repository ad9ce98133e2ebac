package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/thlhody/GraphicDepartmentv30-sub004/internal/dto"
	"github.com/thlhody/GraphicDepartmentv30-sub004/internal/repository"
)

// ── 测试辅助 ──

func setupTestEmployeeService() (EmployeeService, *mockEmployeeRepo) {
	empRepo := newMockEmployeeRepo()
	repo := &repository.Repository{
		Employee:         empRepo,
		WorkEntry:        newMockWorkEntryRepo(),
		ConsolidationRun: newMockRunRepo(),
	}
	logger := zap.NewNop()
	svc := NewEmployeeService(8, repo, logger)
	return svc, empRepo
}

// ── Create 测试 ──

func TestEmployeeService_Create_Success(t *testing.T) {
	svc, _ := setupTestEmployeeService()

	result, err := svc.Create(context.Background(), actorAdmin, &dto.CreateEmployeeRequest{
		Name:  "张小明",
		Email: "zhangxm@example.com",
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.UserID == 0 {
		t.Error("建档应分配工号")
	}
	if result.ScheduleHours != 8 {
		t.Errorf("未指定时应落默认日标准工时 8，实际: %d", result.ScheduleHours)
	}
	if !result.IsActive {
		t.Error("新建员工应为在册状态")
	}
	if result.HolidayBalance != 0 {
		t.Errorf("未指定时年假余额应为 0，实际: %d", result.HolidayBalance)
	}
}

func TestEmployeeService_Create_CustomSchedule(t *testing.T) {
	svc, _ := setupTestEmployeeService()

	result, err := svc.Create(context.Background(), actorAdmin, &dto.CreateEmployeeRequest{
		Name:           "李小红",
		Email:          "lixh@example.com",
		ScheduleHours:  6,
		HolidayBalance: 21,
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.ScheduleHours != 6 || result.HolidayBalance != 21 {
		t.Errorf("指定值应生效，实际: %d/%d", result.ScheduleHours, result.HolidayBalance)
	}
}

func TestEmployeeService_Create_DuplicateEmail(t *testing.T) {
	svc, empRepo := setupTestEmployeeService()
	empRepo.employees[1] = testEmployee(1, 8)

	_, err := svc.Create(context.Background(), actorAdmin, &dto.CreateEmployeeRequest{
		Name:  "王小刚",
		Email: "user1@example.com",
	})
	if !errors.Is(err, ErrEmployeeEmailExists) {
		t.Errorf("期望 ErrEmployeeEmailExists，实际: %v", err)
	}
}

// ── Update / Deactivate 测试 ──

func TestEmployeeService_Update(t *testing.T) {
	svc, empRepo := setupTestEmployeeService()
	empRepo.employees[1] = testEmployee(1, 8)
	empRepo.employees[2] = testEmployee(2, 8)

	result, err := svc.Update(context.Background(), actorAdmin, 1, &dto.UpdateEmployeeRequest{
		ScheduleHours: 6,
	})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if result.ScheduleHours != 6 {
		t.Errorf("日标准工时应更新为 6，实际: %d", result.ScheduleHours)
	}
	if result.Name != "员工1" || result.Email != "user1@example.com" {
		t.Errorf("零值字段不应改动: %s %s", result.Name, result.Email)
	}

	_, err = svc.Update(context.Background(), actorAdmin, 1, &dto.UpdateEmployeeRequest{
		Email: "user2@example.com",
	})
	if !errors.Is(err, ErrEmployeeEmailExists) {
		t.Errorf("改成他人邮箱应拒绝，实际: %v", err)
	}

	_, err = svc.Update(context.Background(), actorAdmin, 77, &dto.UpdateEmployeeRequest{Name: "无名"})
	if !errors.Is(err, ErrEmployeeNotFound) {
		t.Errorf("期望 ErrEmployeeNotFound，实际: %v", err)
	}
}

func TestEmployeeService_Deactivate(t *testing.T) {
	svc, empRepo := setupTestEmployeeService()
	empRepo.employees[1] = testEmployee(1, 8)
	empRepo.employees[2] = testEmployee(2, 8)

	if err := svc.Deactivate(context.Background(), actorAdmin, 2); err != nil {
		t.Fatalf("Deactivate 应成功: %v", err)
	}

	roster, err := empRepo.ListActive(context.Background())
	if err != nil {
		t.Fatalf("ListActive 应成功: %v", err)
	}
	if len(roster) != 1 || roster[0].UserID != 1 {
		t.Errorf("停用后名册应只剩员工 1: %+v", roster)
	}

	if err := svc.Deactivate(context.Background(), actorAdmin, 77); !errors.Is(err, ErrEmployeeNotFound) {
		t.Errorf("期望 ErrEmployeeNotFound，实际: %v", err)
	}
}

// ── List / GetByID 测试 ──

func TestEmployeeService_List(t *testing.T) {
	svc, empRepo := setupTestEmployeeService()
	for i := 1; i <= 3; i++ {
		empRepo.employees[i] = testEmployee(i, 8)
	}

	result, err := svc.List(context.Background(), &dto.EmployeeListRequest{})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if result.Total != 3 || len(result.Items) != 3 {
		t.Errorf("期望 3 名员工，实际: %d/%d", result.Total, len(result.Items))
	}
	if result.Items[0].UserID != 1 {
		t.Errorf("列表应按工号升序，实际首位: %d", result.Items[0].UserID)
	}
}

func TestEmployeeService_GetByID_NotFound(t *testing.T) {
	svc, _ := setupTestEmployeeService()

	_, err := svc.GetByID(context.Background(), 77)
	if !errors.Is(err, ErrEmployeeNotFound) {
		t.Errorf("期望 ErrEmployeeNotFound，实际: %v", err)
	}
}

// ── 年假余额测试 ──

func TestEmployeeService_GetBalance_Ownership(t *testing.T) {
	svc, empRepo := setupTestEmployeeService()
	emp := testEmployee(1, 8)
	emp.HolidayBalance = 15
	empRepo.employees[1] = emp
	empRepo.employees[2] = testEmployee(2, 8)

	result, err := svc.GetBalance(context.Background(), actorUser, 1)
	if err != nil {
		t.Fatalf("查询本人余额应成功: %v", err)
	}
	if result.Balance != 15 {
		t.Errorf("期望余额 15，实际: %d", result.Balance)
	}

	_, err = svc.GetBalance(context.Background(), actorUser, 2)
	if !errors.Is(err, ErrNotOwnEntry) {
		t.Errorf("员工越权查余额应拒绝，实际: %v", err)
	}

	// 管理员可查任何人
	if _, err := svc.GetBalance(context.Background(), actorAdmin, 2); err != nil {
		t.Errorf("管理员查询应成功: %v", err)
	}
}

func TestEmployeeService_AdjustBalance(t *testing.T) {
	svc, empRepo := setupTestEmployeeService()
	emp := testEmployee(1, 8)
	emp.HolidayBalance = 5
	empRepo.employees[1] = emp

	ctx := context.Background()
	result, err := svc.AdjustBalance(ctx, actorAdmin, 1, &dto.AdjustBalanceRequest{Delta: 3, Reason: "年度额度发放"})
	if err != nil {
		t.Fatalf("增加余额应成功: %v", err)
	}
	if result.Balance != 8 {
		t.Errorf("期望余额 8，实际: %d", result.Balance)
	}

	result, err = svc.AdjustBalance(ctx, actorAdmin, 1, &dto.AdjustBalanceRequest{Delta: -8, Reason: "休假扣减"})
	if err != nil {
		t.Fatalf("扣减余额应成功: %v", err)
	}
	if result.Balance != 0 {
		t.Errorf("期望余额 0，实际: %d", result.Balance)
	}

	_, err = svc.AdjustBalance(ctx, actorAdmin, 1, &dto.AdjustBalanceRequest{Delta: -1, Reason: "休假扣减"})
	if !errors.Is(err, ErrBalanceInsufficient) {
		t.Errorf("扣到负数应拒绝，实际: %v", err)
	}
	if empRepo.employees[1].HolidayBalance != 0 {
		t.Errorf("被拒的扣减不应改动余额: %d", empRepo.employees[1].HolidayBalance)
	}
}
