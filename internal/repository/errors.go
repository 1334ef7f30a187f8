package repository

import "errors"

// 通用的存储库错误
var (
	// ErrNotFound 表示请求的记录未找到
	ErrNotFound = errors.New("repository: record not found")
	// ErrDuplicateEntry 表示插入的数据违反了唯一约束
	ErrDuplicateEntry = errors.New("repository: duplicate entry")
	// ErrVersionConflict 表示并发更新时发生乐观锁版本冲突
	ErrVersionConflict = errors.New("repository: version conflict")
	// ErrLockNotAcquired 表示在超时时间内未能获取对局锁
	ErrLockNotAcquired = errors.New("repository: lock not acquired")
)

// 特定资源的错误
var (
	ErrGameNotFound = ErrNotFound
)
