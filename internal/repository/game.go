package repository

import (
	"context"
	"time"

	"github.com/samuel-nelson/spyfall-game/internal/domain"
)

// GameRepository 定义了 Game 聚合的存储和检索操作。
// 单次调用是原子的，但跨调用之间没有事务隔离——并发控制由
// GameLocker 串行化加上 Save 的版本校验共同保证。
type GameRepository interface {
	// FindByCode 按对局码查找。不存在时返回 ErrGameNotFound。
	FindByCode(ctx context.Context, code string) (*domain.Game, error)

	// Save 执行 upsert: 首次保存时创建记录，之后按 Version 做乐观
	// 并发校验更新。版本落后时返回 ErrVersionConflict；新建时撞上
	// 唯一索引返回 ErrDuplicateEntry。成功后 game.Version 被推进。
	Save(ctx context.Context, game *domain.Game) error

	// Delete 按对局码删除，删除不存在的记录是 no-op 而不是错误。
	Delete(ctx context.Context, code string) error

	// IsCodeExists 检查对局码是否已被占用，用于生成码的重试循环。
	IsCodeExists(ctx context.Context, code string) (bool, error)

	// FindStale 返回创建时间早于 olderThan 的对局，供过期清理任务使用。
	FindStale(ctx context.Context, olderThan time.Time) ([]domain.Game, error)
}

// GameLocker 把同一对局码上的修改串行化，不同对局码之间完全并发。
// Acquire 返回释放函数；锁带超时，持有者崩溃后锁会自动过期，
// 此时 Save 的版本校验是最后一道防线。
type GameLocker interface {
	Acquire(ctx context.Context, code string) (release func(), err error)
}
