package gormpersistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/samuel-nelson/spyfall-game/internal/domain"
	"github.com/samuel-nelson/spyfall-game/internal/repository"
)

// GameRecord 是 games 表的行结构。Game 聚合整体序列化进 Data 列，
// Version 列承载乐观并发校验。
type GameRecord struct {
	ID        uint      `gorm:"primaryKey"`
	Code      string    `gorm:"uniqueIndex;size:16;not null"` // 6 位对局码
	Data      string    `gorm:"type:json;not null"`           // Game 聚合的 JSON 文档
	Version   uint      `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"` // 过期清理按此列过滤
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (GameRecord) TableName() string {
	return "games"
}

// GormGameRepository 是 GameRepository 接口的 GORM 实现
type GormGameRepository struct {
	db *gorm.DB
}

// NewGormGameRepository 创建 GormGameRepository 实例
func NewGormGameRepository(db *gorm.DB) *GormGameRepository {
	if db == nil {
		panic("database connection cannot be nil for GormGameRepository")
	}
	return &GormGameRepository{db: db}
}

// FindByCode 按对局码查找并反序列化 Game 聚合
func (r *GormGameRepository) FindByCode(ctx context.Context, code string) (*domain.Game, error) {
	var record GameRecord
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrGameNotFound
		}
		return nil, fmt.Errorf("gorm: find game by code %s: %w", code, err)
	}
	return decodeRecord(&record)
}

// Save 实现 upsert 语义: game.Version == 0 时创建，否则按版本号更新。
// 更新语句带 WHERE version = ? 条件，RowsAffected 为 0 说明版本已被
// 并发推进 (或记录被删除)，返回 ErrVersionConflict 交由调用方重试。
func (r *GormGameRepository) Save(ctx context.Context, game *domain.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("gorm: marshal game %s: %w", game.Code, err)
	}

	if game.Version == 0 {
		record := GameRecord{
			Code:    game.Code,
			Data:    string(data),
			Version: 1,
		}
		if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
			if isDuplicateEntryError(err) {
				return repository.ErrDuplicateEntry
			}
			return fmt.Errorf("gorm: create game %s: %w", game.Code, err)
		}
		game.Version = 1
		return nil
	}

	result := r.db.WithContext(ctx).
		Model(&GameRecord{}).
		Where("code = ? AND version = ?", game.Code, game.Version).
		Updates(map[string]interface{}{
			"data":    string(data),
			"version": game.Version + 1,
		})
	if result.Error != nil {
		return fmt.Errorf("gorm: update game %s: %w", game.Code, result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrVersionConflict
	}
	game.Version++
	return nil
}

// Delete 按对局码删除，记录不存在时静默成功 (幂等)
func (r *GormGameRepository) Delete(ctx context.Context, code string) error {
	err := r.db.WithContext(ctx).Where("code = ?", code).Delete(&GameRecord{}).Error
	if err != nil {
		return fmt.Errorf("gorm: delete game %s: %w", code, err)
	}
	return nil
}

// IsCodeExists 检查对局码是否已被占用
func (r *GormGameRepository) IsCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&GameRecord{}).Where("code = ?", code).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("gorm: check game code %s: %w", code, err)
	}
	return count > 0, nil
}

// FindStale 返回创建时间早于 olderThan 的对局。单行反序列化失败只记日志
// 跳过，不让整个清理扫描失败。
func (r *GormGameRepository) FindStale(ctx context.Context, olderThan time.Time) ([]domain.Game, error) {
	var records []GameRecord
	err := r.db.WithContext(ctx).Where("created_at < ?", olderThan).Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: find stale games: %w", err)
	}

	games := make([]domain.Game, 0, len(records))
	for i := range records {
		game, err := decodeRecord(&records[i])
		if err != nil {
			logrus.WithError(err).WithField("game_code", records[i].Code).
				Warn("Skipping undecodable stale game record")
			continue
		}
		games = append(games, *game)
	}
	return games, nil
}

// decodeRecord 将行记录还原为 Game 聚合，并带上持久化版本号
func decodeRecord(record *GameRecord) (*domain.Game, error) {
	var game domain.Game
	if err := json.Unmarshal([]byte(record.Data), &game); err != nil {
		return nil, fmt.Errorf("gorm: unmarshal game %s: %w", record.Code, err)
	}
	game.Version = record.Version
	return &game, nil
}

// isDuplicateEntryError 判断是否是 MySQL 唯一约束冲突 (错误码 1062)
func isDuplicateEntryError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}
