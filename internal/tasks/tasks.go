package tasks

import (
	"encoding/json"
	"time"
)

// 定义任务类型常量
const (
	TypeGameCleanup = "game:cleanup" // 过期对局清理任务类型
)

// GameCleanupPayload 定义了过期对局清理任务的数据结构。
// MaxAge 表示对局自创建起允许存活的最长时间，超过即删除。
type GameCleanupPayload struct {
	MaxAge time.Duration `json:"max_age"`
}

// NewGameCleanupPayload 序列化一个清理任务的 payload。
func NewGameCleanupPayload(maxAge time.Duration) ([]byte, error) {
	payload := GameCleanupPayload{MaxAge: maxAge}
	return json.Marshal(payload)
}
