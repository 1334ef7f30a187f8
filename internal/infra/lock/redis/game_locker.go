// Package redislock 提供基于 Redis 的对局级互斥锁，是 GameLocker 接口的实现。
// 每个对局码一把锁，保证同一对局的 load-mutate-save 串行执行；
// 不同对局码完全并发。锁带过期时间，持有者异常退出后自动释放。
package redislock

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/samuel-nelson/spyfall-game/internal/repository"
)

const (
	lockTTL       = 5 * time.Second        // 单次持锁上限，防止死锁
	acquireWait   = 3 * time.Second        // 获取锁的总等待时间
	retryInterval = 50 * time.Millisecond  // 抢锁重试间隔
)

// releaseScript 只在 token 匹配时删除 key，避免释放掉别人的锁
// (自己的锁过期后被其他请求抢到的情况)。
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisGameLocker 是 repository.GameLocker 的 Redis 实现
type RedisGameLocker struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisGameLocker 创建 RedisGameLocker 实例
func NewRedisGameLocker(client *redis.Client, keyPrefix string) *RedisGameLocker {
	if client == nil {
		panic("redis client cannot be nil for RedisGameLocker")
	}
	return &RedisGameLocker{client: client, keyPrefix: keyPrefix}
}

func (l *RedisGameLocker) lockKey(code string) string {
	return l.keyPrefix + "lock:game:" + code
}

// Acquire 以 SET NX PX 抢占对局锁，在 acquireWait 内轮询重试。
// 成功时返回释放函数；超时返回 ErrLockNotAcquired。
func (l *RedisGameLocker) Acquire(ctx context.Context, code string) (func(), error) {
	key := l.lockKey(code)
	token := uuid.NewString()
	deadline := time.Now().Add(acquireWait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, lockTTL).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() { l.release(key, token) }, nil
		}
		if time.Now().After(deadline) {
			return nil, repository.ErrLockNotAcquired
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}
}

// release 使用独立的后台上下文，请求被取消时锁仍能正常释放
func (l *RedisGameLocker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil && err != redis.Nil {
		// 释放失败不致命，锁会随 TTL 过期
		logrus.WithError(err).WithField("lock_key", key).Warn("Failed to release game lock")
	}
}
