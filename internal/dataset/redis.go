package dataset

import (
	"context"
	"encoding/json"
	"time"

	"facility-api/internal/logger"

	"github.com/redis/go-redis/v9"
)

// RedisTier：跨进程共享的第二级缓存，值为 Dataset 的 JSON
// 约束：所有 Redis 错误仅记日志并按未命中处理，不影响主流程
type RedisTier struct {
	rc     *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisTier：rc 为 nil 时返回 nil（调用方按未启用处理）
func NewRedisTier(rc *redis.Client, ttl time.Duration) *RedisTier {
	if rc == nil {
		return nil
	}
	return &RedisTier{rc: rc, ttl: ttl, prefix: "facility:"}
}

func (r *RedisTier) key(k string) string { return r.prefix + k }

// Get：读取并反序列化
func (r *RedisTier) Get(ctx context.Context, k string) (*Dataset, bool) {
	s, err := r.rc.Get(ctx, r.key(k)).Result()
	if err != nil {
		if err != redis.Nil {
			logger.L().Warn("redis_get_error", "key", k, "err", err)
		}
		return nil, false
	}
	var d Dataset
	if err := json.Unmarshal([]byte(s), &d); err != nil {
		logger.L().Warn("redis_decode_error", "key", k, "err", err)
		return nil, false
	}
	return &d, true
}

// Set：序列化写入，TTL ≤ 0 时不过期
func (r *RedisTier) Set(ctx context.Context, k string, d *Dataset) {
	b, err := json.Marshal(d)
	if err != nil {
		logger.L().Warn("redis_encode_error", "key", k, "err", err)
		return
	}
	ttl := r.ttl
	if ttl < 0 {
		ttl = 0
	}
	if err := r.rc.Set(ctx, r.key(k), string(b), ttl).Err(); err != nil {
		logger.L().Warn("redis_set_error", "key", k, "err", err)
	}
}

// Delete：删除若干键
func (r *RedisTier) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
	}
	if err := r.rc.Del(ctx, full...).Err(); err != nil {
		logger.L().Warn("redis_del_error", "keys", len(keys), "err", err)
	}
}

// DeleteMatch：按通配模式（不含前缀）删除，返回删除数量
func (r *RedisTier) DeleteMatch(ctx context.Context, pattern string) int {
	n := 0
	iter := r.rc.Scan(ctx, 0, r.key(pattern), 100).Iterator()
	for iter.Next(ctx) {
		if err := r.rc.Del(ctx, iter.Val()).Err(); err != nil {
			logger.L().Warn("redis_del_error", "key", iter.Val(), "err", err)
			continue
		}
		n++
	}
	if err := iter.Err(); err != nil {
		logger.L().Warn("redis_scan_error", "pattern", pattern, "err", err)
	}
	return n
}
