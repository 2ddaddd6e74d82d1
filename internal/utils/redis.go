// 包 utils：连接与证书工具（Redis 客户端、自签名 TLS 证书）
package utils

import (
	"facility-api/internal/config"
	"facility-api/internal/logger"

	"github.com/redis/go-redis/v9"
)

// OpenRedis：按配置创建 Redis 客户端（不做连通性检查）
// 约束：地址为空时返回 nil，调用方据此关闭 Redis 层
func OpenRedis(c config.Redis) *redis.Client {
	if c.Addr == "" {
		return nil
	}
	logger.L().Debug("redis_open", "addr", c.Addr, "db", c.DB)
	return redis.NewClient(&redis.Options{Addr: c.Addr, Password: c.Password, DB: c.DB})
}
