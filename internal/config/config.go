// 包 config：集中读取运行参数；所有字段来自环境变量并带默认值
package config

import (
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config：服务与命令行工具共享的运行参数
type Config struct {
	Addr       string
	APIBase    string
	DataDir    string
	Source     string // file | postgres
	AdminToken string

	CacheCapacity int
	CacheTTL      time.Duration
	TreeCacheTTL  time.Duration

	RedisEnabled bool
	RedisTTL     time.Duration

	RateLimitEnabled bool
	RateLimitQPS     int

	CORSOrigins []string

	TLSEnabled  bool
	TLSCertPath string
	TLSKeyPath  string

	// SyncInterval：数据目录定期同步到数据库的间隔，0 表示关闭
	SyncInterval time.Duration

	Postgres Postgres
	Redis    Redis
}

// Postgres：PG_* 连接参数与连接池大小
type Postgres struct {
	Host         string
	Port         string
	User         string
	Password     string
	DB           string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

// DSN：拼接 lib/pq 连接串；密码按 URL 规则转义
func (p Postgres) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.User(p.User),
		Host:     net.JoinHostPort(p.Host, p.Port),
		Path:     "/" + p.DB,
		RawQuery: "sslmode=" + url.QueryEscape(p.SSLMode),
	}
	if p.Password != "" {
		u.User = url.UserPassword(p.User, p.Password)
	}
	return u.String()
}

// Redis：REDIS_* 连接参数
type Redis struct {
	Addr     string
	Password string
	DB       int
}

// Load：读取环境变量构建配置
// 约束：数值解析失败时静默回退默认值；不校验目录是否存在
func Load() Config {
	return Config{
		Addr:             getEnv("ADDR", ":8080"),
		APIBase:          getEnv("API_BASE", "/api"),
		DataDir:          getEnv("DATA_DIR", "data"),
		Source:           strings.ToLower(getEnv("SOURCE", "file")),
		AdminToken:       os.Getenv("ADMIN_TOKEN"),
		CacheCapacity:    getEnvInt("CACHE_CAPACITY", 64),
		CacheTTL:         getEnvSeconds("CACHE_TTL_S", 3600),
		TreeCacheTTL:     getEnvSeconds("TREE_CACHE_TTL_S", 6*3600),
		RedisEnabled:     getEnvBool("REDIS_ENABLED", false),
		RedisTTL:         getEnvSeconds("REDIS_TTL_S", 3600),
		RateLimitEnabled: getEnvBool("RATE_LIMIT_ENABLED", false),
		RateLimitQPS:     getEnvInt("RATE_LIMIT_QPS", 200),
		CORSOrigins:      splitList(getEnv("CORS_ORIGINS", "*")),
		TLSEnabled:       getEnvBool("TLS_ENABLE", false),
		TLSCertPath:      getEnv("TLS_CERT_PATH", filepath.Join("data", "certs", "server.crt")),
		TLSKeyPath:       getEnv("TLS_KEY_PATH", filepath.Join("data", "certs", "server.key")),
		SyncInterval:     getEnvSeconds("SYNC_INTERVAL_S", 0),
		Postgres: Postgres{
			Host:         getEnv("PG_HOST", "localhost"),
			Port:         getEnv("PG_PORT", "5432"),
			User:         getEnv("PG_USER", "postgres"),
			Password:     os.Getenv("PG_PASSWORD"),
			DB:           getEnv("PG_DB", "facility"),
			SSLMode:      getEnv("PG_SSLMODE", "disable"),
			MaxOpenConns: getEnvInt("PG_MAX_OPEN_CONNS", 50),
			MaxIdleConns: getEnvInt("PG_MAX_IDLE_CONNS", 25),
		},
		Redis: Redis{
			Addr:     net.JoinHostPort(getEnv("REDIS_HOST", "127.0.0.1"), getEnv("REDIS_PORT", "6379")),
			Password: os.Getenv("REDIS_PASS"),
			DB:       getEnvInt("REDIS_DB", 0),
		},
	}
}

// EnvFiles：godotenv 候选文件，按顺序加载
func EnvFiles() []string {
	return []string{".env", filepath.Join("data", "env", ".env")}
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return def
}

func getEnvSeconds(key string, def int) time.Duration {
	return time.Duration(getEnvInt(key, def)) * time.Second
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
