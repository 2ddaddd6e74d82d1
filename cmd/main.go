// 程序入口：仅负责读取配置、初始化依赖并启动服务；API 注册在 internal/api 以便扩展
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"facility-api/internal/api"
	"facility-api/internal/cache"
	"facility-api/internal/config"
	"facility-api/internal/dataset"
	"facility-api/internal/ingest"
	"facility-api/internal/logger"
	"facility-api/internal/metrics"
	"facility-api/internal/middleware"
	"facility-api/internal/migrate"
	"facility-api/internal/report"
	"facility-api/internal/store"
	"facility-api/internal/utils"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	for _, f := range config.EnvFiles() {
		_ = godotenv.Load(f)
	}
	// 日志初始化
	l := logger.Setup()
	l.Debug("log_init_ok")
	cfg := config.Load()
	l.Debug("config_loaded", "addr", cfg.Addr, "api_base", cfg.APIBase, "data_dir", cfg.DataDir, "source", cfg.Source)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		src dataset.Source = dataset.FileSource{Dir: cfg.DataDir}
		st  *store.Store
	)
	if cfg.Source == "postgres" {
		var err error
		st, err = store.Open(ctx, cfg.Postgres.DSN(), cfg.Postgres.MaxOpenConns, cfg.Postgres.MaxIdleConns)
		if err != nil {
			l.Error("db_open_error", "err", err)
			os.Exit(1)
		}
		defer st.Close()
		l.Info("db_open_ok", "host", cfg.Postgres.Host, "db", cfg.Postgres.DB)
		if err := migrate.EnsureSchema(st.DB()); err != nil {
			l.Error("schema_error", "err", err)
			os.Exit(1)
		}
		src = dataset.PostgresSource{Store: st}
	}

	var tier *dataset.RedisTier
	if cfg.RedisEnabled {
		if rc := utils.OpenRedis(cfg.Redis); rc != nil {
			if err := rc.Ping(ctx).Err(); err != nil {
				l.Error("redis_ping_error", "err", err)
			} else {
				l.Info("redis_ping_ok", "addr", cfg.Redis.Addr)
			}
			defer rc.Close()
			tier = dataset.NewRedisTier(rc, cfg.RedisTTL)
		}
	} else {
		l.Info("redis_disabled")
	}

	loader := dataset.NewLoader(dataset.Options{
		Source:  src,
		TreeDir: cfg.DataDir,
		Records: cache.New[string, *dataset.Dataset](cfg.CacheCapacity, cfg.CacheTTL),
		Redis:   tier,
		TreeTTL: cfg.TreeCacheTTL,
	})

	// 背景：数据库模式下可定期把数据目录同步入库，并让受影响的缓存失效
	if st != nil {
		ingest.StartPeriodic(ctx, cfg.SyncInterval, "data_dir_sync", func(ctx context.Context) error {
			res, err := ingest.ImportDir(ctx, st, cfg.DataDir)
			for _, r := range res {
				loader.Invalidate(ctx, r.Category, r.District)
			}
			return err
		})
	}

	apiRouter := api.BuildRoutes(api.Deps{
		Service:    report.New(loader),
		Cache:      loader,
		AdminToken: cfg.AdminToken,
	})
	mux := http.NewServeMux()
	mux.Handle(cfg.APIBase+"/metrics", metrics.Handler())
	mux.Handle(cfg.APIBase+"/", http.StripPrefix(cfg.APIBase, apiRouter))

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Admin-Token", logger.RequestIDHeader},
		ExposedHeaders: []string{logger.RequestIDHeader},
		MaxAge:         600,
	})
	var handler http.Handler = c.Handler(mux)
	handler = logger.AccessMiddleware(l)(handler)
	handler = middleware.Wrap(handler, middleware.Options{
		RateLimitEnabled: cfg.RateLimitEnabled,
		RateLimitQPS:     cfg.RateLimitQPS,
	})
	s := &http.Server{Addr: cfg.Addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		l.Info("shutdown_begin")
		if err := s.Shutdown(shutdownCtx); err != nil {
			l.Error("shutdown_error", "err", err)
		}
	}()

	var err error
	if cfg.TLSEnabled {
		if err := utils.EnsureSelfSignedCert(cfg.TLSCertPath, cfg.TLSKeyPath, "facility-api.local"); err != nil {
			l.Error("tls_cert_error", "err", err)
			os.Exit(1)
		}
		l.Info("listening_tls", "addr", cfg.Addr, "cert", cfg.TLSCertPath)
		err = s.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath)
	} else {
		l.Info("listening", "addr", cfg.Addr)
		err = s.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.Error("server_error", "err", err)
		os.Exit(1)
	}
	l.Info("shutdown_done")
}
