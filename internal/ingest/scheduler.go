package ingest

import (
	"context"
	"time"

	"facility-api/internal/logger"
)

// StartPeriodic：按固定间隔在后台协程中重复执行 fn，首次执行在一个间隔之后
// 背景：用于定期把数据目录同步到数据库并刷新缓存；错误由日志记录，任务继续调度
// 约束：interval ≤ 0 时不启动；ctx 取消后退出
func StartPeriodic(ctx context.Context, interval time.Duration, name string, fn func(context.Context) error) {
	if interval <= 0 {
		return
	}
	l := logger.L()
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				l.Info("periodic_stop", "task", name)
				return
			case <-t.C:
				l.Info("periodic_start", "task", name)
				if err := fn(ctx); err != nil {
					l.Error("periodic_error", "task", name, "err", err)
				} else {
					l.Info("periodic_done", "task", name)
				}
			}
		}
	}()
}
