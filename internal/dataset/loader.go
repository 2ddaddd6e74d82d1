// 包 dataset：设施数据的读穿加载器
//
// 背景：
// - 原始表文本来自本地目录或 PostgreSQL；解析与归一化只在首次加载时进行
// - 解析结果依次经过进程内 LRU 与可选 Redis 两级缓存
// - 位置层级树单独以 TTL 缓存保存
//
// 约束：
// - 缓存对象由调用方构造并传入，加载器不持有全局状态
// - 同一键的并发未命中合并为一次加载
// - 返回的 Dataset 与 Tree 为共享只读数据，调用方不得修改
package dataset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"facility-api/internal/cache"
	"facility-api/internal/facility"
	"facility-api/internal/location"
	"facility-api/internal/logger"
	"facility-api/internal/metrics"
	"facility-api/internal/tabular"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// SampleSize：随 Dataset 保留的原始样本行数
const SampleSize = 5

// DefaultFetchTimeout：合并加载的默认超时
const DefaultFetchTimeout = 30 * time.Second

// ErrTreeNotFound：没有可用的位置层级文档
var ErrTreeNotFound = errors.New("dataset: location tree not found")

// Dataset：一次加载的解析与归一化结果
type Dataset struct {
	Category   facility.Category   `json:"category"`
	District   string              `json:"district"`
	Header     []string            `json:"header"`
	Facilities []facility.Facility `json:"facilities"`
	Samples    []tabular.Record    `json:"samples"`
	Warnings   []tabular.Warning   `json:"warnings,omitempty"`
	LoadedAt   time.Time           `json:"loadedAt"`
}

// Options：加载器依赖
type Options struct {
	Source  Source
	TreeDir string
	Records *cache.LRU[string, *Dataset]
	Redis   *RedisTier
	TreeTTL time.Duration
	// FetchTimeout：合并加载的超时，≤ 0 时取 DefaultFetchTimeout
	FetchTimeout time.Duration
}

// Loader：读穿加载器
type Loader struct {
	src     Source
	treeDir string
	records *cache.LRU[string, *Dataset]
	redis   *RedisTier
	trees   *gocache.Cache
	group   singleflight.Group
	timeout time.Duration
}

// NewLoader：Records 为空时使用默认容量、不过期的 LRU；TreeTTL ≤ 0 表示树不过期
func NewLoader(o Options) *Loader {
	if o.Records == nil {
		o.Records = cache.New[string, *Dataset](cache.DefaultCapacity, 0)
	}
	timeout := o.FetchTimeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	ttl, cleanup := o.TreeTTL, o.TreeTTL
	if ttl <= 0 {
		ttl, cleanup = gocache.NoExpiration, 0
	}
	return &Loader{
		src:     o.Source,
		treeDir: o.TreeDir,
		records: o.Records,
		redis:   o.Redis,
		trees:   gocache.New(ttl, cleanup),
		timeout: timeout,
	}
}

// Key：缓存键 "<category>:<district>"
func Key(c facility.Category, district string) string {
	return c.String() + ":" + district
}

// Load：按类别与区加载设施数据
func (l *Loader) Load(ctx context.Context, c facility.Category, district string) (*Dataset, error) {
	if !c.Valid() {
		return nil, facility.ErrUnknownCategory
	}
	key := Key(c, district)
	if d, ok := l.records.Get(key); ok {
		metrics.CacheResult(metrics.TierMemory, true)
		logger.L().Debug("cache_hit", "tier", metrics.TierMemory, "key", key)
		return d, nil
	}
	metrics.CacheResult(metrics.TierMemory, false)
	// 合并后的加载不随首个调用方取消；各调用方仍按自己的 ctx 返回
	ch := l.group.DoChan(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
		defer cancel()
		if l.redis != nil {
			if d, ok := l.redis.Get(fctx, key); ok {
				metrics.CacheResult(metrics.TierRedis, true)
				logger.L().Debug("cache_hit", "tier", metrics.TierRedis, "key", key)
				l.records.Set(key, d)
				return d, nil
			}
			metrics.CacheResult(metrics.TierRedis, false)
		}
		d, err := l.fetch(fctx, c, district)
		if err != nil {
			return nil, err
		}
		l.records.Set(key, d)
		if l.redis != nil {
			l.redis.Set(fctx, key, d)
		}
		return d, nil
	})
	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Shared {
		logger.L().Debug("dataset_load_shared", "key", key)
	}
	return res.Val.(*Dataset), nil
}

func (l *Loader) fetch(ctx context.Context, c facility.Category, district string) (*Dataset, error) {
	if l.src == nil {
		return nil, fmt.Errorf("%w: no source configured", ErrSourceNotFound)
	}
	start := time.Now()
	logger.L().Debug("dataset_load_begin", "source", l.src.Name(), "category", c.String(), "district", district)
	text, err := l.src.Read(ctx, c, district)
	if err != nil {
		result := "error"
		if errors.Is(err, ErrSourceNotFound) {
			result = "not_found"
		}
		metrics.SourceLoadsTotal.WithLabelValues(l.src.Name(), result).Inc()
		return nil, err
	}
	metrics.SourceLoadsTotal.WithLabelValues(l.src.Name(), "ok").Inc()
	tbl, err := tabular.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("dataset: parse %s: %w", Key(c, district), err)
	}
	for _, w := range tbl.Warnings {
		metrics.ParseWarningsTotal.WithLabelValues(string(w.Kind)).Inc()
		logger.L().Warn("parse_warning", "category", c.String(), "district", district,
			"line", w.Line, "kind", string(w.Kind), "detail", w.Detail)
	}
	n := len(tbl.Records)
	if n > SampleSize {
		n = SampleSize
	}
	d := &Dataset{
		Category:   c,
		District:   district,
		Header:     tbl.Header,
		Facilities: facility.NormalizeAll(tbl.Records, c),
		Samples:    append([]tabular.Record(nil), tbl.Records[:n]...),
		Warnings:   tbl.Warnings,
		LoadedAt:   time.Now(),
	}
	logger.L().Info("dataset_loaded", "category", c.String(), "district", district,
		"records", len(d.Facilities), "warnings", len(d.Warnings),
		"duration_ms", time.Since(start).Milliseconds())
	return d, nil
}

// TreePaths：按优先级列出层级文档候选路径
// <dir>/locations/<district>.{json,yaml,yml}，其次 <dir>/locations.{json,yaml,yml}
func (l *Loader) TreePaths(district string) []string {
	var out []string
	exts := []string{".json", ".yaml", ".yml"}
	if district != "" && validDistrict(district) {
		for _, e := range exts {
			out = append(out, filepath.Join(l.treeDir, "locations", district+e))
		}
	}
	for _, e := range exts {
		out = append(out, filepath.Join(l.treeDir, "locations"+e))
	}
	return out
}

// Tree：加载位置层级树
func (l *Loader) Tree(ctx context.Context, district string) (*location.Tree, error) {
	key := "tree:" + district
	if v, ok := l.trees.Get(key); ok {
		metrics.CacheResult(metrics.TierTree, true)
		return v.(*location.Tree), nil
	}
	metrics.CacheResult(metrics.TierTree, false)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, err, _ := l.group.Do(key, func() (any, error) {
		for _, p := range l.TreePaths(district) {
			if _, err := os.Stat(p); err != nil {
				continue
			}
			t, err := location.LoadFile(p)
			if err != nil {
				return nil, err
			}
			l.trees.SetDefault(key, t)
			return t, nil
		}
		return nil, fmt.Errorf("%w: district %q", ErrTreeNotFound, district)
	})
	if err != nil {
		return nil, err
	}
	return v.(*location.Tree), nil
}

// Invalidate：移除单个类别与区的缓存（两级）
func (l *Loader) Invalidate(ctx context.Context, c facility.Category, district string) {
	key := Key(c, district)
	l.records.Invalidate(key)
	if l.redis != nil {
		l.redis.Delete(ctx, key)
	}
	logger.L().Info("cache_invalidate", "key", key)
}

// InvalidateCategory：移除某类别全部区的缓存，返回进程内移除数量
func (l *Loader) InvalidateCategory(ctx context.Context, c facility.Category) int {
	prefix := c.String() + ":"
	n := l.records.InvalidateFunc(func(k string) bool { return strings.HasPrefix(k, prefix) })
	if l.redis != nil {
		l.redis.DeleteMatch(ctx, prefix+"*")
	}
	logger.L().Info("cache_invalidate_category", "category", c.String(), "removed", n)
	return n
}

// InvalidateAll：清空记录缓存（两级）
func (l *Loader) InvalidateAll(ctx context.Context) {
	l.records.Purge()
	if l.redis != nil {
		l.redis.DeleteMatch(ctx, "*")
	}
	logger.L().Info("cache_purge")
}

// InvalidateTrees：清空位置层级树缓存
func (l *Loader) InvalidateTrees() {
	l.trees.Flush()
	logger.L().Info("tree_cache_purge")
}

// Stats：当前缓存条目数
func (l *Loader) Stats() (records, trees int) {
	return l.records.Len(), l.trees.ItemCount()
}
