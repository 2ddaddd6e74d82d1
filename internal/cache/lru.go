// 包 cache：进程内有界 LRU 缓存
// 背景：解析后的设施记录在同一进程内被多次请求复用，避免重复解析
// 约束：容量与 TTL 在构造时确定；由调用方持有并传入加载器，不作为全局状态
package cache

import (
	"container/list"
	"sync"
	"time"
)

// DefaultCapacity：容量非正时使用的默认值
const DefaultCapacity = 64

// LRU：带 TTL 的最近最少使用缓存，并发安全
type LRU[K comparable, V any] struct {
	mu   sync.Mutex
	cap  int
	ttl  time.Duration
	lst  *list.List
	dict map[K]*list.Element
	now  func() time.Time
}

type entry[K comparable, V any] struct {
	k   K
	v   V
	exp time.Time
}

// New：capacity ≤ 0 取 DefaultCapacity；ttl ≤ 0 表示不过期
func New[K comparable, V any](capacity int, ttl time.Duration) *LRU[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &LRU[K, V]{cap: capacity, ttl: ttl, lst: list.New(), dict: make(map[K]*list.Element), now: time.Now}
}

func (c *LRU[K, V]) expired(e entry[K, V]) bool {
	return c.ttl > 0 && !c.now().Before(e.exp)
}

// Get：命中且未过期时返回值并提升为最近使用；过期条目在访问时移除
func (c *LRU[K, V]) Get(k K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero V
	el, ok := c.dict[k]
	if !ok {
		return zero, false
	}
	it := el.Value.(entry[K, V])
	if c.expired(it) {
		c.lst.Remove(el)
		delete(c.dict, k)
		return zero, false
	}
	c.lst.MoveToFront(el)
	return it.v, true
}

// Set：写入或覆盖；超过容量时淘汰最久未使用的条目
func (c *LRU[K, V]) Set(k K, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	it := entry[K, V]{k: k, v: v, exp: c.now().Add(c.ttl)}
	if el, ok := c.dict[k]; ok {
		el.Value = it
		c.lst.MoveToFront(el)
		return
	}
	c.dict[k] = c.lst.PushFront(it)
	for c.lst.Len() > c.cap {
		back := c.lst.Back()
		if back == nil {
			break
		}
		delete(c.dict, back.Value.(entry[K, V]).k)
		c.lst.Remove(back)
	}
}

// Invalidate：移除单个键，返回是否存在
func (c *LRU[K, V]) Invalidate(k K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.dict[k]
	if ok {
		c.lst.Remove(el)
		delete(c.dict, k)
	}
	return ok
}

// InvalidateFunc：移除所有满足条件的键，返回移除数量
func (c *LRU[K, V]) InvalidateFunc(match func(K) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k, el := range c.dict {
		if match(k) {
			c.lst.Remove(el)
			delete(c.dict, k)
			n++
		}
	}
	return n
}

// Purge：清空
func (c *LRU[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lst.Init()
	c.dict = make(map[K]*list.Element)
}

// Len：当前条目数（含尚未被访问清理的过期条目）
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lst.Len()
}

// Cap：容量
func (c *LRU[K, V]) Cap() int { return c.cap }
