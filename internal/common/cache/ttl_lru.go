// Package cache 는 프로세스 내부 캐시를 둔다.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// TTLLRUCache: 항목마다 만료 시각을 가진 크기 제한 LRU 캐시. nil 수신자는 항상 miss.
type TTLLRUCache[V any] struct {
	mu         sync.Mutex
	maxEntries int
	ttl        time.Duration
	now        func() time.Time
	items      map[string]*list.Element
	order      *list.List
}

type ttlLRUEntry[V any] struct {
	key       string
	value     V
	expiresAt time.Time
}

// NewTTLLRUCache: maxEntries 또는 ttl 이 0 이하면 nil(캐시 없음)을 돌려준다.
func NewTTLLRUCache[V any](maxEntries int, ttl time.Duration) *TTLLRUCache[V] {
	if maxEntries <= 0 || ttl <= 0 {
		return nil
	}
	return &TTLLRUCache[V]{
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
		items:      make(map[string]*list.Element, maxEntries),
		order:      list.New(),
	}
}

// Get: 살아 있는 값을 돌려주고 최근 사용으로 옮긴다. 만료된 항목은 제거한다.
func (c *TTLLRUCache[V]) Get(key string) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return zero, false
	}
	entry := elem.Value.(ttlLRUEntry[V])
	if !entry.expiresAt.After(c.now()) {
		c.removeElement(elem)
		return zero, false
	}
	c.order.MoveToFront(elem)
	return entry.value, true
}

// Set: 값을 저장하고 용량을 넘으면 가장 오래 안 쓴 항목부터 밀어낸다.
func (c *TTLLRUCache[V]) Set(key string, value V) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry := ttlLRUEntry[V]{key: key, value: value, expiresAt: c.now().Add(c.ttl)}
	if elem, ok := c.items[key]; ok {
		elem.Value = entry
		c.order.MoveToFront(elem)
		return
	}
	c.items[key] = c.order.PushFront(entry)

	for len(c.items) > c.maxEntries {
		c.removeElement(c.order.Back())
	}
}

// Delete: 항목을 지운다.
func (c *TTLLRUCache[V]) Delete(key string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}
}

// DeleteFunc: match 가 true 인 키를 모두 지운다.
func (c *TTLLRUCache[V]) DeleteFunc(match func(key string) bool) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, elem := range c.items {
		if match(key) {
			c.removeElement(elem)
		}
	}
}

// Len: 저장된 항목 수 (만료 전 정리되지 않은 항목 포함)
func (c *TTLLRUCache[V]) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *TTLLRUCache[V]) removeElement(elem *list.Element) {
	entry := elem.Value.(ttlLRUEntry[V])
	delete(c.items, entry.key)
	c.order.Remove(elem)
}
