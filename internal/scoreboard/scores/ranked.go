package scores

import (
	"slices"
	"sort"
)

// Ranked 는 key 내림차순으로 최대 capacity 개를 유지하는 컬렉션이다.
// 같은 key 끼리는 먼저 들어온 항목이 앞선다.
type Ranked[T any] struct {
	capacity int
	key      func(T) int64
	items    []T
}

// NewRanked: 기존 items 를 정렬 상태를 유지하며 담는다. capacity 를 넘는 꼬리는 버린다.
func NewRanked[T any](capacity int, key func(T) int64, items []T) *Ranked[T] {
	if capacity <= 0 {
		capacity = 1
	}
	sorted := slices.Clone(items)
	sort.SliceStable(sorted, func(i, j int) bool { return key(sorted[i]) > key(sorted[j]) })
	if len(sorted) > capacity {
		sorted = sorted[:capacity]
	}
	return &Ranked[T]{capacity: capacity, key: key, items: sorted}
}

// Insert: item 을 같은 key 항목들 뒤에 넣는다. 용량 밖으로 밀려나면 false.
func (r *Ranked[T]) Insert(item T) bool {
	k := r.key(item)
	pos := len(r.items)
	for i, existing := range r.items {
		if r.key(existing) < k {
			pos = i
			break
		}
	}
	if pos >= r.capacity {
		return false
	}
	r.items = slices.Insert(r.items, pos, item)
	if len(r.items) > r.capacity {
		r.items = r.items[:r.capacity]
	}
	return true
}

// Items: 현재 항목 사본
func (r *Ranked[T]) Items() []T {
	return slices.Clone(r.items)
}

// Len: 항목 수
func (r *Ranked[T]) Len() int { return len(r.items) }
