package docstore

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// 연산 이름 (Fault 훅 인자)
const (
	OpGet    = "get"
	OpSet    = "set"
	OpAdd    = "add"
	OpList   = "list"
	OpDelete = "delete"
)

// Fault: 연산 직전에 호출되어 nil 이 아닌 에러를 돌려주면 그 연산을 실패시킨다.
type Fault func(op, collection, id string) error

type memoryDoc struct {
	data      Data
	createdAt time.Time
	updatedAt time.Time
}

// MemoryStore: 프로세스 내부 Store 구현. 저장 값은 JSON 정규화된 사본이다.
type MemoryStore struct {
	mu     sync.RWMutex
	now    func() time.Time
	docs   map[string]map[string]*memoryDoc
	fault  Fault
	sets   int
	adds   int
	nextID func() string
}

// MemoryOption: MemoryStore 설정 옵션
type MemoryOption func(*MemoryStore)

// WithClock: 서버 시각 함수를 바꾼다.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

// WithFault: 연산별 실패 주입 훅
func WithFault(fault Fault) MemoryOption {
	return func(s *MemoryStore) { s.fault = fault }
}

// NewMemoryStore: 빈 MemoryStore
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		now:    time.Now,
		docs:   make(map[string]map[string]*memoryDoc),
		nextID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) checkFault(op, collection, id string) error {
	if s.fault == nil {
		return nil
	}
	return s.fault(op, collection, id)
}

func (s *MemoryStore) Get(_ context.Context, collection, id string) (Snapshot, error) {
	if err := s.checkFault(OpGet, collection, id); err != nil {
		return Snapshot{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[collection][id]
	if !ok {
		return Snapshot{}, fmt.Errorf("get %s/%s: %w", collection, id, ErrNotFound)
	}
	return s.snapshot(id, doc)
}

func (s *MemoryStore) Set(_ context.Context, collection, id string, data Data, opts SetOptions) error {
	if err := s.checkFault(OpSet, collection, id); err != nil {
		return err
	}

	now := s.now().UTC()
	prepared, err := Prepare(data, now)
	if err != nil {
		return fmt.Errorf("prepare %s/%s: %w", collection, id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	coll := s.collection(collection)
	existing, ok := coll[id]
	switch {
	case !ok:
		coll[id] = &memoryDoc{data: prepared, createdAt: now, updatedAt: now}
	case opts.Merge:
		existing.data = MergeData(existing.data, prepared)
		existing.updatedAt = now
	default:
		existing.data = prepared
		existing.updatedAt = now
	}
	s.sets++
	return nil
}

func (s *MemoryStore) Add(_ context.Context, collection string, data Data) (Ref, error) {
	if err := s.checkFault(OpAdd, collection, ""); err != nil {
		return Ref{}, err
	}

	now := s.now().UTC()
	prepared, err := Prepare(data, now)
	if err != nil {
		return Ref{}, fmt.Errorf("prepare %s: %w", collection, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID()
	s.collection(collection)[id] = &memoryDoc{data: prepared, createdAt: now, updatedAt: now}
	s.adds++
	return Ref{Collection: collection, ID: id}, nil
}

func (s *MemoryStore) List(_ context.Context, collection string, q Query) ([]Snapshot, error) {
	if err := s.checkFault(OpList, collection, ""); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Snapshot, 0, len(s.docs[collection]))
	for id, doc := range s.docs[collection] {
		if !q.CreatedAfter.IsZero() && !doc.createdAt.After(q.CreatedAfter) {
			continue
		}
		snap, err := s.snapshot(id, doc)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	slices.SortFunc(out, func(a, b Snapshot) int {
		if q.OrderByDesc != "" {
			if c := compareNumberDesc(a.Data, b.Data, q.OrderByDesc); c != 0 {
				return c
			}
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, collection, id string) error {
	if err := s.checkFault(OpDelete, collection, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs[collection], id)
	return nil
}

// Writes: 성공한 Set, Add 호출 수
func (s *MemoryStore) Writes() (sets, adds int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sets, s.adds
}

// Count: 컬렉션 문서 수
func (s *MemoryStore) Count(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs[collection])
}

func (s *MemoryStore) collection(name string) map[string]*memoryDoc {
	coll, ok := s.docs[name]
	if !ok {
		coll = make(map[string]*memoryDoc)
		s.docs[name] = coll
	}
	return coll
}

// 호출자가 반환값을 수정해도 저장 값이 바뀌지 않도록 사본을 만든다.
func (s *MemoryStore) snapshot(id string, doc *memoryDoc) (Snapshot, error) {
	data, err := Normalize(doc.data)
	if err != nil {
		return Snapshot{}, fmt.Errorf("copy %s: %w", id, err)
	}
	return Snapshot{ID: id, Data: data, CreatedAt: doc.createdAt, UpdatedAt: doc.updatedAt}, nil
}

// 숫자가 아닌 값은 어떤 숫자보다도 뒤에 온다.
func compareNumberDesc(a, b Data, field string) int {
	av, aok := NumberField(a, field)
	bv, bok := NumberField(b, field)
	switch {
	case aok && bok:
		return cmp.Compare(bv, av)
	case aok:
		return -1
	case bok:
		return 1
	default:
		return 0
	}
}
