// Package leaderboard 는 기간별 리더보드와 사용자 통계 조회를 담당한다.
// 조회 결과는 Cache 에 보관하고 점수 제출 후 무효화한다.
package leaderboard

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	json "github.com/goccy/go-json"

	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/docstore"
	sberrors "github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/errors"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/metrics"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/model"
)

// 기본 조회 개수
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Store 는 조회에 쓰는 문서 저장소 연산이다.
type Store interface {
	docstore.Getter
	docstore.Lister
}

// Config: 조회 개수 설정
type Config struct {
	DefaultLimit int
	MaxLimit     int
}

// Service: 리더보드/통계 조회 서비스
type Service struct {
	store   Store
	cache   Cache
	metrics *metrics.Metrics
	logger  *slog.Logger
	cfg     Config
	now     func() time.Time
}

// NewService: cache 가 nil 이면 캐시 없이 동작한다.
func NewService(store Store, c Cache, m *metrics.Metrics, logger *slog.Logger, cfg Config) *Service {
	if c == nil {
		c = NoopCache{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = MaxLimit
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = DefaultLimit
	}
	cfg.DefaultLimit = min(cfg.DefaultLimit, cfg.MaxLimit)
	return &Service{store: store, cache: c, metrics: m, logger: logger, cfg: cfg, now: time.Now}
}

// Top: window 안에 기록된 항목을 점수 내림차순, 같은 점수는 먼저 기록된 순으로 돌려준다.
// limit 이 0 이면 기본값, 최대값을 넘으면 최대값으로 자른다.
func (s *Service) Top(ctx context.Context, window model.Window, limit int) ([]model.LeaderboardEntry, error) {
	if !slices.Contains(model.Windows, window) {
		return nil, sberrors.InvalidArgumentError{Message: fmt.Sprintf("Unknown leaderboard window %s", window)}
	}
	switch {
	case limit < 0:
		return nil, sberrors.InvalidArgumentError{Message: "limit must be a positive integer"}
	case limit == 0:
		limit = s.cfg.DefaultLimit
	case limit > s.cfg.MaxLimit:
		limit = s.cfg.MaxLimit
	}

	key := windowKey(window)
	var entries []model.LeaderboardEntry
	if s.readCache(ctx, "leaderboard", key, &entries) {
		return head(entries, limit), nil
	}

	snaps, err := s.store.List(ctx, model.CollectionLeaderboard, docstore.Query{
		CreatedAfter: window.Since(s.now()),
		OrderByDesc:  "score",
		Limit:        s.cfg.MaxLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("list leaderboard failed: %w", err)
	}
	entries = make([]model.LeaderboardEntry, 0, len(snaps))
	for _, snap := range snaps {
		entry, err := docstore.DecodeAs[model.LeaderboardEntry](snap)
		if err != nil {
			return nil, fmt.Errorf("decode leaderboard entry %s failed: %w", snap.ID, err)
		}
		entry.ID = snap.ID
		entries = append(entries, entry)
	}
	slices.SortStableFunc(entries, compareEntries)

	s.writeCache(ctx, key, entries)
	return head(entries, limit), nil
}

// PlayerStats: userStats/<uid>. 없으면 NotFoundError.
func (s *Service) PlayerStats(ctx context.Context, uid string) (model.UserStats, error) {
	key := statsKey(uid)
	var stats model.UserStats
	if s.readCache(ctx, "stats", key, &stats) {
		return stats, nil
	}

	snap, err := s.store.Get(ctx, model.CollectionUserStats, uid)
	if errors.Is(err, docstore.ErrNotFound) {
		return model.UserStats{}, sberrors.NotFoundError{Message: fmt.Sprintf("No stats recorded for user %s", uid)}
	}
	if err != nil {
		return model.UserStats{}, fmt.Errorf("read stats failed: %w", err)
	}
	if stats, err = docstore.DecodeAs[model.UserStats](snap); err != nil {
		return model.UserStats{}, fmt.Errorf("decode stats failed: %w", err)
	}
	if stats.UID == "" {
		stats.UID = uid
	}

	s.writeCache(ctx, key, stats)
	return stats, nil
}

// InvalidateWindow: 주어진 기간들의 캐시를 지운다.
func (s *Service) InvalidateWindow(ctx context.Context, windows ...model.Window) error {
	keys := make([]string, len(windows))
	for i, w := range windows {
		keys[i] = windowKey(w)
	}
	return s.cache.Delete(ctx, keys...)
}

// InvalidateStats: uid 의 통계 캐시를 지운다.
func (s *Service) InvalidateStats(ctx context.Context, uid string) error {
	return s.cache.Delete(ctx, statsKey(uid))
}

// 캐시 오류는 조회를 막지 않는다.
func (s *Service) readCache(ctx context.Context, kind, key string, out any) bool {
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "cache_get_failed", "key", key, "err", err)
		return false
	}
	if ok {
		if err := json.Unmarshal(raw, out); err != nil {
			s.logger.WarnContext(ctx, "cache_decode_failed", "key", key, "err", err)
			ok = false
		}
	}
	s.metrics.CacheOutcome(kind, ok)
	return ok
}

func (s *Service) writeCache(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		s.logger.WarnContext(ctx, "cache_encode_failed", "key", key, "err", err)
		return
	}
	if err := s.cache.Set(ctx, key, raw); err != nil {
		s.logger.WarnContext(ctx, "cache_set_failed", "key", key, "err", err)
	}
}

func compareEntries(a, b model.LeaderboardEntry) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func windowKey(w model.Window) string { return "lb:" + string(w) }

func statsKey(uid string) string { return "stats:" + uid }
