// Package scores 는 점수 제출 워크플로를 구현한다.
// 사용자별 상위 점수 목록과 누적 점수를 갱신하고 리더보드 항목을 추가한 뒤 새로 고침 훅을 호출한다.
package scores

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/docstore"
	sberrors "github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/errors"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/metrics"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/model"
)

// AnonymousUsername: 프로필 사용자명과 이메일이 모두 없을 때 표시 이름
const AnonymousUsername = "Anonymous"

// Store 는 워크플로가 쓰는 문서 저장소 연산이다.
type Store interface {
	docstore.Getter
	docstore.Setter
	docstore.Adder
}

// StatsReloader 는 사용자 통계 화면 새로 고침 훅이다.
type StatsReloader interface {
	ReloadPlayerStats(ctx context.Context, uid string)
}

// LeaderboardReloader 는 리더보드 화면 새로 고침 훅이다.
type LeaderboardReloader interface {
	ReloadLeaderboard(ctx context.Context, window model.Window)
}

// Submitter: 점수 제출 워크플로
type Submitter struct {
	store     Store
	formatter *LocaleFormatter
	logger    *slog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
	topN      int

	statsReloader       StatsReloader
	leaderboardReloader LeaderboardReloader
}

// Option: Submitter 설정 옵션
type Option func(*Submitter)

// WithStatsReloader: 통계 새로 고침 훅
func WithStatsReloader(r StatsReloader) Option {
	return func(s *Submitter) { s.statsReloader = r }
}

// WithLeaderboardReloader: 리더보드 새로 고침 훅
func WithLeaderboardReloader(r LeaderboardReloader) Option {
	return func(s *Submitter) { s.leaderboardReloader = r }
}

// WithTopN: 보관할 최고 점수 개수
func WithTopN(n int) Option {
	return func(s *Submitter) {
		if n > 0 {
			s.topN = n
		}
	}
}

// WithClock: 점수 항목 시각 함수
func WithClock(now func() time.Time) Option {
	return func(s *Submitter) { s.now = now }
}

// WithMetrics: 결과 카운터
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Submitter) { s.metrics = m }
}

// NewSubmitter: Submitter 를 만든다.
func NewSubmitter(store Store, formatter *LocaleFormatter, logger *slog.Logger, opts ...Option) *Submitter {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Submitter{
		store:     store,
		formatter: formatter,
		logger:    logger,
		now:       time.Now,
		topN:      model.DefaultTopScores,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit: 현재 사용자의 점수를 기록한다. 반환값이 없으며 모든 실패는 로그로만 남긴다.
//
// 순서: 프로필 조회, 통계 조회, 통계 병합 저장, 리더보드 항목 추가, 훅 호출.
// 두 쓰기는 하나의 트랜잭션이 아니고 같은 사용자 동시 제출은 마지막 쓰기가 이긴다.
func (s *Submitter) Submit(ctx context.Context, user *model.User, score int64) {
	if user == nil {
		s.logger.InfoContext(ctx, "score_submit_skipped_no_user", "score", score)
		s.metrics.SubmitOutcome(metrics.SubmitSkippedNoUser)
		return
	}

	if err := s.submit(ctx, user, score); err != nil {
		var integrity sberrors.IntegrityError
		if errors.As(err, &integrity) {
			s.logger.ErrorContext(ctx, "score_submit_profile_missing", "uid", user.ID, "err", err)
			s.metrics.SubmitOutcome(metrics.SubmitProfileMissing)
			return
		}
		s.logger.ErrorContext(ctx, "score_submit_failed", "uid", user.ID, "score", score, "err", err)
		s.metrics.SubmitOutcome(metrics.SubmitFailed)
		return
	}
	s.metrics.SubmitOutcome(metrics.SubmitStored)

	s.runHooks(ctx, user.ID)
}

func (s *Submitter) submit(ctx context.Context, user *model.User, score int64) error {
	uid := user.ID

	profileSnap, err := s.store.Get(ctx, model.CollectionUsers, uid)
	if errors.Is(err, docstore.ErrNotFound) {
		return sberrors.IntegrityError{Collection: model.CollectionUsers, ID: uid}
	}
	if err != nil {
		return fmt.Errorf("read profile failed: %w", err)
	}
	profile, err := docstore.DecodeAs[model.UserProfile](profileSnap)
	if err != nil {
		return fmt.Errorf("decode profile failed: %w", err)
	}

	username := displayName(profile, user)

	var stats model.UserStats
	statsSnap, err := s.store.Get(ctx, model.CollectionUserStats, uid)
	switch {
	case errors.Is(err, docstore.ErrNotFound):
	case err != nil:
		return fmt.Errorf("read stats failed: %w", err)
	default:
		if stats, err = docstore.DecodeAs[model.UserStats](statsSnap); err != nil {
			return fmt.Errorf("decode stats failed: %w", err)
		}
	}

	now := s.now()
	date, clock := s.formatter.Format(now)
	ranked := NewRanked(s.topN, func(e model.ScoreEntry) int64 { return e.Score }, stats.Scores)
	ranked.Insert(model.ScoreEntry{
		Score:     score,
		Timestamp: FormatISO(now),
		Date:      date,
		Time:      clock,
	})

	if err := s.store.Set(ctx, model.CollectionUserStats, uid, docstore.Data{
		"uid":         uid,
		"username":    username,
		"scores":      ranked.Items(),
		"totalScore":  stats.TotalScore + score,
		"lastUpdated": docstore.ServerTimestamp,
	}, docstore.SetOptions{Merge: true}); err != nil {
		return fmt.Errorf("write stats failed: %w", err)
	}

	ref, err := s.store.Add(ctx, model.CollectionLeaderboard, docstore.Data{
		"uid":       uid,
		"username":  username,
		"score":     score,
		"timestamp": docstore.ServerTimestamp,
	})
	if err != nil {
		return fmt.Errorf("add leaderboard entry failed: %w", err)
	}

	s.logger.InfoContext(ctx, "score_submitted",
		"uid", uid,
		"score", score,
		"total", stats.TotalScore+score,
		"entry_id", ref.ID,
	)
	return nil
}

func displayName(profile model.UserProfile, user *model.User) string {
	switch {
	case profile.Username != "":
		return profile.Username
	case user.Email != "":
		return user.Email
	default:
		return AnonymousUsername
	}
}

// 훅은 최선 노력으로 실행한다. panic 은 복구해서 로그로 남긴다.
func (s *Submitter) runHooks(ctx context.Context, uid string) {
	if s.statsReloader == nil && s.leaderboardReloader == nil {
		return
	}

	var wg conc.WaitGroup
	if s.statsReloader != nil {
		wg.Go(func() { s.statsReloader.ReloadPlayerStats(ctx, uid) })
	}
	if s.leaderboardReloader != nil {
		window := ActiveWindow(ctx)
		wg.Go(func() { s.leaderboardReloader.ReloadLeaderboard(ctx, window) })
	}
	if recovered := wg.WaitAndRecover(); recovered != nil {
		s.logger.ErrorContext(ctx, "score_refresh_hook_panic", "uid", uid, "panic", recovered.String())
	}
}
