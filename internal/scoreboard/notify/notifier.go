// Package notify 는 점수 제출 후 새로 고침 훅을 구현한다.
// 캐시를 무효화하고 Valkey 스트림과 websocket 구독자에게 이벤트를 보낸다.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/metrics"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/model"
)

// Invalidator 는 조회 캐시 무효화 연산이다.
type Invalidator interface {
	InvalidateWindow(ctx context.Context, windows ...model.Window) error
	InvalidateStats(ctx context.Context, uid string) error
}

// Publisher 는 이벤트 필드를 외부 스트림에 발행한다.
type Publisher interface {
	Publish(ctx context.Context, values map[string]string) (string, error)
}

// Broadcaster 는 연결된 구독자에게 이벤트를 보낸다.
type Broadcaster interface {
	Broadcast(evt Event)
}

// Notifier: scores.StatsReloader, scores.LeaderboardReloader 구현. 실패는 로그로만 남긴다.
type Notifier struct {
	invalidator Invalidator
	publisher   Publisher
	broadcaster Broadcaster
	metrics     *metrics.Metrics
	logger      *slog.Logger
	now         func() time.Time
}

// NewNotifier: publisher, broadcaster 는 nil 이어도 된다.
func NewNotifier(invalidator Invalidator, publisher Publisher, broadcaster Broadcaster, m *metrics.Metrics, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		invalidator: invalidator,
		publisher:   publisher,
		broadcaster: broadcaster,
		metrics:     m,
		logger:      logger,
		now:         time.Now,
	}
}

// ReloadPlayerStats: uid 통계 캐시를 지우고 stats.updated 이벤트를 보낸다.
func (n *Notifier) ReloadPlayerStats(ctx context.Context, uid string) {
	if n.invalidator != nil {
		if err := n.invalidator.InvalidateStats(ctx, uid); err != nil {
			n.logger.WarnContext(ctx, "stats_cache_invalidate_failed", "uid", uid, "err", err)
		}
	}
	n.emit(ctx, Event{Type: EventStatsUpdated, UID: uid, At: n.now()})
}

// ReloadLeaderboard: 새 항목은 모든 기간에 들어가므로 모든 기간 캐시를 지운다.
// 이벤트에는 화면에서 보고 있던 window 를 싣는다.
func (n *Notifier) ReloadLeaderboard(ctx context.Context, window model.Window) {
	if n.invalidator != nil {
		if err := n.invalidator.InvalidateWindow(ctx, model.Windows...); err != nil {
			n.logger.WarnContext(ctx, "leaderboard_cache_invalidate_failed", "err", err)
		}
	}
	n.emit(ctx, Event{Type: EventLeaderboardUpdated, Window: window, At: n.now()})
}

func (n *Notifier) emit(ctx context.Context, evt Event) {
	if n.publisher != nil {
		if _, err := n.publisher.Publish(ctx, evt.Values()); err != nil {
			n.logger.WarnContext(ctx, "event_publish_failed", "type", evt.Type, "err", err)
			n.metrics.EventOutcome(evt.Type, "failed")
		} else {
			n.metrics.EventOutcome(evt.Type, "published")
		}
	}
	if n.broadcaster != nil {
		n.broadcaster.Broadcast(evt)
	}
}
