package notify

import (
	"time"

	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/model"
)

// 이벤트 종류
const (
	EventLeaderboardUpdated = "leaderboard.updated"
	EventStatsUpdated       = "stats.updated"
)

// Event: 새로 고침 이벤트. 스트림 필드와 websocket 프레임 양쪽에 쓰인다.
type Event struct {
	Type   string       `json:"type"`
	Window model.Window `json:"window,omitempty"`
	UID    string       `json:"uid,omitempty"`
	At     time.Time    `json:"at"`
}

// Values: XADD 필드 맵
func (e Event) Values() map[string]string {
	values := map[string]string{
		"type": e.Type,
		"at":   e.At.UTC().Format(time.RFC3339Nano),
	}
	if e.Window != "" {
		values["window"] = string(e.Window)
	}
	if e.UID != "" {
		values["uid"] = e.UID
	}
	return values
}
