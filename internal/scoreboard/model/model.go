// Package model 은 스코어보드 문서와 세션 모델을 정의한다.
// JSON 필드명은 저장 문서 필드명(camelCase)과 같다.
package model

import "time"

// 컬렉션 이름
const (
	CollectionUsernames   = "usernames"
	CollectionUsers       = "users"
	CollectionUserStats   = "userStats"
	CollectionLeaderboard = "leaderboard"
	CollectionCredentials = "credentials"
)

// DefaultTopScores: 사용자별로 보관하는 최고 점수 개수 기본값
const DefaultTopScores = 10

// User: 인증된 현재 사용자. 요청마다 명시적으로 전달된다.
type User struct {
	ID    string `json:"uid"`
	Email string `json:"email,omitempty"`
}

// UsernameRecord: usernames/<소문자 사용자명> 문서. uid 와 email 중 하나 이상이 있다.
type UsernameRecord struct {
	UID       string    `json:"uid,omitempty"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserProfile: users/<uid> 문서
type UserProfile struct {
	Email     string    `json:"email,omitempty"`
	Username  string    `json:"username,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ScoreEntry: 사용자 최고 점수 목록의 한 항목.
// Timestamp 는 UTC ISO-8601(밀리초), Date/Time 은 로캘 표기다.
type ScoreEntry struct {
	Score     int64  `json:"score"`
	Timestamp string `json:"timestamp"`
	Date      string `json:"date"`
	Time      string `json:"time"`
}

// UserStats: userStats/<uid> 문서.
// Scores 는 내림차순 상위 N 개, TotalScore 는 지금까지 제출한 모든 점수의 합이다.
type UserStats struct {
	UID         string       `json:"uid"`
	Username    string       `json:"username"`
	Scores      []ScoreEntry `json:"scores"`
	TotalScore  int64        `json:"totalScore"`
	LastUpdated time.Time    `json:"lastUpdated"`
}

// LeaderboardEntry: leaderboard 컬렉션의 추가 전용 문서
type LeaderboardEntry struct {
	ID        string    `json:"id,omitempty"`
	UID       string    `json:"uid"`
	Username  string    `json:"username"`
	Score     int64     `json:"score"`
	Timestamp time.Time `json:"timestamp"`
}

// Credential: credentials/<소문자 이메일> 문서
type Credential struct {
	UID          string    `json:"uid"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}
