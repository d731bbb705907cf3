package valkeyx

import "strings"

// BuildKey 는 prefix 뒤에 공백을 제거한 parts 를 ':' 로 이어 붙인다.
// 예: BuildKey("scoreboard:lb", "weekly", "10") == "scoreboard:lb:weekly:10"
func BuildKey(prefix string, parts ...string) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, part := range parts {
		b.WriteByte(':')
		b.WriteString(strings.TrimSpace(part))
	}
	return b.String()
}
