// Package identity 는 로그인 식별자(이메일 또는 사용자명)를 이메일로 해석한다.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/docstore"
	sberrors "github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/errors"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/model"
)

// NormalizeUsername: 사용자명 문서 키. 앞뒤 공백 제거 후 유니코드 소문자.
// cases.Caser 는 동시 사용이 안전하지 않아 호출마다 만든다.
func NormalizeUsername(username string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(username))
}

// Resolver: usernames/users 컬렉션을 읽어 식별자를 이메일로 바꾼다. 캐시하지 않는다.
type Resolver struct {
	store docstore.Getter
}

// NewResolver: Resolver 를 만든다.
func NewResolver(store docstore.Getter) *Resolver {
	return &Resolver{store: store}
}

// Resolve: identifier 가 '@' 를 포함하면 공백만 제거해 그대로 돌려준다.
// 아니면 사용자명으로 보고 usernames/<소문자 키> 의 email, 없으면 users/<uid> 의 email 을 돌려준다.
func (r *Resolver) Resolve(ctx context.Context, identifier string) (string, error) {
	trimmed := strings.TrimSpace(identifier)
	if trimmed == "" {
		return "", sberrors.InvalidArgumentError{Message: "Identifier is required"}
	}
	if strings.Contains(trimmed, "@") {
		return trimmed, nil
	}

	snap, err := r.store.Get(ctx, model.CollectionUsernames, NormalizeUsername(trimmed))
	if errors.Is(err, docstore.ErrNotFound) {
		return "", sberrors.NotFoundError{Message: fmt.Sprintf(`Username "%s" not found`, trimmed)}
	}
	if err != nil {
		return "", fmt.Errorf("lookup username failed: %w", err)
	}

	record, err := docstore.DecodeAs[model.UsernameRecord](snap)
	if err != nil {
		return "", fmt.Errorf("decode username record failed: %w", err)
	}
	if record.Email != "" {
		return record.Email, nil
	}

	noEmail := sberrors.NotFoundError{Message: fmt.Sprintf(`Username "%s" has no associated email`, trimmed)}
	if record.UID == "" {
		return "", noEmail
	}

	userSnap, err := r.store.Get(ctx, model.CollectionUsers, record.UID)
	if errors.Is(err, docstore.ErrNotFound) {
		return "", noEmail
	}
	if err != nil {
		return "", fmt.Errorf("lookup user profile failed: %w", err)
	}

	profile, err := docstore.DecodeAs[model.UserProfile](userSnap)
	if err != nil {
		return "", fmt.Errorf("decode user profile failed: %w", err)
	}
	if profile.Email == "" {
		return "", noEmail
	}
	return profile.Email, nil
}
