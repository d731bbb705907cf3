package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/model"
)

type sessionClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer 는 HS256 세션 토큰을 발급하고 검증한다. 갱신은 지원하지 않는다.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer: secret 이 비어 있으면 에러.
func NewTokenIssuer(secret []byte, issuer string, ttl time.Duration) (*TokenIssuer, error) {
	if len(secret) == 0 {
		return nil, errors.New("token secret must not be empty")
	}
	return &TokenIssuer{secret: secret, issuer: issuer, ttl: ttl, now: time.Now}, nil
}

// Issue: 사용자 세션 토큰과 만료 시각
func (t *TokenIssuer) Issue(user model.User) (string, time.Time, error) {
	now := t.now()
	expiresAt := now.Add(t.ttl)
	claims := sessionClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token failed: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse: 서명, 알고리즘, 발급자, 만료를 검증한다.
func (t *TokenIssuer) Parse(token string) (model.User, error) {
	claims := &sessionClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if _, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}); err != nil {
		return model.User{}, err
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return model.User{}, errors.New("subject claim is empty")
	}
	return model.User{ID: claims.Subject, Email: claims.Email}, nil
}
