// Package auth 는 가입, 로그인, 세션 토큰 검증을 담당한다.
// 자격 증명은 credentials/<소문자 이메일> 문서에 bcrypt 해시로 저장한다.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/common/messageprovider"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/common/processinglock"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/docstore"
	sberrors "github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/errors"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/identity"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/metrics"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/model"
)

// 메트릭 라벨
const (
	OperationSignUp = "signup"
	OperationSignIn = "signin"

	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// Store 는 인증 서비스가 쓰는 문서 저장소 연산이다.
// Delete 는 가입 도중 실패한 쓰기를 되돌릴 때 쓴다.
type Store interface {
	docstore.Getter
	docstore.Setter
	docstore.Deleter
}

const (
	signUpUsernameLockPrefix = "signup:"
	signUpEmailLockPrefix    = "signup-email:"
)

// IdentifierResolver 는 로그인 식별자를 이메일로 바꾼다.
type IdentifierResolver interface {
	Resolve(ctx context.Context, identifier string) (string, error)
}

// Session: API 응답용 세션 정보
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	Username  string    `json:"username,omitempty"`
}

// Service: 문서 저장소 기반 인증 서비스
type Service struct {
	store     Store
	resolver  IdentifierResolver
	locker    processinglock.Locker
	tokens    *TokenIssuer
	limiter   *KeyedLimiter
	validator *Validator
	messages  *messageprovider.Provider
	metrics   *metrics.Metrics
	logger    *slog.Logger
	cfg       Config
}

// NewService: 인증 서비스를 만든다. cfg.TokenSecret 이 비어 있으면 에러.
func NewService(
	store Store,
	resolver IdentifierResolver,
	locker processinglock.Locker,
	messages *messageprovider.Provider,
	m *metrics.Metrics,
	logger *slog.Logger,
	cfg Config,
) (*Service, error) {
	if store == nil || resolver == nil {
		return nil, errors.New("store and resolver must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if locker == nil {
		locker = processinglock.NewLocal()
	}
	cfg = cfg.withDefaults()

	tokens, err := NewTokenIssuer(cfg.TokenSecret, cfg.TokenIssuer, cfg.TokenTTL)
	if err != nil {
		return nil, err
	}
	v, err := NewValidator(messages)
	if err != nil {
		return nil, err
	}

	return &Service{
		store:     store,
		resolver:  resolver,
		locker:    locker,
		tokens:    tokens,
		limiter:   NewKeyedLimiter(cfg.SignInRatePerMinute, cfg.SignInBurst),
		validator: v,
		messages:  messages,
		metrics:   m,
		logger:    logger,
		cfg:       cfg,
	}, nil
}

// SignUp: 사용자명과 이메일이 비어 있을 때만 계정을 만든다.
// 쓰기 순서는 credential, users/<uid>, usernames/<key> 이다. 중간에 실패하면 앞선 쓰기를 지운다.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (Session, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := s.validator.Validate(in); err != nil {
		s.metrics.AuthOutcome(OperationSignUp, ResultRejected)
		return Session{}, err
	}

	session, err := s.signUp(ctx, in)
	s.record(ctx, OperationSignUp, err)
	return session, err
}

func (s *Service) signUp(ctx context.Context, in SignUpInput) (Session, error) {
	key := identity.NormalizeUsername(in.Username)
	email := normalizeEmail(in.Email)

	release, err := s.acquireSignUp(ctx, key, email)
	if err != nil {
		return Session{}, err
	}
	defer release()

	taken, err := s.exists(ctx, model.CollectionUsernames, key)
	if err != nil {
		return Session{}, err
	}
	if taken {
		return Session{}, sberrors.AlreadyExistsError{Field: "username", Message: s.messages.Get("auth.username_taken")}
	}
	if taken, err = s.exists(ctx, model.CollectionCredentials, email); err != nil {
		return Session{}, err
	}
	if taken {
		return Session{}, sberrors.AlreadyExistsError{Field: "email", Message: s.messages.Get("auth.email_taken")}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cfg.BcryptCost)
	if err != nil {
		return Session{}, fmt.Errorf("hash password failed: %w", err)
	}

	uid := uuid.NewString()
	writes := []struct {
		collection string
		id         string
		data       docstore.Data
	}{
		{model.CollectionCredentials, email, docstore.Data{
			"uid":          uid,
			"email":        email,
			"passwordHash": string(hash),
			"createdAt":    docstore.ServerTimestamp,
		}},
		{model.CollectionUsers, uid, docstore.Data{
			"email":     email,
			"username":  in.Username,
			"createdAt": docstore.ServerTimestamp,
		}},
		{model.CollectionUsernames, key, docstore.Data{
			"uid":       uid,
			"email":     email,
			"createdAt": docstore.ServerTimestamp,
		}},
	}
	for i, w := range writes {
		if err := s.store.Set(ctx, w.collection, w.id, w.data, docstore.SetOptions{}); err != nil {
			for _, done := range slices.Backward(writes[:i]) {
				s.undo(ctx, done.collection, done.id)
			}
			return Session{}, fmt.Errorf("write %s failed: %w", w.collection, err)
		}
	}

	s.logger.InfoContext(ctx, "user_signed_up", "uid", uid, "username", in.Username)
	return s.issue(model.User{ID: uid, Email: email}, in.Username)
}

// 사용자명과 이메일 락을 정렬된 키 순서로 잡는다. 하나라도 실패하면 잡은 락을 모두 푼다.
func (s *Service) acquireSignUp(ctx context.Context, key, email string) (func(), error) {
	keys := []string{signUpUsernameLockPrefix + key, signUpEmailLockPrefix + email}
	slices.Sort(keys)

	releases := make([]func(), 0, len(keys))
	releaseAll := func() {
		for _, release := range slices.Backward(releases) {
			release()
		}
	}
	for _, k := range keys {
		release, err := s.locker.Acquire(ctx, k)
		if err != nil {
			releaseAll()
			if errors.Is(err, processinglock.ErrAlreadyHeld) {
				if strings.HasPrefix(k, signUpEmailLockPrefix) {
					return nil, sberrors.AlreadyExistsError{Field: "email", Message: s.messages.Get("auth.signup_email_in_progress")}
				}
				return nil, sberrors.AlreadyExistsError{Field: "username", Message: s.messages.Get("auth.signup_in_progress")}
			}
			return nil, fmt.Errorf("acquire signup lock failed: %w", err)
		}
		releases = append(releases, release)
	}
	return releaseAll, nil
}

// 롤백은 요청 취소와 무관하게 끝까지 수행한다.
func (s *Service) undo(ctx context.Context, collection, id string) {
	if err := s.store.Delete(context.WithoutCancel(ctx), collection, id); err != nil {
		s.logger.ErrorContext(ctx, "signup_rollback_failed", "collection", collection, "id", id, "err", err)
	}
}

// SignIn: identifier 는 이메일 또는 사용자명이다. 해석 실패는 그대로 돌려준다.
func (s *Service) SignIn(ctx context.Context, identifier, password string) (Session, error) {
	if ok, retryAfter := s.limiter.Allow(identity.NormalizeUsername(identifier)); !ok {
		s.metrics.AuthOutcome(OperationSignIn, ResultRejected)
		return Session{}, sberrors.RateLimitedError{RetryAfter: retryAfter}
	}

	session, err := s.signIn(ctx, identifier, password)
	s.record(ctx, OperationSignIn, err)
	return session, err
}

func (s *Service) signIn(ctx context.Context, identifier, password string) (Session, error) {
	email, err := s.resolver.Resolve(ctx, identifier)
	if err != nil {
		return Session{}, err
	}

	snap, err := s.store.Get(ctx, model.CollectionCredentials, normalizeEmail(email))
	if errors.Is(err, docstore.ErrNotFound) {
		return Session{}, sberrors.InvalidCredentialsError{}
	}
	if err != nil {
		return Session{}, fmt.Errorf("read credential failed: %w", err)
	}
	cred, err := docstore.DecodeAs[model.Credential](snap)
	if err != nil {
		return Session{}, fmt.Errorf("decode credential failed: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) != nil {
		return Session{}, sberrors.InvalidCredentialsError{}
	}

	username := ""
	if profileSnap, err := s.store.Get(ctx, model.CollectionUsers, cred.UID); err == nil {
		if profile, err := docstore.DecodeAs[model.UserProfile](profileSnap); err == nil {
			username = profile.Username
		}
	}
	return s.issue(model.User{ID: cred.UID, Email: cred.Email}, username)
}

// Authenticate: 세션 토큰을 검증해 현재 사용자를 돌려준다.
func (s *Service) Authenticate(ctx context.Context, token string) (model.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return model.User{}, sberrors.UnauthenticatedError{Reason: "missing token"}
	}
	user, err := s.tokens.Parse(token)
	if err != nil {
		s.logger.DebugContext(ctx, "session_token_rejected", "err", err)
		return model.User{}, sberrors.UnauthenticatedError{Reason: "invalid token"}
	}
	return user, nil
}

// RetryAfterSeconds: Retry-After 헤더 값. 최소 1초.
func RetryAfterSeconds(d time.Duration) int {
	return max(1, int(math.Ceil(d.Seconds())))
}

func (s *Service) issue(user model.User, username string) (Session, error) {
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return Session{}, err
	}
	return Session{
		Token:     token,
		ExpiresAt: expiresAt,
		UID:       user.ID,
		Email:     user.Email,
		Username:  username,
	}, nil
}

func (s *Service) exists(ctx context.Context, collection, id string) (bool, error) {
	_, err := s.store.Get(ctx, collection, id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, docstore.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("read %s failed: %w", collection, err)
	}
}

func (s *Service) record(ctx context.Context, operation string, err error) {
	switch {
	case err == nil:
		s.metrics.AuthOutcome(operation, ResultSuccess)
	case sberrors.IsExpectedUserBehavior(err):
		s.metrics.AuthOutcome(operation, ResultRejected)
		s.logger.InfoContext(ctx, operation+"_rejected", "err", err)
	default:
		s.metrics.AuthOutcome(operation, ResultError)
		s.logger.ErrorContext(ctx, operation+"_failed", "err", err)
	}
}
