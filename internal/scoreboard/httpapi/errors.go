package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/common/httputil"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/common/messageprovider"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/auth"
	sberrors "github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/errors"
)

// 에러 응답 코드
const (
	codeInvalidArgument = "INVALID_ARGUMENT"
	codeNotFound        = "NOT_FOUND"
	codeAlreadyExists   = "ALREADY_EXISTS"
	codeUnauthenticated = "UNAUTHENTICATED"
	codeRateLimited     = "RATE_LIMITED"
	codeInternal        = "INTERNAL"
)

// respondError: 도메인 에러를 상태 코드와 메시지로 바꿔 응답한다.
func (a *api) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		invalid  sberrors.InvalidArgumentError
		notFound sberrors.NotFoundError
		exists   sberrors.AlreadyExistsError
		creds    sberrors.InvalidCredentialsError
		unauthed sberrors.UnauthenticatedError
		limited  sberrors.RateLimitedError
	)

	if sberrors.IsExpectedUserBehavior(err) {
		a.Logger.InfoContext(r.Context(), "request_rejected", "method", r.Method, "path", r.URL.Path, "err", err)
	} else {
		a.Logger.ErrorContext(r.Context(), "request_failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}

	switch {
	case errors.As(err, &invalid):
		a.respondErrorCode(w, http.StatusBadRequest, codeInvalidArgument, invalid.Error())
	case errors.As(err, &notFound):
		a.respondErrorCode(w, http.StatusNotFound, codeNotFound, notFound.Error())
	case errors.As(err, &exists):
		a.respondErrorCode(w, http.StatusConflict, codeAlreadyExists, exists.Error())
	case errors.As(err, &creds):
		a.respondErrorCode(w, http.StatusUnauthorized, codeUnauthenticated, a.Messages.Get("auth.invalid_credentials"))
	case errors.As(err, &unauthed):
		a.respondErrorCode(w, http.StatusUnauthorized, codeUnauthenticated, a.Messages.Get("auth.unauthenticated"))
	case errors.As(err, &limited):
		seconds := auth.RetryAfterSeconds(limited.RetryAfter)
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
		a.respondErrorCode(w, http.StatusTooManyRequests, codeRateLimited,
			a.Messages.Get("auth.rate_limited", messageprovider.P("seconds", seconds)))
	default:
		a.respondErrorCode(w, http.StatusInternalServerError, codeInternal, a.Messages.Get("api.internal"))
	}
}

func (a *api) respondErrorCode(w http.ResponseWriter, status int, code, message string) {
	if err := httputil.WriteErrorJSON(w, status, code, message); err != nil {
		a.Logger.Warn("response_write_failed", "err", err)
	}
}
