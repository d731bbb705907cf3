package httputil

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
)

const (
	// ContentTypeJSON: JSON 응답 Content-Type
	ContentTypeJSON = "application/json"
	// HeaderContentType: Content-Type 헤더 이름
	HeaderContentType = "Content-Type"
	// HeaderAuthorization: Authorization 헤더 이름
	HeaderAuthorization = "Authorization"
	// DefaultMaxBodyBytes: 요청 바디 기본 상한 (1MiB)
	DefaultMaxBodyBytes int64 = 1 << 20
)

// ErrEmptyBody: 요청 바디가 비어있을 때 발생하는 에러
var ErrEmptyBody = errors.New("empty request body")

// ErrBodyTooLarge: 요청 바디가 상한을 넘을 때 발생하는 에러
var ErrBodyTooLarge = errors.New("request body too large")

// ReadJSON: 요청 바디를 최대 maxBytes 까지 읽어 out 으로 디코딩한다.
func ReadJSON(r *http.Request, out any, maxBytes int64) error {
	if r.Body == nil || r.Body == http.NoBody {
		return ErrEmptyBody
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBytes+1))
	if err != nil {
		return fmt.Errorf("read body failed: %w", err)
	}
	if int64(len(raw)) > maxBytes {
		return ErrBodyTooLarge
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return ErrEmptyBody
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode json failed: %w", err)
	}
	return nil
}

// WriteJSON: v 를 JSON 으로 인코딩하여 응답한다. HTML 이스케이프는 하지 않는다.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set(HeaderContentType, ContentTypeJSON)
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json failed: %w", err)
	}
	return nil
}

// ErrorResponse: 표준 에러 응답 구조체
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteErrorJSON: 에러 코드와 메시지를 포함한 표준 에러 응답을 전송한다.
func WriteErrorJSON(w http.ResponseWriter, status int, code string, message string) error {
	return WriteJSON(w, status, ErrorResponse{
		Error:   strings.TrimSpace(code),
		Message: strings.TrimSpace(message),
	})
}

// BearerToken: "Authorization: Bearer <token>" 에서 토큰을 꺼낸다. 없으면 빈 문자열.
func BearerToken(r *http.Request) string {
	value := strings.TrimSpace(r.Header.Get(HeaderAuthorization))
	if len(value) < 7 || !strings.EqualFold(value[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(value[7:])
}
