package httputil

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestReadJSON_Success(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"test","value":123}`))

	var out struct {
		Name  string `json:"name"`
		Value int    `json:"value"`
	}
	if err := ReadJSON(req, &out, 1024); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Name != "test" || out.Value != 123 {
		t.Errorf("unexpected decode result: %+v", out)
	}
}

func TestReadJSON_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    error
		anyErr  bool
		maxSize int64
	}{
		{name: "empty", body: "", want: ErrEmptyBody, maxSize: 1024},
		{name: "blank", body: "   ", want: ErrEmptyBody, maxSize: 1024},
		{name: "invalid", body: `{invalid json}`, anyErr: true, maxSize: 1024},
		{name: "too large", body: `{"data":"` + strings.Repeat("a", 2000) + `"}`, want: ErrBodyTooLarge, maxSize: 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var out map[string]any
			err := ReadJSON(req, &out, tt.maxSize)
			if tt.anyErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestWriteJSON_NoHTMLEscape(t *testing.T) {
	rr := httptest.NewRecorder()

	if err := WriteJSON(rr, http.StatusOK, map[string]string{"html": "<b>hi</b>"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rr.Header().Get("Content-Type") != ContentTypeJSON {
		t.Errorf("unexpected content type: %q", rr.Header().Get("Content-Type"))
	}
	if strings.Contains(rr.Body.String(), "\\u003c") {
		t.Errorf("HTML should not be escaped: %s", rr.Body.String())
	}
}

func TestWriteErrorJSON_TrimsFields(t *testing.T) {
	rr := httptest.NewRecorder()

	if err := WriteErrorJSON(rr, http.StatusBadRequest, "  INVALID_ARGUMENT  ", " field is required "); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `"error":"INVALID_ARGUMENT"`) || !strings.Contains(body, `"message":"field is required"`) {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestBearerToken(t *testing.T) {
	tests := map[string]string{
		"Bearer abc.def":  "abc.def",
		"bearer   xyz  ":  "xyz",
		"Basic dXNlcjpw":  "",
		"":                "",
		"Bearer":          "",
	}
	for header, want := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		if got := BearerToken(req); got != want {
			t.Errorf("BearerToken(%q) = %q, want %q", header, got, want)
		}
	}
}
