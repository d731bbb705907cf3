package scores

import (
	"context"

	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/model"
)

type activeWindowKey struct{}

// WithActiveWindow: 제출 후 새로 고칠 리더보드 기간을 ctx 에 싣는다.
func WithActiveWindow(ctx context.Context, window model.Window) context.Context {
	return context.WithValue(ctx, activeWindowKey{}, window)
}

// ActiveWindow: ctx 에 실린 기간. 없으면 model.DefaultWindow.
func ActiveWindow(ctx context.Context) model.Window {
	if w, ok := ctx.Value(activeWindowKey{}).(model.Window); ok && w != "" {
		return w
	}
	return model.DefaultWindow
}
