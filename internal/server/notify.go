package server

import (
	"context"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
)

type noticesKey struct{}

type notices struct {
	mu   sync.Mutex
	msgs []string
}

// RequestNotifier は警告をリクエスト単位で収集し、レスポンスの message に載せます。
type RequestNotifier struct{}

// Notify は ctx に紐づくリクエストへ警告を追加します。
func (RequestNotifier) Notify(ctx context.Context, message string) {
	n, ok := ctx.Value(noticesKey{}).(*notices)
	if !ok {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, message)
}

func collectNotices(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		c.SetRequest(req.WithContext(context.WithValue(req.Context(), noticesKey{}, &notices{})))
		return next(c)
	}
}

func noticeMessage(c echo.Context) string {
	n, ok := c.Request().Context().Value(noticesKey{}).(*notices)
	if !ok {
		return ""
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return strings.Join(n.msgs, "\n")
}

// success は収集した警告を添えて 200 を返します。
func success(c echo.Context, status int, data any) error {
	resp := SuccessResponse(data)
	resp.Message = noticeMessage(c)
	return c.JSON(status, resp)
}
