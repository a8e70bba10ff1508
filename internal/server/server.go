package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/shouni/visionary-gallery/pkg/domain"
	"github.com/shouni/visionary-gallery/pkg/service"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// Server はギャラリーの JSON API を提供します。
type Server struct {
	log       *slog.Logger
	e         *echo.Echo
	svc       *service.GalleryService
	metrics   *Metrics
	addr      string
	maxUpload int64
}

// New はルーティングとミドルウェアを設定した Server を返します。
// svc は service.ContextConfirmer と RequestNotifier を使って生成されている必要があります。
func New(log *slog.Logger, svc *service.GalleryService, addr string, maxUpload int64, reg *prometheus.Registry) *Server {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &CustomValidator{validator: service.NewValidator()}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogRemoteIP: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				slog.String("method", v.Method),
				slog.String("URI", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote ip", v.RemoteIP),
			)
			return nil
		},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  metricsNamespace,
		Registerer: reg,
	}))
	e.Use(collectNotices)

	s := &Server{
		log:       log,
		e:         e,
		svc:       svc,
		metrics:   newMetrics(reg, func() int { return len(svc.List(domain.CategoryAll)) }),
		addr:      addr,
		maxUpload: maxUpload,
	}
	s.buildRouters(reg)
	return s
}

func (s *Server) buildRouters(reg *prometheus.Registry) {
	s.e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	s.e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg}))

	api := s.e.Group("/api")
	{
		api.GET("/categories", s.listCategories)
		api.POST("/reset", s.reset)

		items := api.Group("/items")
		{
			items.GET("", s.listItems)
			items.POST("/generate", s.generate)
			items.POST("/upload", s.upload, middleware.BodyLimit(uploadBodyLimit(s.maxUpload)))
			items.GET("/:id", s.getItem)
			items.GET("/:id/download", s.download)
			items.DELETE("/:id", s.deleteItem)
		}
	}
}

// multipartOverhead は multipart の境界やヘッダに見込む余裕です。
const multipartOverhead int64 = 64 * 1024

// uploadBodyLimit は BodyLimit に渡す上限を KiB 単位で返します。
// フォームを解析する前に、明らかに大きすぎる本文を 413 で打ち切るのだ。
func uploadBodyLimit(maxUpload int64) string {
	return fmt.Sprintf("%dK", (maxUpload+multipartOverhead+1023)/1024)
}

// Handler はテストや埋め込み用に http.Handler を返します。
func (s *Server) Handler() http.Handler {
	return s.e
}

// Start はサーバーを起動し、停止するまでブロックします。
func (s *Server) Start() error {
	const op = "server.Server.Start"

	s.log.Info("HTTP サーバーを起動します", slog.String("op", op), slog.String("addr", s.addr))
	if err := s.e.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s server stopped: %w", op, err)
	}
	return nil
}

// Stop は処理中のリクエストを待ってからサーバーを停止します。
func (s *Server) Stop(ctx context.Context) error {
	const op = "server.Server.Stop"

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	s.log.Info("HTTP サーバーを停止します", slog.String("op", op))
	if err := s.e.Shutdown(ctx); err != nil {
		return fmt.Errorf("%s could not shutdown server gracefully: %w", op, err)
	}
	return nil
}
