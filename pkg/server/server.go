// Package server is the HTTP surface behind the page behaviours: the
// password strength endpoint, the admin log listing and export, and the
// theme preference cookie.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/entrhq/pagekit/pkg/captcha"
	"github.com/entrhq/pagekit/pkg/config"
	"github.com/entrhq/pagekit/pkg/flash"
	"github.com/entrhq/pagekit/pkg/logging"
	"github.com/entrhq/pagekit/pkg/logs"
	"github.com/entrhq/pagekit/pkg/pagination"
	"github.com/entrhq/pagekit/pkg/strength"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// Deps are the collaborators the server is built from. Logs and Flash are
// required.
type Deps struct {
	Logs      *logs.Service
	Flash     *flash.Store
	Estimator *strength.Estimator
	Verifier  *captcha.Verifier
	Limiter   Limiter
	Log       *logging.Logger
}

// Server owns the gin engine and its http.Server.
type Server struct {
	cfg      config.AppConfig
	engine   *gin.Engine
	http     *http.Server
	logs     *logs.Service
	flash    *flash.Store
	pager    *pagination.Helper
	strength *strength.Estimator
	verifier *captcha.Verifier
	metrics  *Metrics
	log      *logging.Logger
}

// New builds the server and registers its routes.
func New(cfg config.AppConfig, deps Deps) (*Server, error) {
	if deps.Logs == nil || deps.Flash == nil {
		return nil, errors.New("server requires a log service and a flash store")
	}
	if deps.Estimator == nil {
		deps.Estimator = strength.NewEstimator()
	}
	if deps.Verifier == nil {
		deps.Verifier = captcha.NewVerifier(cfg.HCaptcha)
	}
	if deps.Log == nil {
		deps.Log = logging.Nop()
	}

	s := &Server{
		cfg:      cfg,
		engine:   gin.New(),
		logs:     deps.Logs,
		flash:    deps.Flash,
		pager:    pagination.NewHelper(deps.Logs.Options()),
		strength: deps.Estimator,
		verifier: deps.Verifier,
		metrics:  NewMetrics(),
		log:      deps.Log,
	}
	s.engine.SetHTMLTemplate(newTemplates())
	s.routes(deps.Limiter)

	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) routes(limiter Limiter) {
	s.engine.Use(gin.Recovery())
	s.engine.Use(RequestLogger(s.log))
	s.engine.Use(s.metrics.Middleware())
	s.engine.Use(CORS(s.cfg.CORS.AllowedOrigins))

	s.engine.GET("/health", s.health)
	s.engine.GET("/metrics", s.metrics.Handler)
	s.engine.POST("/theme", s.setTheme)

	api := s.engine.Group("/api")
	api.Use(RateLimit(limiter, s.log))
	{
		api.POST("/check-password-strength", s.checkPasswordStrength)
		api.POST("/verify-captcha", s.verifyCaptcha)
	}

	admin := s.engine.Group("/admin/logs")
	{
		admin.GET("", s.listLogs)
		admin.GET("/export", s.exportLogs)
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("listening on %s", s.cfg.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

// NewRedisClient connects to url, or returns nil when url is empty.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}
