package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jcallahan/reviewd/internal/github"
	"github.com/jcallahan/reviewd/internal/pipeline"
)

// Options configures the HTTP server.
type Options struct {
	Engine *pipeline.Engine
	// SCM is optional; the webhook endpoint reports itself unconfigured
	// without it.
	SCM github.Client
	// WebhookSecret validates GitHub webhook signatures. Empty skips
	// validation.
	WebhookSecret []byte
	// AIRequired makes /review answer 503 while the AI layer is
	// circuit-broken instead of serving rule-only results.
	AIRequired bool
	Logger     *zap.Logger
}

// Server exposes the review pipeline over HTTP.
type Server struct {
	opts   Options
	log    *zap.Logger
	router *gin.Engine
}

// New builds the server and its routes.
func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{opts: opts, log: log}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", s.handleHealthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/review", s.handleReview)
	r.POST("/webhook", s.handleWebhook)

	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "running",
		"ai_available": s.opts.Engine.AIAvailable(),
	})
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set("request_id", id)
		start := time.Now()
		c.Next()
		s.log.Info("request",
			zap.String("id", id),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}
