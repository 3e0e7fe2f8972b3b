package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jcallahan/reviewd/internal/analysis"
	"github.com/jcallahan/reviewd/internal/cache"
	"github.com/jcallahan/reviewd/internal/config"
	"github.com/jcallahan/reviewd/internal/github"
	"github.com/jcallahan/reviewd/internal/pipeline"
	"github.com/jcallahan/reviewd/internal/server"
)

var (
	serveConfigPath string
	serveAddr       string
	serveDev        bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the review HTTP service",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "path to YAML config file")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	serveCmd.Flags().BoolVar(&serveDev, "dev", false, "development logging")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(serveConfigPath)
	if err != nil {
		exitCode = ExitUsageError
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	logger, err := newLogger(serveDev)
	if err != nil {
		exitCode = ExitRuntimeError
		return err
	}
	defer func() { _ = logger.Sync() }()

	engine, aiEnabled := buildEngine(cfg, logger)

	var scm github.Client
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		scm = github.NewClient(token)
	} else {
		logger.Warn("GITHUB_TOKEN not set, webhook reviews disabled")
	}

	srv := server.New(server.Options{
		Engine:        engine,
		SCM:           scm,
		WebhookSecret: []byte(os.Getenv("GITHUB_WEBHOOK_SECRET")),
		AIRequired:    cfg.AI.Required && aiEnabled,
		Logger:        logger,
	})

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Server.Addr), zap.Bool("ai_enabled", aiEnabled))
		errc <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			exitCode = ExitRuntimeError
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			exitCode = ExitRuntimeError
			return err
		}
	}
	return nil
}

// buildEngine wires the cache, analyzer, and pipeline from config. A
// missing API key disables AI with a warning rather than refusing to start:
// the service still serves rule-only reviews.
func buildEngine(cfg config.Config, logger *zap.Logger) (*pipeline.Engine, bool) {
	c := cache.New(cfg.Cache.MaxEntries, cfg.CacheTTL(), cfg.DegradedCacheTTL())

	var analyzer analysis.Analyzer
	aiEnabled := cfg.AI.Enabled
	if aiEnabled {
		a, err := analysis.NewOpenAI(analysis.Options{
			BaseURL:      cfg.AI.BaseURL,
			Model:        cfg.AI.Model,
			MaxRetries:   cfg.AI.MaxRetries,
			MaxDiffBytes: cfg.AI.MaxDiffBytes,
		}, logger)
		if err != nil {
			logger.Warn("ai analysis disabled", zap.Error(err))
			aiEnabled = false
		} else {
			analyzer = a
		}
	}

	engine := pipeline.New(pipeline.Options{
		AIEnabled:       aiEnabled,
		RuleContext:     cfg.AI.RuleContext,
		AITimeout:       cfg.AITimeout(),
		BreakerCooldown: cfg.BreakerCooldown(),
		Model:           cfg.AI.Model,
		RuleSetVersion:  cfg.Rules.Version,
	}, c, analyzer, logger)
	return engine, aiEnabled
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
