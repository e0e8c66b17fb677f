// Package internal provides the application entry points: single-file and
// directory conversion, watch mode, and the browse server.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/raido/internal/api"
	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/convert"
	"github.com/starford/raido/internal/engine"
	"github.com/starford/raido/internal/manifest"
	"github.com/starford/raido/internal/rewrite"
	"github.com/starford/raido/internal/storage"
	"github.com/starford/raido/internal/watch"
)

// FileJob describes a single-file conversion.
type FileJob struct {
	MarkdownFile string
	OutputDir    string
}

// DirJob describes a directory conversion (also used by watch and serve,
// which operate on the same source/output pair).
type DirJob struct {
	SourceDir string
	OutputDir string
	SkipDirs  string // regex of source subpaths to skip; empty skips nothing
	ImageDir  string // flat destination for image assets; empty mirrors
	PDFDir    string // flat destination for PDF assets; empty mirrors
}

func newApplication(opts ...Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// newLogger installs a structured JSON logger at the configured level.
func newLogger(cfg *Config) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

func (a *application) newEngine() engine.Converter {
	if a.engine != nil {
		return a.engine
	}
	e := a.config.Engine
	return engine.NewPandoc(e.Binary, e.From, e.To, e.Wrap)
}

func (a *application) newConverter() *convert.Converter {
	links := rewrite.NewLinkRewriter(a.config.Convert.ImageLinkPrefix, a.config.Convert.AttachmentLinkPrefix)
	return convert.NewConverter(a.newEngine(), links)
}

func compileSkip(expr string) (*regexp.Regexp, error) {
	if expr == "" {
		return nil, nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid skip-dirs regex: %w", err)
	}
	return re, nil
}

// RunConvertFile converts one Markdown file into the output directory.
func RunConvertFile(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts...)
	if err != nil {
		return err
	}
	logger := newLogger(app.config)

	job := app.fileJob
	if job == nil {
		return fmt.Errorf("file job is required")
	}

	if err := os.MkdirAll(job.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	dst, err := storage.NewFS(job.OutputDir)
	if err != nil {
		return fmt.Errorf("init output: %w", err)
	}

	data, err := os.ReadFile(job.MarkdownFile)
	if err != nil {
		return fmt.Errorf("read note: %w", err)
	}

	base := filepath.Base(job.MarkdownFile)
	basename := strings.TrimSuffix(base, filepath.Ext(base))

	res, err := app.newConverter().ConvertNote(ctx, basename, string(data))
	if err != nil {
		return err
	}

	orgRel := basename + ".org"
	if err := dst.Write(orgRel, []byte(res.Content)); err != nil {
		return err
	}

	logger.Info("converted note",
		slog.String("source", job.MarkdownFile),
		slog.String("output", filepath.Join(job.OutputDir, orgRel)),
		slog.String("id", res.ID))
	return nil
}

// buildPipeline assembles the two-phase pipeline for a directory job. The
// returned manifest is nil when disabled; the caller owns closing it.
func (a *application) buildPipeline(logger *slog.Logger) (*convert.Pipeline, *manifest.DB, error) {
	job := a.dirJob
	if job == nil {
		return nil, nil, fmt.Errorf("dir job is required")
	}

	if err := os.MkdirAll(job.OutputDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create output dir: %w", err)
	}
	src, err := storage.NewFS(job.SourceDir)
	if err != nil {
		return nil, nil, fmt.Errorf("init source: %w", err)
	}
	dst, err := storage.NewFS(job.OutputDir)
	if err != nil {
		return nil, nil, fmt.Errorf("init output: %w", err)
	}
	skip, err := compileSkip(job.SkipDirs)
	if err != nil {
		return nil, nil, err
	}

	popts := []convert.PipelineOption{}
	if skip != nil {
		popts = append(popts, convert.WithSkip(skip))
	}
	if job.ImageDir != "" {
		popts = append(popts, convert.WithImageDir(job.ImageDir))
	}
	if job.PDFDir != "" {
		popts = append(popts, convert.WithPDFDir(job.PDFDir))
	}

	var man *manifest.DB
	if a.config.Manifest.Path != "" {
		man, err = manifest.Open(a.config.Manifest.Path)
		if err != nil {
			return nil, nil, err
		}
		popts = append(popts, convert.WithRecorder(man))
	}

	return convert.NewPipeline(src, dst, a.newConverter(), logger, popts...), man, nil
}

// RunConvertDir converts a whole directory tree once.
func RunConvertDir(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts...)
	if err != nil {
		return err
	}
	logger := newLogger(app.config)

	p, man, err := app.buildPipeline(logger)
	if err != nil {
		return err
	}
	if man != nil {
		defer man.Close()
		if err := man.Reset(); err != nil {
			return err
		}
	}

	_, err = p.Run(ctx)
	return err
}

// RunWatch converts the tree once, then re-runs the full conversion on every
// debounced source change until interrupted.
func RunWatch(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts...)
	if err != nil {
		return err
	}
	logger := newLogger(app.config)

	p, man, err := app.buildPipeline(logger)
	if err != nil {
		return err
	}
	if man != nil {
		defer man.Close()
	}

	rebuild := func(ctx context.Context) error {
		if man != nil {
			if err := man.Reset(); err != nil {
				return err
			}
		}
		_, err := p.Run(ctx)
		return err
	}

	// Initial full conversion; a failure here is fatal, as in a direct run.
	if err := rebuild(ctx); err != nil {
		return err
	}

	skip, err := compileSkip(app.dirJob.SkipDirs)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return watch.Run(gCtx, app.dirJob.SourceDir, skip, logger, rebuild)
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("received shutdown signal", slog.String("signal", sig.String()))
			cancel()
		case <-gCtx.Done():
		}
		return nil
	})

	return g.Wait()
}

// RunServe exposes a converted corpus and its manifest over HTTP.
func RunServe(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts...)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := newLogger(cfg)

	if app.dirJob == nil {
		return fmt.Errorf("dir job is required")
	}
	if cfg.Manifest.Path == "" {
		return fmt.Errorf("serve: %w", apperr.ErrNoManifest)
	}

	man, err := manifest.Open(cfg.Manifest.Path)
	if err != nil {
		return err
	}
	defer man.Close()

	dst, err := storage.NewFS(app.dirJob.OutputDir)
	if err != nil {
		return fmt.Errorf("init output: %w", err)
	}

	svc := api.NewService(man, dst)
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("server starting",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("output_dir", app.dirJob.OutputDir),
		slog.String("manifest", cfg.Manifest.Path))

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("server stopped")
	return nil
}
