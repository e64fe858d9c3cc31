// Package web serves the portfolio page, its animation streams and the
// admin area over gin.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/KavishaShah6/portfolio/internal/config"
	"github.com/KavishaShah6/portfolio/internal/content"
	"github.com/KavishaShah6/portfolio/internal/loader"
	"github.com/KavishaShah6/portfolio/internal/logging"
	"github.com/KavishaShah6/portfolio/internal/metrics"
	"github.com/KavishaShah6/portfolio/internal/store"
	"github.com/KavishaShah6/portfolio/internal/typewriter"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Options wires the server's collaborators. Store may be nil, in which case
// visits and clicks are not recorded and the admin area reports an error.
type Options struct {
	Config  config.Config
	Logger  *zap.Logger
	Catalog *content.Catalog
	Store   *store.Store
	Metrics *metrics.Metrics
	Clock   clockwork.Clock
}

// Server is the HTTP surface of the portfolio.
type Server struct {
	cfg     config.Config
	logger  *zap.Logger
	catalog *content.Catalog
	store   *store.Store
	metrics *metrics.Metrics
	clock   clockwork.Clock

	sequence *loader.Sequence
	cycler   *typewriter.Cycler
	upgrader websocket.Upgrader
	admin    *admin

	engine *gin.Engine
	bg     sync.WaitGroup

	// stopping is cancelled when the server shuts down and ends every stream.
	stopping context.Context
	stop     context.CancelFunc
}

// New builds the router.
func New(opts Options) (*Server, error) {
	if opts.Catalog == nil {
		return nil, errors.New("catalog is required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	cycler, err := typewriter.NewCycler(typewriter.DefaultPhrases())
	if err != nil {
		return nil, fmt.Errorf("build typewriter: %w", err)
	}
	adm, err := newAdmin(opts.Config, opts.Logger)
	if err != nil {
		return nil, fmt.Errorf("init admin: %w", err)
	}

	s := &Server{
		cfg:      opts.Config,
		logger:   opts.Logger,
		catalog:  opts.Catalog,
		store:    opts.Store,
		metrics:  opts.Metrics,
		clock:    opts.Clock,
		sequence: loader.Default(),
		cycler:   cycler,
		admin:    adm,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	s.upgrader.CheckOrigin = s.checkOrigin
	s.stopping, s.stop = context.WithCancel(context.Background())
	if err := s.routes(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) routes() error {
	r := gin.New()
	r.Use(gin.Recovery(), logging.Middleware(s.logger))

	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return fmt.Errorf("static assets: %w", err)
	}
	r.StaticFS("/static", http.FS(static))

	tracked := r.Group("/")
	if s.cfg.TrackVisitors && s.store != nil {
		tracked.Use(s.visitorTracking())
	}
	tracked.GET("/", s.index)
	tracked.GET("/sections/:id", s.sectionFragment)
	tracked.GET(content.ResumePath, s.resume)
	tracked.GET("/go/:kind/:slug/:action", s.outbound)

	r.POST("/nav", s.nav)
	r.GET("/privacy", s.privacy)
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	api := r.Group("/api")
	api.Use(cors.New(s.corsConfig()))
	api.GET("/loader", s.loaderSteps)
	api.GET("/loader/stream", s.loaderStream)
	api.GET("/typewriter", s.typewriterConfig)
	api.GET("/scene", s.sceneFrames)
	r.GET("/ws/typewriter", s.typewriterSocket)

	s.adminRoutes(r)

	s.engine = r
	return nil
}

func (s *Server) corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	if s.cfg.AllowAllOrigins() {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = s.cfg.CORSOrigins
	}
	cfg.AllowMethods = []string{http.MethodGet, http.MethodOptions}
	return cfg
}

// checkOrigin admits same-host pages, clients without an Origin header and
// the configured CORS origins.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || s.cfg.OriginAllowed(origin) {
		return true
	}
	u, err := url.Parse(origin)
	return err == nil && strings.EqualFold(u.Host, r.Host)
}

// Handler exposes the router.
func (s *Server) Handler() http.Handler { return s.engine }

// Close ends open streams and waits for background visit recording.
func (s *Server) Close() {
	s.stop()
	s.bg.Wait()
}

// streamContext is cancelled when either the request ends or the server
// starts shutting down.
func (s *Server) streamContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	unregister := context.AfterFunc(s.stopping, cancel)
	return ctx, func() {
		unregister()
		cancel()
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully. Open
// streams are cancelled at shutdown and background writes are drained on
// every return path.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer s.Close()

	srv := &http.Server{Handler: s.engine}
	srv.RegisterOnShutdown(s.stop)

	go s.cleanupLoop(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

var templateFuncs = template.FuncMap{
	"join": strings.Join,
	"add":  func(a, b int) int { return a + b },
	"delay": func(i int, step float64) string {
		return fmt.Sprintf("%.1fs", float64(i)*step)
	},
}
