package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"cafeprep/internal/catalog"
	"cafeprep/internal/core"
	"cafeprep/internal/log"
	"cafeprep/internal/middleware/ratelimit"
	"cafeprep/internal/middleware/security"
	"cafeprep/internal/middleware/trace"
	"cafeprep/internal/services"
	appweb "cafeprep/web"
)

// EntryService is what the handlers need from the service layer.
type EntryService interface {
	Record(ctx context.Context, e core.Entry) (services.Outcome, error)
	Summary(ctx context.Context) ([]core.DateItemTotals, error)
	Daily(ctx context.Context, date string) ([]core.ItemTotals, core.ItemTotals, error)
}

// Options configures NewServer. Zero values fall back to defaults.
type Options struct {
	CafeName  string
	Catalog   *catalog.Catalog
	Logger    *slog.Logger
	RateLimit ratelimit.Config
	// ReadTimeout bounds each store read made while rendering a panel.
	ReadTimeout time.Duration
}

type Server struct {
	http.Server
	templates   *template.Template
	entries     EntryService
	catalog     *catalog.Catalog
	cafeName    string
	readTimeout time.Duration
	logger      *log.Logger
	structured  *log.StructuredLogger
	started     time.Time

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and templates, returning a ready-to-run server.
func NewServer(addr string, entries EntryService, opts Options) *Server {
	if opts.CafeName == "" {
		opts.CafeName = "Cafe Parioli"
	}
	if opts.Catalog == nil {
		opts.Catalog = catalog.New(catalog.Default)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.RateLimit.RequestsPerMinute == 0 {
		opts.RateLimit = ratelimit.DefaultConfig()
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 10 * time.Second
	}

	mux := http.NewServeMux()
	s := &Server{
		entries:     entries,
		catalog:     opts.Catalog,
		cafeName:    opts.CafeName,
		readTimeout: opts.ReadTimeout,
		logger:      log.Wrap(opts.Logger, log.ComponentHTTP),
		structured:  log.NewStructuredLogger(opts.Logger),
		started:     time.Now(),
		rateLimiter: ratelimit.NewLimiter(opts.RateLimit),
	}
	s.securityDetector = security.NewDetector(opts.Logger)
	s.traceMiddleware = trace.NewMiddleware(opts.Logger, s.securityDetector.ExtractClientIP)

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Error("Failed parsing templates", log.FieldError, err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /entries", s.handleCreateEntry)
	mux.HandleFunc("GET /ui/summary", s.handleSummary)
	mux.HandleFunc("GET /ui/daily", s.handleDaily)
	mux.HandleFunc("GET /export/summary.xlsx", s.handleExportSummary)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	var h http.Handler = mux
	h = s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, s.onRateLimited)(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.securityDetector.Middleware(h)
	h = s.traceMiddleware.Middleware(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "Too many submissions. Please wait a minute and try again.").Write(w)
}

// Shutdown stops background goroutines and gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// Close releases background resources without serving. Used by tests.
func (s *Server) Close() error {
	s.rateLimiter.Stop()
	return s.Server.Close()
}
