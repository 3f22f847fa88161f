package server

import (
	_ "embed"
	"log/slog"
	"net/http"
	"time"

	"github.com/leofalp/toonboard/internal/config"
	"github.com/leofalp/toonboard/storyboard"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

const (
	// ResultTTL is how long a generated result stays downloadable from memory.
	ResultTTL = time.Hour

	// maxBodyBytes bounds request bodies.
	maxBodyBytes = 1 << 20
)

//go:embed static/index.html
var indexHTML []byte

// Server routes requests to the storyboard generator. Build one with New.
type Server struct {
	cfg       config.Config
	generator *storyboard.Generator
	logger    *slog.Logger
	clock     func() time.Time

	results *resultStore
	flight  singleflight.Group
	mux     *http.ServeMux
	handler http.Handler
}

// Option customizes server construction.
type Option func(*Server)

// WithClock allows tests to control timestamps and file names.
func WithClock(clock func() time.Time) Option {
	return func(s *Server) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// New returns the HTTP handler for the application. A nil generator is
// allowed; generation then fails until a client is configured. A nil logger
// means slog.Default().
func New(cfg config.Config, generator *storyboard.Generator, logger *slog.Logger, opts ...Option) http.Handler {
	return newServer(cfg, generator, logger, opts...)
}

func newServer(cfg config.Config, generator *storyboard.Generator, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if generator == nil {
		generator = &storyboard.Generator{}
	}
	s := &Server{
		cfg:       cfg,
		generator: generator,
		logger:    logger,
		clock:     time.Now,
		results:   newResultStore(cache.New(ResultTTL, 2*ResultTTL), cfg.OutputDir),
		mux:       http.NewServeMux(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	s.routes()
	s.handler = chain(s.mux, s.recoverPanics, s.accessLog, requestID)
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("POST /api/generate", s.handleGenerate)
	s.mux.HandleFunc("POST /api/download-docx", s.handleDownloadDOCX)
	s.mux.HandleFunc("GET /api/download/{filename}", s.handleDownload)
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("/", s.handleNotFound)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// NewHTTPServer wraps handler in an *http.Server with the timeouts the
// application uses. The write timeout leaves room for a slow model call.
func NewHTTPServer(addr string, handler http.Handler, requestTimeout time.Duration) *http.Server {
	if requestTimeout <= 0 {
		requestTimeout = config.DefaultTimeout
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2*requestTimeout + 30*time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
