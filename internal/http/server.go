package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"painel/internal/auth"
	"painel/internal/cache"
	"painel/internal/dataset"
	"painel/internal/log"
	"painel/internal/middleware/ratelimit"
	"painel/internal/middleware/security"
	"painel/internal/middleware/trace"
	"painel/internal/views"
	appweb "painel/web"
)

// DatasetLoader yields the current decoded extract.
type DatasetLoader interface {
	Snapshot(ctx context.Context, path string) (*dataset.Snapshot, error)
	Stats() dataset.Stats
}

// Config holds the server settings that come from the environment.
type Config struct {
	Addr        string
	DataPath    string
	PreviewRows int
	// LoginAttempts is the number of login attempts allowed per client per minute.
	LoginAttempts int
	SessionTTL    time.Duration
}

// Dependencies are the collaborators the server serves from.
type Dependencies struct {
	Loader   DatasetLoader
	Store    auth.CredentialStore
	Sessions *auth.Sessions
	Logger   *log.Logger
}

type appMetrics struct {
	uptime          time.Time
	loginsOK        atomic.Int64
	loginsFailed    atomic.Int64
	renders         atomic.Int64
	renderErrors    atomic.Int64
	renderCacheHits atomic.Int64
}

type Server struct {
	http.Server
	cfg       Config
	logger    *log.Logger
	templates *template.Template

	loader   DatasetLoader
	store    auth.CredentialStore
	sessions *auth.Sessions

	// Rendered dashboards keyed by extract version and canonical query.
	renders *cache.LRUCache[views.Dashboard]
	caches  *cache.Manager

	loginLimiter     *ratelimit.Limiter
	limitedLogin     http.Handler
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	appMetrics       *appMetrics

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
// Template parse failures are logged and reported by /readyz.
func NewServer(cfg Config, deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 8 * time.Hour
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr: cfg.Addr,
		},
		cfg:              cfg,
		logger:           logger,
		loader:           deps.Loader,
		store:            deps.Store,
		sessions:         deps.Sessions,
		renders:          cache.NewLRUCache[views.Dashboard](128, 5*time.Minute),
		caches:           cache.NewManager(logger),
		loginLimiter:     ratelimit.NewLimiter(ratelimit.Config{Requests: cfg.LoginAttempts, Window: time.Minute}),
		securityDetector: security.NewDetector(),
		appMetrics:       &appMetrics{uptime: time.Now()},
	}
	s.traceMiddleware = trace.NewMiddleware(logger, s.securityDetector.ExtractClientIP)
	s.limitedLogin = s.loginLimiter.Middleware(s.securityDetector.ExtractClientIP, s.handleLoginLimited)(
		http.HandlerFunc(s.handleLoginSubmit))

	if s.sessions != nil {
		s.caches.Register(s.sessions.Cache())
	}
	s.caches.Register(s.renders)
	s.caches.StartCleanup(time.Minute)

	t, err := template.New("painel").Funcs(templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", log.FieldError, err)
	} else {
		s.templates = t
	}

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/logout", s.handleLogout)

	mux.Handle("/", s.requireSession(http.HandlerFunc(s.handleIndex)))
	mux.Handle("/ui/filtros", s.requireSession(s.handlePartial(viewFilters)))
	mux.Handle("/ui/overview", s.requireSession(s.handlePartial(views.ViewOverview)))
	mux.Handle("/ui/documentos", s.requireSession(s.handlePartial(views.ViewDocumentos)))
	mux.Handle("/ui/municipios", s.requireSession(s.handlePartial(views.ViewMunicipios)))
	mux.Handle("/api/dashboard", s.requireSession(http.HandlerFunc(s.handleDashboardJSON)))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	var handler http.Handler = mux
	handler = headers.Middleware(handler)
	handler = s.securityDetector.Middleware(handler)
	handler = log.Middleware(logger, trace.GetRequestID)(handler)
	handler = s.traceMiddleware.Middleware(handler)
	s.Handler = handler

	return s
}

// Shutdown stops background routines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.loginLimiter.Stop()
		s.caches.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// renderKey identifies a dashboard by extract version and query.
func renderKey(snap *dataset.Snapshot, params DashboardParams) string {
	return snap.Path + "|" + strconv.FormatInt(snap.LoadedAt.UnixNano(), 10) + "|" + params.Encode()
}

// dashboard renders the views for params, reusing a cached render of the
// same extract version.
func (s *Server) dashboard(ctx context.Context, params DashboardParams) (views.Dashboard, error) {
	snap, err := s.loader.Snapshot(ctx, s.cfg.DataPath)
	if err != nil {
		s.appMetrics.renderErrors.Add(1)
		return views.Dashboard{}, err
	}

	key := renderKey(snap, params)
	if dash, ok := s.renders.Get(key); ok {
		s.appMetrics.renderCacheHits.Add(1)
		return dash, nil
	}

	start := time.Now()
	dash := views.Render(views.State{
		Full:         snap.Table,
		Filters:      params.Filters,
		Period:       params.Period,
		PreviewLimit: s.cfg.PreviewRows,
		Notices:      snap.Notices,
	})
	s.renders.Set(key, dash)
	s.appMetrics.renders.Add(1)

	log.FromContext(ctx).DebugContext(ctx, "Dashboard rendered",
		log.FieldOperation, log.OpRender,
		log.FieldRows, dash.FilteredRows,
		log.FieldDuration, time.Since(start).Milliseconds())
	return dash, nil
}
