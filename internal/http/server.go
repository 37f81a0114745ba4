package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"keuangan/internal/auth"
	"keuangan/internal/core"
	"keuangan/internal/entry"
	applog "keuangan/internal/log"
	"keuangan/internal/middleware/ratelimit"
	"keuangan/internal/middleware/security"
	"keuangan/internal/middleware/trace"
	"keuangan/internal/services"
)

// SessionCookie carries the session ID.
const SessionCookie = "keuangan_session"

// Ledger is what the API needs from the ledger service.
type Ledger interface {
	Plan() *core.Plan
	Ready(ctx context.Context) error
	Submit(ctx context.Context, sess auth.Session, req entry.Request) ([]core.Transaction, error)
	Balances(ctx context.Context, sess auth.Session) ([]core.AccountBalance, error)
	NetWorth(ctx context.Context, sess auth.Session) (core.Money, error)
	MonthlySummary(ctx context.Context, sess auth.Session, year, month int) (core.MonthlySummary, error)
	Transactions(ctx context.Context, sess auth.Session, filter *core.Period) ([]core.Transaction, error)
	Dashboard(ctx context.Context, sess auth.Session, year, month int) (services.Dashboard, error)
}

type Server struct {
	http.Server

	ledger   Ledger
	authn    *auth.Authenticator
	sessions *auth.Registry
	logger   *applog.Logger
	now      func() time.Time

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	started  time.Time

	stopSweep    chan struct{}
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, ledger Ledger, authn *auth.Authenticator, sessions *auth.Registry, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	s := &Server{
		ledger:    ledger,
		authn:     authn,
		sessions:  sessions,
		logger:    logger.WithComponent(applog.ComponentHTTP),
		now:       time.Now,
		limiter:   ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:  security.NewDetector(),
		started:   time.Now(),
		stopSweep: make(chan struct{}),
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go s.sweepSessions()
	return s
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		ErrorResponse(http.StatusNotFound, "not found").Write(w)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		ErrorResponse(http.StatusMethodNotAllowed, "method not allowed").Write(w)
	})

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/plan", s.handlePlan).Methods(http.MethodGet)
	api.HandleFunc("/balances", s.handleBalances).Methods(http.MethodGet)
	api.HandleFunc("/net-worth", s.handleNetWorth).Methods(http.MethodGet)
	api.HandleFunc("/summary", s.handleSummary).Methods(http.MethodGet)
	api.HandleFunc("/dashboard", s.handleDashboard).Methods(http.MethodGet)
	api.HandleFunc("/transactions", s.handleListTransactions).Methods(http.MethodGet)
	api.HandleFunc("/transactions", s.handleCreateTransaction).Methods(http.MethodPost)

	limited := s.limiter.Middleware(ratelimit.DefaultConfig().Methods, s.detector.ExtractClientIP,
		func(w http.ResponseWriter, r *http.Request) {
			s.logger.WarnContext(r.Context(), "Rate limit exceeded",
				applog.FieldComponent, applog.ComponentRateLimit,
				applog.FieldClientIP, s.detector.ExtractClientIP(r),
				applog.FieldPath, r.URL.Path)
			ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded").Write(w)
		})

	var h http.Handler = r
	h = limited(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.detector.Middleware(h)
	h = s.tracer.Middleware(h)
	h = applog.Middleware(s.logger)(h)
	return h
}

// sweepSessions drops expired sessions every 10 minutes.
func (s *Server) sweepSessions() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.sessions.Sweep(); n > 0 {
				s.logger.Debug("Expired sessions removed", "count", n)
			}
		case <-s.stopSweep:
			return
		}
	}
}

// Shutdown stops the background goroutines and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		close(s.stopSweep)
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// session returns the caller's session, or an anonymous one.
func (s *Server) session(r *http.Request) auth.Session {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return auth.Anonymous()
	}
	sess, ok := s.sessions.Get(c.Value)
	if !ok {
		return auth.Anonymous()
	}
	return sess
}
