// internal/httpserver/server.go
//
// HTTP server wiring for the Daily Wish frame backend.
// Responsibilities:
//   - Router + middleware (request IDs, real IP, panic recovery, timeouts,
//     zerolog access log, CORS).
//   - Public endpoints: "/", "/health", "/metrics", "/debug/wishes".
//   - Frame endpoints mounted under /api (see routes_wish.go).
//   - Graceful start/stop around net/http.Server.
//
// Notes:
//   - Responses default to JSON; frame handlers switch to text/html or
//     image/svg+xml before writing.
//   - All collaborators are passed in through Options; the server owns none
//     of them and closes none of them.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/dailywish/go-server/internal/daily"
	"github.com/dailywish/go-server/internal/frame"
	"github.com/dailywish/go-server/internal/metrics"
	"github.com/dailywish/go-server/internal/render"
	"github.com/dailywish/go-server/internal/wishes"
)

// Options are the collaborators and settings a Server needs.
type Options struct {
	Wishes         wishes.List
	Votes          *daily.Store
	Renderer       *render.Renderer
	State          *frame.StateSigner
	Metrics        *metrics.Metrics
	BaseURL        string
	ClientOrigin   string
	RequestTimeout time.Duration
	Now            func() time.Time // defaults to time.Now
}

// Server bundles the router and the frame dependencies.
type Server struct {
	r       *chi.Mux
	wishes  wishes.List
	votes   *daily.Store
	render  *render.Renderer
	state   *frame.StateSigner
	metrics *metrics.Metrics
	baseURL string
	now     func() time.Time
}

// New constructs a Server, installs middleware, and registers routes.
func New(o Options) *Server {
	s := &Server{
		r:       chi.NewRouter(),
		wishes:  o.Wishes,
		votes:   o.Votes,
		render:  o.Renderer,
		state:   o.State,
		metrics: o.Metrics,
		baseURL: o.BaseURL,
		now:     o.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	timeout := o.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)             // add X-Request-ID
	s.r.Use(chimw.RealIP)                // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(hlog.NewHandler(log.Logger)) // request-scoped logger
	s.r.Use(accessLog)                   // one line per request
	s.r.Use(chimw.Recoverer)             // recover from panics
	s.r.Use(chimw.Timeout(timeout))      // bound handler time
	s.r.Use(jsonContentType)             // default JSON responses
	s.r.Use(cors(o.ClientOrigin))        // frame hosts fetch cross-origin

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"service":"daily-wish","endpoints":["/health","GET /api/wish","POST /api/wish","POST /api/vote","GET /api/og"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	s.r.Get("/debug/wishes", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]int{"wishes": s.wishes.Len()})
	})

	// Frame endpoints
	s.mountWish(s.r)

	// JSON 404/405 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})
	s.r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return s
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// Run serves HTTP on addr until ctx is cancelled, then drains in-flight
// requests for at most shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- hs.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info().Dur("timeout", shutdownTimeout).Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := hs.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors allows a single origin ("*" by default, since frame hosts embed the
// card image and post from their own origins).
func cors(origin string) func(http.Handler) http.Handler {
	if origin == "" {
		origin = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// accessLog writes one structured line per request through the hlog logger.
var accessLog = hlog.AccessHandler(func(r *http.Request, status, size int, dur time.Duration) {
	hlog.FromRequest(r).Info().
		Str("req_id", chimw.GetReqID(r.Context())).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", dur).
		Msg("request")
})

// ------------------------------- writers -----------------------------------

// writeError sends {"error": msg} with status.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// writeBody sends a pre-rendered document.
func writeBody(w http.ResponseWriter, status int, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
