// Package httpd exposes the voice authentication service over HTTP.
//
// # Endpoints
//
//	POST   /api/voice/register      multipart: name + 1-5 audio samples
//	POST   /api/voice/identify      multipart: 1 audio probe
//	POST   /api/voice/verify        multipart: name + 1 audio probe
//	GET    /api/voice/users         list enrolled speakers
//	DELETE /api/voice/users/{name}  remove a speaker
//	GET    /health                  liveness probe
//
// Audio uploads are WAV, capped at 16 MiB per request body.
package httpd

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/voxauth/voxauth/pkg/voiceauth"
)

// Config assembles the server dependencies.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// Service executes the voice flows. Required.
	Service *voiceauth.Service

	// Logger receives access logs and handler errors.
	Logger zerolog.Logger

	// AllowedOrigins configures CORS. Empty means same-origin only;
	// use []string{"*"} to allow any origin.
	AllowedOrigins []string
}

// Server is the HTTP front end.
type Server struct {
	svc      *voiceauth.Service
	log      zerolog.Logger
	validate *validator.Validate
	srv      *http.Server
}

// New builds a Server from the config. Call ListenAndServe to start it.
func New(cfg Config) *Server {
	s := &Server{
		svc:      cfg.Service,
		log:      cfg.Logger,
		validate: validator.New(),
	}
	s.srv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router(cfg.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) router(origins []string) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	if len(origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
		}))
	}

	r.Get("/health", s.handleHealth)
	r.Route("/api/voice", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/identify", s.handleIdentify)
		r.Post("/verify", s.handleVerify)
		r.Get("/users", s.handleUsers)
		r.Delete("/users/{name}", s.handleDeleteUser)
	})
	return r
}

// Handler returns the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// ListenAndServe blocks serving requests until Shutdown is called or the
// listener fails.
func (s *Server) ListenAndServe() error {
	s.log.Info().Str("addr", s.srv.Addr).Msg("http server listening")
	return s.srv.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// accessLog emits one structured line per request.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}
