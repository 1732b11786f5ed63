package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/lifeguide/pkg/domain/model"
	"github.com/secmon-lab/lifeguide/pkg/usecase"
	"github.com/secmon-lab/lifeguide/pkg/utils/logging"
	"golang.org/x/time/rate"
)

// ChatUseCase is the query handling used by the HTTP front end
type ChatUseCase interface {
	HandleQuery(ctx context.Context, session *usecase.Session, query string) *model.Reply
	CacheEntries() []*model.CacheEntry
}

// SessionProvider resolves the conversation of a request
type SessionProvider interface {
	Get(id model.SessionID) *usecase.Session
}

// DefaultMaxBodyBytes bounds the size of a chat request body
const DefaultMaxBodyBytes = 64 << 10

type Server struct {
	router       *chi.Mux
	chat         ChatUseCase
	sessions     SessionProvider
	limiter      *rate.Limiter
	maxBodyBytes int64
}

type Options func(*Server)

// WithRateLimit limits POST /chat to rps requests per second with the given
// burst. A non-positive rps disables the limit.
func WithRateLimit(rps float64, burst int) Options {
	return func(s *Server) {
		if rps <= 0 {
			s.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithMaxBodyBytes(n int64) Options {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

func New(chat ChatUseCase, sessions SessionProvider, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:       r,
		chat:         chat,
		sessions:     sessions,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	chatRouter := r.With()
	if s.limiter != nil {
		chatRouter = r.With(rateLimit(s.limiter))
	}
	chatRouter.Post("/chat", s.chatHandler)

	r.Get("/api/cache", s.cacheHandler)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		logger := logging.Default().With("request_id", middleware.GetReqID(r.Context()))
		ctx := logging.With(r.Context(), logger)

		defer func() {
			logger.Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r.WithContext(ctx))
	})
}
