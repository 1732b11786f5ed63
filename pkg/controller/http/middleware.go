package http

import (
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lifeguide/pkg/utils/errutil"
	"golang.org/x/time/rate"
)

// rateLimit rejects requests with 429 once the limiter has no tokens left
func rateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Retry-After", "1")
				errutil.HandleHTTP(r.Context(), w, goerr.New("rate limit exceeded",
					goerr.V("remote", r.RemoteAddr),
				), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
