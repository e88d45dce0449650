package http

import (
	"net"
	"net/http"

	"github.com/sophialabs/scenarioadmin/internal/domain/scenario"
)

// requireCredentials rejects catalog requests while no upstream credential
// is configured, before any operation runs.
func (s *Server) requireCredentials(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.tokens != nil && s.tokens.Token() == "" {
			s.logger.Warn("catalog request rejected: no upstream credential configured", "method", r.Method)
			writeError(w, scenario.Errorf(scenario.KindConfiguration, "missing GitHub token"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// rateLimit applies a token bucket per client address.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limit.Limiter == nil || s.limit.Rate <= 0 {
			next.ServeHTTP(w, r)
			return
		}
		client := clientKey(r)
		if !s.limit.Limiter.Allow(r.Context(), client, s.limit.Rate, s.limit.Burst) {
			s.logger.Warn("catalog request rate limited", "client", client)
			writeErrorCode(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientKey strips the port from RemoteAddr. RealIP may already have
// replaced it with a bare address.
func clientKey(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
