package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"masterypath/internal/models"
	"masterypath/internal/security"
	"masterypath/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const StudentContextKey ContextKey = "student"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService *service.AuthService
	rateLimiter *security.RateLimiter
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(authService *service.AuthService) *Middleware {
	return &Middleware{
		authService: authService,
		rateLimiter: security.NewRateLimiter(10, time.Minute),
	}
}

// RequireAuth requires either a valid session cookie or a bearer token
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		student := m.authenticate(r)
		if student == nil {
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}

		ctx := context.WithValue(r.Context(), StudentContextKey, student)
		next(w, r.WithContext(ctx))
	}
}

func (m *Middleware) authenticate(r *http.Request) *models.Student {
	// Bearer token (watch monitor and other API clients)
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		student, err := m.authService.ValidateAPIToken(strings.TrimPrefix(auth, "Bearer "))
		if err == nil {
			return student
		}
		return nil
	}

	// Session cookie (browser clients)
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil
	}
	student, err := m.authService.ValidateSession(cookie.Value)
	if err != nil {
		return nil
	}
	return student
}

// RateLimit throttles requests per client IP
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := security.GetClientIP(r)
		if !m.rateLimiter.Allow(ip) {
			respondWithError(w, http.StatusTooManyRequests, "Too many requests", "", nil)
			return
		}
		next(w, r)
	}
}

// LogRequests logs each request with its duration
func (m *Middleware) LogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// studentFromContext returns the authenticated student set by RequireAuth
func studentFromContext(r *http.Request) *models.Student {
	student, _ := r.Context().Value(StudentContextKey).(*models.Student)
	return student
}
