package api

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"storefront/internal/domain/admin"
	"storefront/internal/domain/customer"
	"storefront/internal/metrics"
	"storefront/internal/platform/apperr"
	jwtpkg "storefront/internal/platform/jwt"
)

type ctxKey string

const ctxKeyPrincipal ctxKey = "principal"

var slogLogger = slog.Default()

func SetLogger(l *slog.Logger) {
	if l != nil {
		slogLogger = l
	}
}

// Principal is the authenticated identity of a request. Exactly one of Admin
// and Cliente is set.
type Principal struct {
	Admin   *admin.Admin
	Cliente *customer.Cliente
}

func principalFromCtx(r *http.Request) *Principal {
	p, _ := r.Context().Value(ctxKeyPrincipal).(*Principal)
	return p
}

// Authenticate verifies the bearer token, reloads the identity it names and
// rejects tokens issued before that identity's last logout.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := bearerToken(r)
		if err != nil {
			errorResponse(w, err)
			return
		}

		claims, err := h.tokens.Verify(raw)
		if err != nil {
			errorResponse(w, tokenError(err))
			return
		}
		id, err := claims.SubjectID()
		if err != nil {
			errorResponse(w, apperr.Unauthorized("TOKEN_INVALIDO", "token invalido", err))
			return
		}
		var issuedAt time.Time
		if claims.IssuedAt != nil {
			issuedAt = claims.IssuedAt.Time
		}

		p, err := h.loadPrincipal(r.Context(), claims.Kind, id, issuedAt)
		if err != nil {
			errorResponse(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyPrincipal, p)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) loadPrincipal(ctx context.Context, kind jwtpkg.Kind, id int64, issuedAt time.Time) (*Principal, error) {
	invalid := apperr.Unauthorized("SESSAO_INVALIDA", "sessao invalida", nil)
	revoked := apperr.Unauthorized("SESSAO_REVOGADA", "sessao encerrada, faca login novamente", nil)

	switch kind {
	case jwtpkg.KindAdmin:
		a, err := h.admins.Get(ctx, id)
		if errors.Is(err, admin.ErrNotFound) {
			return nil, invalid
		}
		if err != nil {
			return nil, err
		}
		if a.TokenRevoked(issuedAt) {
			return nil, revoked
		}
		return &Principal{Admin: a}, nil
	case jwtpkg.KindCliente:
		c, err := h.clientes.Get(ctx, id)
		if errors.Is(err, customer.ErrNotFound) {
			return nil, invalid
		}
		if err != nil {
			return nil, err
		}
		if c.TokenRevoked(issuedAt) {
			return nil, revoked
		}
		return &Principal{Cliente: c}, nil
	default:
		return nil, invalid
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", apperr.Unauthorized("TOKEN_AUSENTE", "token de acesso nao informado", nil)
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", apperr.Unauthorized("TOKEN_INVALIDO", "cabecalho Authorization invalido", nil)
	}
	return strings.TrimSpace(parts[1]), nil
}

func tokenError(err error) *apperr.AppError {
	if errors.Is(err, jwtpkg.ErrExpiredToken) {
		return apperr.Unauthorized("TOKEN_EXPIRADO", "token expirado", err)
	}
	return apperr.Unauthorized("TOKEN_INVALIDO", "token invalido", err)
}

// RequireAdmin admits admins whose level grants at least required.
func RequireAdmin(required admin.AccessLevel) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := principalFromCtx(r)
			if p == nil || p.Admin == nil {
				errorResponse(w, apperr.Forbidden("ACESSO_NEGADO", "acesso restrito a administradores", nil))
				return
			}
			if !admin.CheckLevel(p.Admin.AccessLevel, required) {
				errorResponse(w, apperr.Forbidden("NIVEL_INSUFICIENTE", "nivel de acesso insuficiente", nil))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func RequireCliente(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := principalFromCtx(r)
		if p == nil || p.Cliente == nil {
			errorResponse(w, apperr.Forbidden("ACESSO_NEGADO", "acesso restrito a clientes", nil))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimit throttles a route per client IP. A zero limit disables it.
func RateLimit(limit rate.Limit, burst int) func(http.Handler) http.Handler {
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	limiter := newIPRateLimiter(limit, burst, 10*time.Minute)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.allow(clientIP(r)) {
				errorResponse(w, apperr.TooManyRequests("MUITAS_REQUISICOES", "muitas tentativas, aguarde e tente novamente", nil))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(rw, r)

		status := rw.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		elapsed := time.Since(start)

		metrics.ObserveRequest(r.Method, route, status, elapsed)

		slogLogger.Info("request",
			"request_id", chimw.GetReqID(r.Context()),
			"method", r.Method,
			"path", route,
			"status", status,
			"duration_ms", elapsed.Milliseconds(),
		)
	})
}

type ipRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	lastSeen map[string]time.Time
	limit    rate.Limit
	burst    int
	entryTTL time.Duration
}

func newIPRateLimiter(limit rate.Limit, burst int, entryTTL time.Duration) *ipRateLimiter {
	return &ipRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		lastSeen: make(map[string]time.Time),
		limit:    limit,
		burst:    burst,
		entryTTL: entryTTL,
	}
}

func (l *ipRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for key, ts := range l.lastSeen {
		if now.Sub(ts) > l.entryTTL {
			delete(l.limiters, key)
			delete(l.lastSeen, key)
		}
	}

	limiter, ok := l.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[ip] = limiter
	}
	l.lastSeen[ip] = now
	return limiter.Allow()
}

// clientIP relies on chi's RealIP middleware having rewritten RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
