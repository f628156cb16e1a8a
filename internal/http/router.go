package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"storefront/internal/domain/admin"
	"storefront/internal/domain/customer"
	"storefront/internal/domain/interaction"
	"storefront/internal/domain/product"
	"storefront/internal/platform/apperr"
	jwtpkg "storefront/internal/platform/jwt"
)

const maxBodyBytes = 1 << 20

type Pinger interface {
	Ping(ctx context.Context) error
}

type Dependencies struct {
	Admins     *admin.Service
	Clientes   *customer.Service
	Produtos   *product.Service
	Interacoes *interaction.Service
	Tokens     *jwtpkg.Manager
	DB         Pinger
	Logger     *slog.Logger

	CORSOrigins []string
	// AuthRate throttles login, cadastro and password recovery per IP.
	AuthRate  rate.Limit
	AuthBurst int
	// GlobalRPM caps requests per IP per minute across the API. Zero disables it.
	GlobalRPM int
	// MaxUploadBytes bounds the product import spreadsheet.
	MaxUploadBytes int64
}

type Handler struct {
	admins     *admin.Service
	clientes   *customer.Service
	produtos   *product.Service
	interacoes *interaction.Service
	tokens     *jwtpkg.Manager
	db         Pinger
	maxUpload  int64
}

func NewRouter(deps Dependencies) http.Handler {
	SetLogger(deps.Logger)

	h := &Handler{
		admins:     deps.Admins,
		clientes:   deps.Clientes,
		produtos:   deps.Produtos,
		interacoes: deps.Interacoes,
		tokens:     deps.Tokens,
		db:         deps.DB,
		maxUpload:  deps.MaxUploadBytes,
	}
	if h.maxUpload <= 0 {
		h.maxUpload = 10 << 20
	}

	origins := deps.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(RequestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	if deps.GlobalRPM > 0 {
		r.Use(httprate.Limit(deps.GlobalRPM, time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByRealIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				errorResponse(w, apperr.TooManyRequests("MUITAS_REQUISICOES", "limite de requisicoes excedido", nil))
			}),
		))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/ready", h.handleReady)
	r.Get("/swagger/*", httpSwagger.WrapHandler)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	authLimit := RateLimit(deps.AuthRate, deps.AuthBurst)

	r.Route("/api", func(r chi.Router) {
		r.Route("/admin", func(r chi.Router) {
			r.With(authLimit).Post("/auth/login", h.handleAdminLogin)
			r.Post("/auth/confirmar-email", h.handleAdminConfirmEmail)

			r.Group(func(r chi.Router) {
				r.Use(h.Authenticate)
				r.Use(RequireAdmin(admin.LevelEditor))

				r.Post("/auth/logout", h.handleAdminLogout)
				r.Get("/me", h.handleAdminMe)
				r.With(RequireAdmin(admin.LevelAdmin)).Get("/", h.handleListAdmins)
				r.With(RequireAdmin(admin.LevelSuperAdmin)).Post("/", h.handleCreateAdmin)
				r.Get("/{id}", h.handleGetAdmin)
				r.Put("/{id}", h.handleUpdateAdmin)
				r.With(RequireAdmin(admin.LevelSuperAdmin)).Delete("/{id}", h.handleDeleteAdmin)
			})
		})

		r.Route("/clientes", func(r chi.Router) {
			r.With(authLimit).Post("/cadastro", h.handleRegisterCliente)
			r.With(authLimit).Post("/login", h.handleClienteLogin)
			r.Post("/confirmar-email", h.handleClienteConfirmEmail)
			r.With(authLimit).Post("/reenviar-confirmacao", h.handleResendConfirmation)
			r.With(authLimit).Post("/recuperar-senha", h.handleRequestPasswordReset)
			r.With(authLimit).Post("/redefinir-senha", h.handleResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(h.Authenticate)

				r.With(RequireCliente).Get("/me", h.handleClienteMe)
				r.With(RequireCliente).Post("/logout", h.handleClienteLogout)
				r.With(RequireAdmin(admin.LevelAdmin)).Get("/", h.handleListClientes)
				r.Get("/{id}", h.handleGetCliente)
				r.Put("/{id}", h.handleUpdateCliente)
				r.Delete("/{id}", h.handleDeleteCliente)
			})
		})

		r.Route("/produtos", func(r chi.Router) {
			r.Get("/", h.handleListProdutos)
			r.Get("/{id}", h.handleGetProduto)
			r.Get("/{id}/resumo", h.handleProdutoResumo)

			r.Group(func(r chi.Router) {
				r.Use(h.Authenticate)

				r.With(RequireAdmin(admin.LevelAdmin)).Post("/", h.handleCreateProduto)
				r.With(RequireAdmin(admin.LevelAdmin)).Post("/importar", h.handleImportProdutos)
				r.With(RequireAdmin(admin.LevelEditor)).Put("/{id}", h.handleUpdateProduto)
				r.With(RequireAdmin(admin.LevelAdmin)).Delete("/{id}", h.handleDeleteProduto)
			})
		})

		r.Route("/interacoes", func(r chi.Router) {
			r.Get("/", h.handleListInteracoes)

			r.Group(func(r chi.Router) {
				r.Use(h.Authenticate)

				r.With(RequireCliente).Post("/", h.handleCreateInteracao)
				r.With(RequireAdmin(admin.LevelEditor)).Post("/{id}/resposta", h.handleReplyInteracao)
				r.Delete("/{id}", h.handleDeleteInteracao)
			})
		})
	})

	return r
}

// envelope is the body shape of every /api response.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slogLogger.Error("response encode failed", "status", status, "error", err)
	}
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Success: true, Message: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errInvalidBody
	}
	return nil
}

func parseIDParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "unavailable",
			"message": "database not configured",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "unavailable",
			"message": "database not ready",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
