package handler

import (
	"net/http"
	"time"

	"github.com/Maiolini/sitecafe/internal/domain"
	"github.com/Maiolini/sitecafe/internal/infra/observability"
	"github.com/Maiolini/sitecafe/internal/infra/sqlite"
	"github.com/Maiolini/sitecafe/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Services bundles everything the router needs.
type Services struct {
	Auth       *service.AuthService
	Cliente    *service.ClienteService
	Fornecedor *service.FornecedorService
	Admin      *service.AdminService
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(svcs Services, db *sqlite.DB, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(metricsMiddleware(metrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(db))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// 1. 🔐 Autenticação
		// =============================================
		r.Route("/auth", func(r chi.Router) {
			// Public routes
			r.Post("/register", authRegisterHandler(svcs.Auth, logger))
			r.Post("/login", authLoginHandler(svcs.Auth, logger))
			r.Post("/forgot-password", authForgotPasswordHandler(svcs.Auth, logger))
			r.Post("/reset-password", authResetPasswordHandler(svcs.Auth, logger))
			r.Post("/validate-reset-token", authValidateResetTokenHandler(svcs.Auth, logger))

			// Protected routes
			r.Group(func(r chi.Router) {
				r.Use(JWTAuthMiddleware(svcs.Auth, logger))
				r.Get("/me", authMeHandler(svcs.Auth, logger))
				r.Put("/profile", authUpdateProfileHandler(svcs.Auth, logger))
				r.Put("/password", authChangePasswordHandler(svcs.Auth, logger))
			})
		})

		// =============================================
		// 2. ☕ Cliente
		// =============================================
		r.Route("/cliente", func(r chi.Router) {
			r.Use(JWTAuthMiddleware(svcs.Auth, logger))
			r.Use(RequireTipo(domain.TipoCliente, logger))

			r.Get("/dashboard", clienteDashboardHandler(svcs.Cliente, logger))
			r.Get("/pedidos", clientePedidosHandler(svcs.Cliente, logger))
			r.Post("/pedidos", clienteCriarPedidoHandler(svcs.Cliente, logger))
			r.Get("/cashback", clienteCashbackHandler(svcs.Cliente, logger))
			r.Post("/cashback/usar", clienteUsarCashbackHandler(svcs.Cliente, logger))
			r.Get("/beneficios", clienteBeneficiosHandler(svcs.Cliente, logger))
		})

		// =============================================
		// 3. 🏪 Fornecedor
		// =============================================
		r.Route("/fornecedor", func(r chi.Router) {
			r.Use(JWTAuthMiddleware(svcs.Auth, logger))
			r.Use(RequireTipo(domain.TipoFornecedor, logger))

			r.Get("/dashboard", fornecedorDashboardHandler(svcs.Fornecedor, logger))
			r.Get("/clientes", fornecedorClientesHandler(svcs.Fornecedor, logger))
			r.Get("/estatisticas-clientes", fornecedorEstatisticasClientesHandler(svcs.Fornecedor, logger))
			r.Get("/beneficios", fornecedorListarBeneficiosHandler(svcs.Fornecedor, logger))
			r.Post("/beneficios", fornecedorCriarBeneficioHandler(svcs.Fornecedor, logger))
			r.Put("/beneficios/{beneficioId}", fornecedorAtualizarBeneficioHandler(svcs.Fornecedor, logger))
			r.Delete("/beneficios/{beneficioId}", fornecedorRemoverBeneficioHandler(svcs.Fornecedor, logger))
		})

		// =============================================
		// 4. 🛡 Admin
		// =============================================
		r.Route("/admin", func(r chi.Router) {
			r.Use(JWTAuthMiddleware(svcs.Auth, logger))
			r.Use(RequireTipo(domain.TipoAdmin, logger))

			r.Get("/dashboard", adminDashboardHandler(svcs.Admin, logger))
			r.Get("/usuarios", adminUsuariosHandler(svcs.Admin, logger))
			r.Post("/fornecedores/{userId}/aprovar", adminAprovarFornecedorHandler(svcs.Admin, logger))
			r.Delete("/fornecedores/{userId}", adminRejeitarFornecedorHandler(svcs.Admin, logger))
			r.Post("/usuarios/{userId}/toggle", adminToggleUsuarioHandler(svcs.Admin, logger))
			r.Get("/pedidos", adminPedidosHandler(svcs.Admin, logger))
			r.Put("/pedidos/{pedidoId}/status", adminAtualizarStatusPedidoHandler(svcs.Admin, logger))
			r.Post("/compras-manuais", adminCompraManualHandler(svcs.Admin, logger))
			r.Get("/relatorio-vendas", adminRelatorioVendasHandler(svcs.Admin, logger))
			r.Post("/admins", adminCriarAdminHandler(svcs.Admin, logger))
			r.Get("/metrics", adminMetricsHandler(metrics, logger))
		})
	})

	return r
}

// ============================================================
// Probes
// ============================================================

func healthzHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		err := db.PingContext(r.Context())
		latency := time.Since(start).Milliseconds()

		status := "healthy"
		code := http.StatusOK
		if err != nil {
			status = "unhealthy"
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, map[string]any{
			"status":        status,
			"db_latency_ms": latency,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
