package handler

import (
	"net/http"
	"strconv"

	"github.com/Maiolini/sitecafe/internal/domain"
	"github.com/Maiolini/sitecafe/internal/infra/observability"
	"github.com/Maiolini/sitecafe/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Área administrativa — /v1/admin
// ============================================================

func adminDashboardHandler(svc *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/dashboard")
		defer span.End()

		dash, err := svc.Dashboard(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, dash)
	}
}

func adminUsuariosHandler(svc *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/usuarios")
		defer span.End()

		page, perPage := parsePagination(r)
		q := r.URL.Query()
		filtro := domain.UsuarioFiltro{
			Tipo:  domain.TipoUsuario(q.Get("tipo")),
			Busca: q.Get("busca"),
		}
		if v := q.Get("ativo"); v != "" {
			if ativo, err := strconv.ParseBool(v); err == nil {
				filtro.Ativo = &ativo
			}
		}

		usuarios, err := svc.Usuarios(ctx, filtro, page, perPage)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, usuarios)
	}
}

func adminAprovarFornecedorHandler(svc *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/admin/fornecedores/{userId}/aprovar")
		defer span.End()

		resp, err := svc.AprovarFornecedor(ctx, chi.URLParam(r, "userId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func adminRejeitarFornecedorHandler(svc *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/admin/fornecedores/{userId}")
		defer span.End()

		resp, err := svc.RejeitarFornecedor(ctx, chi.URLParam(r, "userId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func adminToggleUsuarioHandler(svc *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/admin/usuarios/{userId}/toggle")
		defer span.End()

		resp, err := svc.ToggleUsuario(ctx, UserIDFromContext(ctx), chi.URLParam(r, "userId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func adminPedidosHandler(svc *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/pedidos")
		defer span.End()

		page, perPage := parsePagination(r)
		filtro := pedidoFiltroFromQuery(r)

		pedidos, err := svc.Pedidos(ctx, filtro, page, perPage)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, pedidos)
	}
}

func adminAtualizarStatusPedidoHandler(svc *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/admin/pedidos/{pedidoId}/status")
		defer span.End()

		var req domain.AtualizarStatusPedidoRequest
		if !decodeBody(w, r, &req) {
			return
		}

		resp, err := svc.AtualizarStatusPedido(ctx, chi.URLParam(r, "pedidoId"), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func adminCompraManualHandler(svc *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/admin/compras-manuais")
		defer span.End()

		var req domain.CompraManualRequest
		if !decodeBody(w, r, &req) {
			return
		}

		resp, err := svc.AdicionarCompraManual(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

func adminRelatorioVendasHandler(svc *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/relatorio-vendas")
		defer span.End()

		q := r.URL.Query()
		rel, err := svc.RelatorioVendas(ctx, q.Get("data_inicio"), q.Get("data_fim"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, rel)
	}
}

func adminCriarAdminHandler(svc *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/admin/admins")
		defer span.End()

		var req domain.CriarAdminRequest
		if !decodeBody(w, r, &req) {
			return
		}

		perfil, err := svc.CriarAdmin(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, perfil)
	}
}

func adminMetricsHandler(metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/admin/metrics")
		defer span.End()

		writeJSON(w, http.StatusOK, metrics.Snapshot())
	}
}
