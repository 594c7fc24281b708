package handler

import (
	"net/http"

	"github.com/Maiolini/sitecafe/internal/domain"
	"github.com/Maiolini/sitecafe/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Área do fornecedor — /v1/fornecedor
// ============================================================

func fornecedorDashboardHandler(svc *service.FornecedorService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/fornecedor/dashboard")
		defer span.End()

		dash, err := svc.Dashboard(ctx, UserIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, dash)
	}
}

func fornecedorClientesHandler(svc *service.FornecedorService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/fornecedor/clientes")
		defer span.End()

		page, perPage := parsePagination(r)
		q := r.URL.Query()
		filtro := domain.ClienteFiltro{
			Nivel:  domain.NivelParceria(q.Get("nivel")),
			Cidade: q.Get("cidade"),
			Busca:  q.Get("busca"),
		}

		clientes, err := svc.Clientes(ctx, UserIDFromContext(ctx), filtro, page, perPage)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, clientes)
	}
}

func fornecedorEstatisticasClientesHandler(svc *service.FornecedorService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/fornecedor/estatisticas-clientes")
		defer span.End()

		stats, err := svc.EstatisticasClientes(ctx, UserIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func fornecedorListarBeneficiosHandler(svc *service.FornecedorService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/fornecedor/beneficios")
		defer span.End()

		beneficios, err := svc.ListarBeneficios(ctx, UserIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, beneficios)
	}
}

func fornecedorCriarBeneficioHandler(svc *service.FornecedorService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/fornecedor/beneficios")
		defer span.End()

		var req domain.BeneficioRequest
		if !decodeBody(w, r, &req) {
			return
		}

		beneficio, err := svc.CriarBeneficio(ctx, UserIDFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, beneficio)
	}
}

func fornecedorAtualizarBeneficioHandler(svc *service.FornecedorService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/fornecedor/beneficios/{beneficioId}")
		defer span.End()

		beneficioID := chi.URLParam(r, "beneficioId")

		var req domain.BeneficioRequest
		if !decodeBody(w, r, &req) {
			return
		}

		beneficio, err := svc.AtualizarBeneficio(ctx, UserIDFromContext(ctx), beneficioID, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, beneficio)
	}
}

func fornecedorRemoverBeneficioHandler(svc *service.FornecedorService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/fornecedor/beneficios/{beneficioId}")
		defer span.End()

		beneficioID := chi.URLParam(r, "beneficioId")

		if err := svc.RemoverBeneficio(ctx, UserIDFromContext(ctx), beneficioID); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "Benefício removido com sucesso"})
	}
}
