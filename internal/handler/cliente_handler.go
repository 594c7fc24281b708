package handler

import (
	"net/http"
	"strconv"

	"github.com/Maiolini/sitecafe/internal/domain"
	"github.com/Maiolini/sitecafe/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Área do cliente — /v1/cliente
// ============================================================

func clienteDashboardHandler(svc *service.ClienteService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/cliente/dashboard")
		defer span.End()

		dash, err := svc.Dashboard(ctx, UserIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, dash)
	}
}

func clientePedidosHandler(svc *service.ClienteService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/cliente/pedidos")
		defer span.End()

		page, perPage := parsePagination(r)
		filtro := pedidoFiltroFromQuery(r)
		filtro.ClienteID = ""

		pedidos, err := svc.HistoricoPedidos(ctx, UserIDFromContext(ctx), filtro, page, perPage)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, pedidos)
	}
}

func clienteCriarPedidoHandler(svc *service.ClienteService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/cliente/pedidos")
		defer span.End()

		var req domain.CriarPedidoRequest
		if !decodeBody(w, r, &req) {
			return
		}

		resp, err := svc.CriarPedido(ctx, UserIDFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

func clienteCashbackHandler(svc *service.ClienteService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/cliente/cashback")
		defer span.End()

		page, perPage := parsePagination(r)
		tipo := domain.TipoTransacao(r.URL.Query().Get("tipo"))

		transacoes, err := svc.HistoricoCashback(ctx, UserIDFromContext(ctx), tipo, page, perPage)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, transacoes)
	}
}

func clienteUsarCashbackHandler(svc *service.ClienteService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/cliente/cashback/usar")
		defer span.End()

		var req domain.UsarCashbackRequest
		if !decodeBody(w, r, &req) {
			return
		}

		resp, err := svc.UsarCashback(ctx, UserIDFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func clienteBeneficiosHandler(svc *service.ClienteService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/cliente/beneficios")
		defer span.End()

		beneficios, err := svc.BeneficiosDisponiveis(ctx, UserIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, beneficios)
	}
}

// pedidoFiltroFromQuery reads the optional order listing filters.
func pedidoFiltroFromQuery(r *http.Request) domain.PedidoFiltro {
	q := r.URL.Query()
	filtro := domain.PedidoFiltro{
		Status:    domain.StatusPedido(q.Get("status")),
		ClienteID: q.Get("cliente_id"),
	}
	if v := q.Get("mes"); v != "" {
		if m, err := strconv.Atoi(v); err == nil && m >= 1 && m <= 12 {
			filtro.Mes = m
		}
	}
	if v := q.Get("ano"); v != "" {
		if a, err := strconv.Atoi(v); err == nil && a > 0 {
			filtro.Ano = a
		}
	}
	return filtro
}
