// Package service provides the business logic layer (use cases).
// ClienteService handles the buyer-facing operations: dashboard, order
// history, order creation, cashback redemption and benefit browsing.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Maiolini/sitecafe/internal/domain"
	"github.com/Maiolini/sitecafe/internal/infra/observability"
	"github.com/Maiolini/sitecafe/internal/infra/sqlite"
	"github.com/Maiolini/sitecafe/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var clienteTracer = otel.Tracer("service/cliente")

const ultimasTransacoesDashboard = 5

// ClienteService orchestrates the cliente endpoints.
type ClienteService struct {
	clientes   port.ClienteStore
	pedidos    port.PedidoStore
	cashback   port.CashbackStore
	beneficios port.FornecedorStore
	cache      port.Cache[[]domain.BeneficioDisponivel]
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewClienteService creates a new cliente service.
func NewClienteService(clientes port.ClienteStore, pedidos port.PedidoStore, cashback port.CashbackStore, beneficios port.FornecedorStore, cache port.Cache[[]domain.BeneficioDisponivel], metrics *observability.Metrics, logger *zap.Logger) *ClienteService {
	return &ClienteService{
		clientes:   clientes,
		pedidos:    pedidos,
		cashback:   cashback,
		beneficios: beneficios,
		cache:      cache,
		metrics:    metrics,
		logger:     logger,
	}
}

// perfil resolves the cliente profile behind an authenticated user.
func (s *ClienteService) perfil(ctx context.Context, userID string) (*domain.Cliente, error) {
	cliente, err := s.clientes.GetClienteByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return nil, &domain.ErrNotFound{Resource: "cliente"}
		}
		return nil, fmt.Errorf("get cliente: %w", err)
	}
	return cliente, nil
}

// ============================================================
// Dashboard — GET /v1/cliente/dashboard
// ============================================================

func (s *ClienteService) Dashboard(ctx context.Context, userID string) (*domain.ClienteDashboard, error) {
	ctx, span := clienteTracer.Start(ctx, "ClienteService.Dashboard")
	defer span.End()

	cliente, err := s.perfil(ctx, userID)
	if err != nil {
		return nil, err
	}

	// The stored volume and tier may be stale if the month rolled over
	// since the last purchase. Refresh them before assembling the view.
	cliente, err = s.clientes.RecalcularVolumeMes(ctx, cliente.ID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("recalcular volume: %w", err)
	}

	dash := &domain.ClienteDashboard{
		Cliente:      cliente,
		TaxaCashback: domain.TaxaCashback(cliente.NivelParceria),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.pedidos.CountPedidosMes(gctx, cliente.ID, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("count pedidos mes: %w", err)
		}
		dash.PedidosMes = n
		return nil
	})
	g.Go(func() error {
		entregas, err := s.pedidos.ProximasEntregas(gctx, cliente.ID)
		if err != nil {
			return fmt.Errorf("proximas entregas: %w", err)
		}
		dash.ProximasEntregas = entregas
		return nil
	})
	g.Go(func() error {
		transacoes, err := s.cashback.UltimasTransacoes(gctx, cliente.ID, ultimasTransacoesDashboard)
		if err != nil {
			return fmt.Errorf("ultimas transacoes: %w", err)
		}
		dash.UltimasTransacoes = transacoes
		return nil
	})
	g.Go(func() error {
		resumo, err := s.cashback.ResumoCashback(gctx, cliente.ID)
		if err != nil {
			return fmt.Errorf("resumo cashback: %w", err)
		}
		dash.ResumoCashback = *resumo
		return nil
	})
	g.Go(func() error {
		beneficios, err := s.beneficiosParaNivel(gctx, cliente.NivelParceria)
		if err != nil {
			return fmt.Errorf("beneficios disponiveis: %w", err)
		}
		dash.BeneficiosDisponiveis = len(beneficios)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dash, nil
}

// ============================================================
// HistoricoPedidos — GET /v1/cliente/pedidos
// ============================================================

func (s *ClienteService) HistoricoPedidos(ctx context.Context, userID string, filtro domain.PedidoFiltro, page, perPage int) (*domain.PedidosPage, error) {
	ctx, span := clienteTracer.Start(ctx, "ClienteService.HistoricoPedidos")
	defer span.End()

	cliente, err := s.perfil(ctx, userID)
	if err != nil {
		return nil, err
	}

	pedidos, total, err := s.pedidos.ListPedidosByCliente(ctx, cliente.ID, filtro, page, perPage)
	if err != nil {
		return nil, fmt.Errorf("list pedidos: %w", err)
	}
	return &domain.PedidosPage{
		Pedidos: pedidos,
		Page: domain.Page{
			Total:       total,
			Pages:       domain.NumPages(total, perPage),
			CurrentPage: page,
			PerPage:     perPage,
		},
	}, nil
}

// ============================================================
// HistoricoCashback — GET /v1/cliente/cashback
// ============================================================

func (s *ClienteService) HistoricoCashback(ctx context.Context, userID string, tipo domain.TipoTransacao, page, perPage int) (*domain.TransacoesPage, error) {
	ctx, span := clienteTracer.Start(ctx, "ClienteService.HistoricoCashback")
	defer span.End()

	if tipo != "" && tipo != domain.TransacaoGanho && tipo != domain.TransacaoUso {
		return nil, &domain.ErrValidation{Field: "tipo", Message: "Tipo de transação inválido"}
	}

	cliente, err := s.perfil(ctx, userID)
	if err != nil {
		return nil, err
	}

	transacoes, total, err := s.cashback.ListTransacoes(ctx, cliente.ID, tipo, page, perPage)
	if err != nil {
		return nil, fmt.Errorf("list transacoes: %w", err)
	}
	resumo, err := s.cashback.ResumoCashback(ctx, cliente.ID)
	if err != nil {
		return nil, fmt.Errorf("resumo cashback: %w", err)
	}

	return &domain.TransacoesPage{
		Transacoes: transacoes,
		Resumo:     *resumo,
		Page: domain.Page{
			Total:       total,
			Pages:       domain.NumPages(total, perPage),
			CurrentPage: page,
			PerPage:     perPage,
		},
	}, nil
}

// ============================================================
// CriarPedido — POST /v1/cliente/pedidos
// ============================================================

func (s *ClienteService) CriarPedido(ctx context.Context, userID string, req *domain.CriarPedidoRequest) (*domain.CriarPedidoResponse, error) {
	ctx, span := clienteTracer.Start(ctx, "ClienteService.CriarPedido")
	defer span.End()

	if req.QuantidadeKg <= 0 {
		return nil, &domain.ErrValidation{Field: "quantidade_kg", Message: "Quantidade deve ser maior que zero"}
	}
	if req.ValorTotal <= 0 {
		return nil, &domain.ErrValidation{Field: "valor_total", Message: "Valor total deve ser maior que zero"}
	}
	if !domain.TipoCafeValido(req.TipoCafe) {
		return nil, &domain.ErrValidation{Field: "tipo_cafe", Message: "Tipo de café inválido"}
	}
	if !domain.TipoTorraValido(req.TipoTorra) {
		return nil, &domain.ErrValidation{Field: "tipo_torra", Message: "Tipo de torra inválido"}
	}

	var dataEntrega *time.Time
	if req.Automatico {
		data, ok := domain.ProximaEntregaAutomatica(time.Now().UTC(), req.DiaEntregaAutomatica)
		if !ok {
			return nil, &domain.ErrValidation{Field: "dia_entrega_automatica", Message: "Dia de entrega automática deve ser 15 ou 30"}
		}
		dataEntrega = &data
	}

	cliente, err := s.perfil(ctx, userID)
	if err != nil {
		return nil, err
	}

	// The rate comes from the tier the client held before this order;
	// the order itself may then push the tier up for the next one.
	taxa := domain.TaxaCashback(cliente.NivelParceria)
	valorCashback := req.ValorTotal * taxa

	// Orders without an explicit delivery address go to the client's
	// registered one.
	endereco := req.EnderecoEntrega
	if endereco == "" {
		endereco = cliente.Endereco
	}

	pedido := &domain.Pedido{
		ID:                   uuid.NewString(),
		ClienteID:            cliente.ID,
		QuantidadeKg:         req.QuantidadeKg,
		TipoCafe:             req.TipoCafe,
		TipoTorra:            req.TipoTorra,
		ValorTotal:           req.ValorTotal,
		Status:               domain.StatusPendente,
		DataPedido:           time.Now().UTC(),
		DataEntrega:          dataEntrega,
		EnderecoEntrega:      endereco,
		Observacoes:          req.Observacoes,
		Automatico:           req.Automatico,
		DiaEntregaAutomatica: req.DiaEntregaAutomatica,
	}
	transacao := &domain.TransacaoCashback{
		ID:            uuid.NewString(),
		ClienteID:     cliente.ID,
		PedidoID:      pedido.ID,
		Tipo:          domain.TransacaoGanho,
		Valor:         valorCashback,
		Descricao:     fmt.Sprintf("Cashback do pedido #%s", pedido.ID),
		DataTransacao: pedido.DataPedido,
	}

	atualizado, err := s.pedidos.RegistrarCompra(ctx, pedido, transacao)
	if err != nil {
		return nil, fmt.Errorf("registrar compra: %w", err)
	}

	s.metrics.IncrPedido("cliente")
	s.metrics.AddCashback("ganho", valorCashback)
	s.logger.Info("pedido criado",
		zap.String("pedido_id", pedido.ID),
		zap.String("cliente_id", cliente.ID),
		zap.Float64("quantidade_kg", pedido.QuantidadeKg),
		zap.Float64("cashback", valorCashback),
	)

	return &domain.CriarPedidoResponse{
		Message:       "Pedido criado com sucesso",
		Pedido:        pedido,
		CashbackGanho: valorCashback,
		Cliente:       atualizado,
	}, nil
}

// ============================================================
// UsarCashback — POST /v1/cliente/cashback/usar
// ============================================================

func (s *ClienteService) UsarCashback(ctx context.Context, userID string, req *domain.UsarCashbackRequest) (*domain.UsarCashbackResponse, error) {
	ctx, span := clienteTracer.Start(ctx, "ClienteService.UsarCashback")
	defer span.End()

	if req.Valor <= 0 {
		return nil, &domain.ErrValidation{Field: "valor", Message: "Valor deve ser maior que zero"}
	}

	cliente, err := s.perfil(ctx, userID)
	if err != nil {
		return nil, err
	}

	descricao := req.Descricao
	if descricao == "" {
		descricao = "Resgate de cashback"
	}

	transacao, saldo, err := s.cashback.UsarCashback(ctx, cliente.ID, req.Valor, descricao)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return nil, &domain.ErrNotFound{Resource: "cliente"}
		}
		var saldoErr *domain.ErrSaldoInsuficiente
		if errors.As(err, &saldoErr) {
			return nil, saldoErr
		}
		return nil, fmt.Errorf("usar cashback: %w", err)
	}

	s.metrics.AddCashback("uso", req.Valor)
	s.logger.Info("cashback resgatado",
		zap.String("cliente_id", cliente.ID),
		zap.Float64("valor", req.Valor),
		zap.Float64("saldo", saldo),
	)

	return &domain.UsarCashbackResponse{
		Message:    "Cashback utilizado com sucesso",
		Transacao:  transacao,
		SaldoAtual: saldo,
	}, nil
}

// ============================================================
// BeneficiosDisponiveis — GET /v1/cliente/beneficios
// ============================================================

func (s *ClienteService) BeneficiosDisponiveis(ctx context.Context, userID string) ([]domain.BeneficioDisponivel, error) {
	ctx, span := clienteTracer.Start(ctx, "ClienteService.BeneficiosDisponiveis")
	defer span.End()

	cliente, err := s.perfil(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.beneficiosParaNivel(ctx, cliente.NivelParceria)
}

// beneficiosParaNivel serves benefit listings through the per-tier cache.
// Mutations on benefits invalidate these entries.
func (s *ClienteService) beneficiosParaNivel(ctx context.Context, nivel domain.NivelParceria) ([]domain.BeneficioDisponivel, error) {
	key := "beneficios:" + string(nivel)
	if cached, ok := s.cache.Get(key); ok {
		s.metrics.IncrCacheHit("beneficios")
		return cached, nil
	}
	s.metrics.IncrCacheMiss("beneficios")

	beneficios, err := s.beneficios.ListBeneficiosDisponiveis(ctx, nivel)
	if err != nil {
		return nil, fmt.Errorf("list beneficios: %w", err)
	}
	s.cache.Set(key, beneficios)
	return beneficios, nil
}
