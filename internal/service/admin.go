package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Maiolini/sitecafe/internal/domain"
	"github.com/Maiolini/sitecafe/internal/infra/observability"
	"github.com/Maiolini/sitecafe/internal/infra/sqlite"
	"github.com/Maiolini/sitecafe/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
)

var adminTracer = otel.Tracer("service/admin")

const pedidosRecentesDashboard = 10

// AdminService orchestrates the administrative endpoints: approvals,
// user management, order management, manual purchases and reporting.
type AdminService struct {
	users    port.UserStore
	clientes port.ClienteStore
	pedidos  port.PedidoStore
	auth     *AuthService
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewAdminService creates a new admin service. It reuses the auth service
// for profile loading and password hashing rules.
func NewAdminService(users port.UserStore, clientes port.ClienteStore, pedidos port.PedidoStore, auth *AuthService, metrics *observability.Metrics, logger *zap.Logger) *AdminService {
	return &AdminService{
		users:    users,
		clientes: clientes,
		pedidos:  pedidos,
		auth:     auth,
		metrics:  metrics,
		logger:   logger,
	}
}

// ============================================================
// Dashboard — GET /v1/admin/dashboard
// ============================================================

func (s *AdminService) Dashboard(ctx context.Context) (*domain.AdminDashboard, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.Dashboard")
	defer span.End()

	dash := &domain.AdminDashboard{}
	now := time.Now().UTC()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.users.CountUsers(gctx, domain.TipoCliente)
		if err != nil {
			return fmt.Errorf("count clientes: %w", err)
		}
		dash.TotalClientes = n
		return nil
	})
	g.Go(func() error {
		n, err := s.users.CountUsers(gctx, domain.TipoFornecedor)
		if err != nil {
			return fmt.Errorf("count fornecedores: %w", err)
		}
		dash.TotalFornecedores = n
		return nil
	})
	g.Go(func() error {
		n, err := s.users.CountFornecedoresPendentes(gctx)
		if err != nil {
			return fmt.Errorf("count pendentes: %w", err)
		}
		dash.FornecedoresPendentes = n
		return nil
	})
	g.Go(func() error {
		n, err := s.pedidos.CountPedidos(gctx, domain.StatusPendente)
		if err != nil {
			return fmt.Errorf("count pedidos pendentes: %w", err)
		}
		dash.PedidosPendentes = n
		return nil
	})
	g.Go(func() error {
		pedidos, volume, faturamento, err := s.pedidos.ResumoMes(gctx, now)
		if err != nil {
			return fmt.Errorf("resumo mes: %w", err)
		}
		dash.PedidosMes = pedidos
		dash.VolumeMesKg = volume
		dash.FaturamentoMes = faturamento
		return nil
	})
	g.Go(func() error {
		total, err := s.clientes.SomaCashbackAcumulado(gctx)
		if err != nil {
			return fmt.Errorf("soma cashback: %w", err)
		}
		dash.CashbackAcumuladoTotal = total
		return nil
	})
	g.Go(func() error {
		recentes, err := s.pedidos.PedidosRecentes(gctx, pedidosRecentesDashboard)
		if err != nil {
			return fmt.Errorf("pedidos recentes: %w", err)
		}
		dash.UltimosPedidos = recentes
		return nil
	})
	g.Go(func() error {
		dist, err := s.clientes.ContarClientesPorNivel(gctx)
		if err != nil {
			return fmt.Errorf("contar por nivel: %w", err)
		}
		dash.ClientesPorNivel = dist
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dash, nil
}

// ============================================================
// Usuarios — GET /v1/admin/usuarios
// ============================================================

func (s *AdminService) Usuarios(ctx context.Context, filtro domain.UsuarioFiltro, page, perPage int) (*domain.UsuariosPage, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.Usuarios")
	defer span.End()

	if filtro.Tipo != "" && !filtro.Tipo.Valid() {
		return nil, &domain.ErrValidation{Field: "tipo", Message: "Tipo de usuário inválido"}
	}

	users, total, err := s.users.ListUsers(ctx, filtro, page, perPage)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	usuarios := make([]domain.UserPerfil, 0, len(users))
	for i := range users {
		perfil, err := s.auth.loadPerfil(ctx, &users[i])
		if err != nil {
			return nil, err
		}
		usuarios = append(usuarios, *perfil)
	}

	return &domain.UsuariosPage{
		Usuarios: usuarios,
		Page: domain.Page{
			Total:       total,
			Pages:       domain.NumPages(total, perPage),
			CurrentPage: page,
			PerPage:     perPage,
		},
	}, nil
}

// ============================================================
// AprovarFornecedor — POST /v1/admin/fornecedores/{userId}/aprovar
// RejeitarFornecedor — DELETE /v1/admin/fornecedores/{userId}
// ============================================================

func (s *AdminService) AprovarFornecedor(ctx context.Context, userID string) (*domain.SuccessResponse, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.AprovarFornecedor")
	defer span.End()

	user, err := s.fornecedorUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Aprovado = true
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.logger.Info("fornecedor aprovado", zap.String("user_id", userID))
	return &domain.SuccessResponse{Message: "Fornecedor aprovado com sucesso"}, nil
}

func (s *AdminService) RejeitarFornecedor(ctx context.Context, userID string) (*domain.SuccessResponse, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.RejeitarFornecedor")
	defer span.End()

	user, err := s.fornecedorUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Cascade removes the fornecedor profile and its benefits.
	if err := s.users.DeleteUser(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("delete user: %w", err)
	}

	s.logger.Info("fornecedor rejeitado", zap.String("user_id", userID))
	return &domain.SuccessResponse{Message: "Fornecedor rejeitado e removido"}, nil
}

func (s *AdminService) fornecedorUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return nil, &domain.ErrNotFound{Resource: "usuário", ID: userID}
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user.TipoUsuario != domain.TipoFornecedor {
		return nil, &domain.ErrValidation{Field: "user_id", Message: "Usuário não é um fornecedor"}
	}
	return user, nil
}

// ============================================================
// ToggleUsuario — POST /v1/admin/usuarios/{userId}/toggle
// ============================================================

func (s *AdminService) ToggleUsuario(ctx context.Context, adminID, userID string) (*domain.SuccessResponse, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.ToggleUsuario")
	defer span.End()

	if adminID == userID {
		return nil, &domain.ErrValidation{Field: "user_id", Message: "Não é possível desativar sua própria conta"}
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return nil, &domain.ErrNotFound{Resource: "usuário", ID: userID}
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	user.Ativo = !user.Ativo
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	estado := "desativado"
	if user.Ativo {
		estado = "ativado"
	}
	s.logger.Info("usuário alternado",
		zap.String("user_id", userID),
		zap.Bool("ativo", user.Ativo),
	)
	return &domain.SuccessResponse{Message: fmt.Sprintf("Usuário %s com sucesso", estado)}, nil
}

// ============================================================
// Pedidos — GET /v1/admin/pedidos
// ============================================================

func (s *AdminService) Pedidos(ctx context.Context, filtro domain.PedidoFiltro, page, perPage int) (*domain.PedidosAdminPage, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.Pedidos")
	defer span.End()

	if filtro.Status != "" && !filtro.Status.Valid() {
		return nil, &domain.ErrValidation{Field: "status", Message: "Status inválido"}
	}

	pedidos, total, err := s.pedidos.ListPedidos(ctx, filtro, page, perPage)
	if err != nil {
		return nil, fmt.Errorf("list pedidos: %w", err)
	}
	return &domain.PedidosAdminPage{
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
// AtualizarStatusPedido — PUT /v1/admin/pedidos/{pedidoId}/status
// ============================================================

func (s *AdminService) AtualizarStatusPedido(ctx context.Context, pedidoID string, req *domain.AtualizarStatusPedidoRequest) (*domain.SuccessResponse, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.AtualizarStatusPedido")
	defer span.End()

	if !req.Status.Valid() {
		return nil, &domain.ErrValidation{Field: "status", Message: "Status inválido"}
	}

	pedido, err := s.pedidos.GetPedido(ctx, pedidoID)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return nil, &domain.ErrNotFound{Resource: "pedido", ID: pedidoID}
		}
		return nil, fmt.Errorf("get pedido: %w", err)
	}

	// Delivery stamps once. Re-marking an order entregue keeps the
	// original delivery date.
	var dataEntrega *time.Time
	if req.Status == domain.StatusEntregue && pedido.DataEntrega == nil {
		now := time.Now().UTC()
		dataEntrega = &now
	}

	if err := s.pedidos.UpdateStatusPedido(ctx, pedidoID, req.Status, dataEntrega); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}

	s.logger.Info("status do pedido atualizado",
		zap.String("pedido_id", pedidoID),
		zap.String("status", string(req.Status)),
	)
	return &domain.SuccessResponse{Message: "Status do pedido atualizado com sucesso"}, nil
}

// ============================================================
// AdicionarCompraManual — POST /v1/admin/compras-manuais
// ============================================================

func (s *AdminService) AdicionarCompraManual(ctx context.Context, req *domain.CompraManualRequest) (*domain.CriarPedidoResponse, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.AdicionarCompraManual")
	defer span.End()

	if req.ClienteID == "" {
		return nil, &domain.ErrValidation{Field: "cliente_id", Message: "Campo cliente_id é obrigatório"}
	}
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

	dataPedido := time.Now().UTC()
	if req.DataPedido != "" {
		parsed, err := time.Parse("2006-01-02", req.DataPedido)
		if err != nil {
			return nil, &domain.ErrValidation{Field: "data_pedido", Message: "Data inválida, use o formato AAAA-MM-DD"}
		}
		dataPedido = parsed
	}

	cliente, err := s.clientes.GetClienteByID(ctx, req.ClienteID)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return nil, &domain.ErrNotFound{Resource: "cliente", ID: req.ClienteID}
		}
		return nil, fmt.Errorf("get cliente: %w", err)
	}

	observacoes := req.Observacoes
	if observacoes == "" {
		observacoes = "Compra adicionada manualmente pelo administrador"
	}

	taxa := domain.TaxaCashback(cliente.NivelParceria)
	valorCashback := req.ValorTotal * taxa

	pedido := &domain.Pedido{
		ID:           uuid.NewString(),
		ClienteID:    cliente.ID,
		QuantidadeKg: req.QuantidadeKg,
		TipoCafe:     req.TipoCafe,
		TipoTorra:    req.TipoTorra,
		ValorTotal:   req.ValorTotal,
		// Manual entries record purchases that already happened.
		Status:      domain.StatusEntregue,
		DataPedido:  dataPedido,
		DataEntrega: &dataPedido,
		Observacoes: observacoes,
	}
	transacao := &domain.TransacaoCashback{
		ID:            uuid.NewString(),
		ClienteID:     cliente.ID,
		PedidoID:      pedido.ID,
		Tipo:          domain.TransacaoGanho,
		Valor:         valorCashback,
		Descricao:     fmt.Sprintf("Cashback da compra manual #%s", pedido.ID),
		DataTransacao: dataPedido,
	}

	atualizado, err := s.pedidos.RegistrarCompra(ctx, pedido, transacao)
	if err != nil {
		return nil, fmt.Errorf("registrar compra: %w", err)
	}

	s.metrics.IncrPedido("manual")
	s.metrics.AddCashback("ganho", valorCashback)

	s.logger.Info("compra manual adicionada",
		zap.String("pedido_id", pedido.ID),
		zap.String("cliente_id", cliente.ID),
		zap.Float64("cashback", valorCashback),
	)
	return &domain.CriarPedidoResponse{
		Message:       "Compra manual adicionada com sucesso",
		Pedido:        pedido,
		CashbackGanho: valorCashback,
		Cliente:       atualizado,
	}, nil
}

// ============================================================
// RelatorioVendas — GET /v1/admin/relatorio-vendas
// ============================================================

func (s *AdminService) RelatorioVendas(ctx context.Context, dataInicio, dataFim string) (*domain.RelatorioVendas, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.RelatorioVendas")
	defer span.End()

	if dataInicio == "" || dataFim == "" {
		return nil, &domain.ErrValidation{Message: "Data de início e fim são obrigatórias"}
	}
	inicio, err := time.Parse("2006-01-02", dataInicio)
	if err != nil {
		return nil, &domain.ErrValidation{Field: "data_inicio", Message: "Data inválida, use o formato AAAA-MM-DD"}
	}
	fim, err := time.Parse("2006-01-02", dataFim)
	if err != nil {
		return nil, &domain.ErrValidation{Field: "data_fim", Message: "Data inválida, use o formato AAAA-MM-DD"}
	}
	if fim.Before(inicio) {
		return nil, &domain.ErrValidation{Field: "data_fim", Message: "Data final anterior à inicial"}
	}

	// The range is inclusive of the final day.
	rel, err := s.pedidos.RelatorioVendas(ctx, inicio, fim.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("relatorio vendas: %w", err)
	}
	rel.Fim = dataFim
	return rel, nil
}

// ============================================================
// CriarAdmin — POST /v1/admin/admins
// ============================================================

func (s *AdminService) CriarAdmin(ctx context.Context, req *domain.CriarAdminRequest) (*domain.UserPerfil, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.CriarAdmin")
	defer span.End()

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" {
		return nil, &domain.ErrValidation{Field: "email", Message: "Campo email é obrigatório"}
	}
	if req.Nome == "" {
		return nil, &domain.ErrValidation{Field: "nome", Message: "Campo nome é obrigatório"}
	}
	if len(req.Password) < minPasswordLen {
		return nil, &domain.ErrValidation{Field: "password", Message: "A senha deve ter pelo menos 6 caracteres"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: string(hash),
		Nome:         req.Nome,
		Telefone:     req.Telefone,
		TipoUsuario:  domain.TipoAdmin,
		Ativo:        true,
		Aprovado:     true,
		DataCriacao:  time.Now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, sqlite.ErrDuplicate) {
			return nil, &domain.ErrConflict{Message: "Email já cadastrado"}
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("admin criado", zap.String("user_id", user.ID))
	return &domain.UserPerfil{User: *user}, nil
}
