package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Maiolini/sitecafe/internal/domain"
	"github.com/Maiolini/sitecafe/internal/infra/sqlite"
	"github.com/Maiolini/sitecafe/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var fornecedorTracer = otel.Tracer("service/fornecedor")

// FornecedorService orchestrates the supplier endpoints: dashboard,
// client base browsing and benefit management.
type FornecedorService struct {
	fornecedores port.FornecedorStore
	clientes     port.ClienteStore
	cache        port.Cache[[]domain.BeneficioDisponivel]
	logger       *zap.Logger
}

// NewFornecedorService creates a new fornecedor service.
func NewFornecedorService(fornecedores port.FornecedorStore, clientes port.ClienteStore, cache port.Cache[[]domain.BeneficioDisponivel], logger *zap.Logger) *FornecedorService {
	return &FornecedorService{
		fornecedores: fornecedores,
		clientes:     clientes,
		cache:        cache,
		logger:       logger,
	}
}

// perfil resolves the fornecedor profile behind an authenticated user.
func (s *FornecedorService) perfil(ctx context.Context, userID string) (*domain.Fornecedor, error) {
	fornecedor, err := s.fornecedores.GetFornecedorByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return nil, &domain.ErrNotFound{Resource: "fornecedor"}
		}
		return nil, fmt.Errorf("get fornecedor: %w", err)
	}
	return fornecedor, nil
}

// invalidateBeneficios drops the cached benefit listings for every tier.
// Any benefit mutation can change what any tier sees.
func (s *FornecedorService) invalidateBeneficios() {
	for _, nivel := range []domain.NivelParceria{domain.NivelInicial, domain.NivelAvancado, domain.NivelElite} {
		s.cache.Delete("beneficios:" + string(nivel))
	}
}

// ============================================================
// Dashboard — GET /v1/fornecedor/dashboard
// ============================================================

func (s *FornecedorService) Dashboard(ctx context.Context, userID string) (*domain.FornecedorDashboard, error) {
	ctx, span := fornecedorTracer.Start(ctx, "FornecedorService.Dashboard")
	defer span.End()

	fornecedor, err := s.perfil(ctx, userID)
	if err != nil {
		return nil, err
	}

	dash := &domain.FornecedorDashboard{Fornecedor: fornecedor}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		dist, err := s.clientes.ContarClientesPorNivel(gctx)
		if err != nil {
			return fmt.Errorf("contar clientes: %w", err)
		}
		dash.ClientesPorNivel = dist
		for _, n := range dist {
			dash.TotalClientes += n
		}
		return nil
	})
	g.Go(func() error {
		n, err := s.fornecedores.CountBeneficiosAtivos(gctx, fornecedor.ID)
		if err != nil {
			return fmt.Errorf("contar beneficios: %w", err)
		}
		dash.BeneficiosAtivos = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dash, nil
}

// ============================================================
// Clientes — GET /v1/fornecedor/clientes
// ============================================================

func (s *FornecedorService) Clientes(ctx context.Context, userID string, filtro domain.ClienteFiltro, page, perPage int) (*domain.ClientesPage, error) {
	ctx, span := fornecedorTracer.Start(ctx, "FornecedorService.Clientes")
	defer span.End()

	if filtro.Nivel != "" && !filtro.Nivel.Valid() {
		return nil, &domain.ErrValidation{Field: "nivel", Message: "Nível de parceria inválido"}
	}

	if _, err := s.perfil(ctx, userID); err != nil {
		return nil, err
	}

	clientes, total, err := s.clientes.ListClientes(ctx, filtro, page, perPage)
	if err != nil {
		return nil, fmt.Errorf("list clientes: %w", err)
	}
	return &domain.ClientesPage{
		Clientes: clientes,
		Page: domain.Page{
			Total:       total,
			Pages:       domain.NumPages(total, perPage),
			CurrentPage: page,
			PerPage:     perPage,
		},
	}, nil
}

// ============================================================
// EstatisticasClientes — GET /v1/fornecedor/estatisticas-clientes
// ============================================================

// EstatisticasClientes describes the client base a supplier is selling
// into. A client counts as recently active with a purchase in the last
// 30 days.
func (s *FornecedorService) EstatisticasClientes(ctx context.Context, userID string) (*domain.EstatisticasClientes, error) {
	ctx, span := fornecedorTracer.Start(ctx, "FornecedorService.EstatisticasClientes")
	defer span.End()

	if _, err := s.perfil(ctx, userID); err != nil {
		return nil, err
	}

	stats, err := s.clientes.EstatisticasClientes(ctx, time.Now().UTC().AddDate(0, 0, -30))
	if err != nil {
		return nil, fmt.Errorf("estatisticas clientes: %w", err)
	}
	return stats, nil
}

// ============================================================
// Beneficios — GET|POST /v1/fornecedor/beneficios,
// PUT|DELETE /v1/fornecedor/beneficios/{id}
// ============================================================

func (s *FornecedorService) ListarBeneficios(ctx context.Context, userID string) ([]domain.Beneficio, error) {
	ctx, span := fornecedorTracer.Start(ctx, "FornecedorService.ListarBeneficios")
	defer span.End()

	fornecedor, err := s.perfil(ctx, userID)
	if err != nil {
		return nil, err
	}

	beneficios, err := s.fornecedores.ListBeneficiosByFornecedor(ctx, fornecedor.ID)
	if err != nil {
		return nil, fmt.Errorf("list beneficios: %w", err)
	}
	return beneficios, nil
}

func (s *FornecedorService) CriarBeneficio(ctx context.Context, userID string, req *domain.BeneficioRequest) (*domain.Beneficio, error) {
	ctx, span := fornecedorTracer.Start(ctx, "FornecedorService.CriarBeneficio")
	defer span.End()

	if req.Descricao == "" {
		return nil, &domain.ErrValidation{Field: "descricao", Message: "Campo descricao é obrigatório"}
	}
	nivel := req.NivelMinimo
	if nivel == "" {
		nivel = domain.NivelInicial
	}
	if !nivel.Valid() {
		return nil, &domain.ErrValidation{Field: "nivel_minimo", Message: "Nível de parceria inválido"}
	}

	fornecedor, err := s.perfil(ctx, userID)
	if err != nil {
		return nil, err
	}

	beneficio := &domain.Beneficio{
		ID:           uuid.NewString(),
		FornecedorID: fornecedor.ID,
		Descricao:    req.Descricao,
		NivelMinimo:  nivel,
		Ativo:        req.Ativo == nil || *req.Ativo,
	}
	if err := s.fornecedores.CreateBeneficio(ctx, beneficio); err != nil {
		return nil, fmt.Errorf("create beneficio: %w", err)
	}

	s.invalidateBeneficios()
	s.logger.Info("benefício criado",
		zap.String("beneficio_id", beneficio.ID),
		zap.String("fornecedor_id", fornecedor.ID),
	)
	return beneficio, nil
}

func (s *FornecedorService) AtualizarBeneficio(ctx context.Context, userID, beneficioID string, req *domain.BeneficioRequest) (*domain.Beneficio, error) {
	ctx, span := fornecedorTracer.Start(ctx, "FornecedorService.AtualizarBeneficio")
	defer span.End()

	beneficio, err := s.beneficioDoFornecedor(ctx, userID, beneficioID)
	if err != nil {
		return nil, err
	}

	if req.Descricao != "" {
		beneficio.Descricao = req.Descricao
	}
	if req.NivelMinimo != "" {
		if !req.NivelMinimo.Valid() {
			return nil, &domain.ErrValidation{Field: "nivel_minimo", Message: "Nível de parceria inválido"}
		}
		beneficio.NivelMinimo = req.NivelMinimo
	}
	if req.Ativo != nil {
		beneficio.Ativo = *req.Ativo
	}

	if err := s.fornecedores.UpdateBeneficio(ctx, beneficio); err != nil {
		return nil, fmt.Errorf("update beneficio: %w", err)
	}

	s.invalidateBeneficios()
	return beneficio, nil
}

func (s *FornecedorService) RemoverBeneficio(ctx context.Context, userID, beneficioID string) error {
	ctx, span := fornecedorTracer.Start(ctx, "FornecedorService.RemoverBeneficio")
	defer span.End()

	if _, err := s.beneficioDoFornecedor(ctx, userID, beneficioID); err != nil {
		return err
	}
	if err := s.fornecedores.DeleteBeneficio(ctx, beneficioID); err != nil {
		return fmt.Errorf("delete beneficio: %w", err)
	}

	s.invalidateBeneficios()
	s.logger.Info("benefício removido", zap.String("beneficio_id", beneficioID))
	return nil
}

// beneficioDoFornecedor loads a benefit and enforces ownership.
func (s *FornecedorService) beneficioDoFornecedor(ctx context.Context, userID, beneficioID string) (*domain.Beneficio, error) {
	fornecedor, err := s.perfil(ctx, userID)
	if err != nil {
		return nil, err
	}

	beneficio, err := s.fornecedores.GetBeneficio(ctx, beneficioID)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return nil, &domain.ErrNotFound{Resource: "benefício", ID: beneficioID}
		}
		return nil, fmt.Errorf("get beneficio: %w", err)
	}
	if beneficio.FornecedorID != fornecedor.ID {
		return nil, &domain.ErrForbidden{Message: "Benefício pertence a outro fornecedor"}
	}
	return beneficio, nil
}
