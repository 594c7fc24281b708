// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"
	"time"

	"github.com/Maiolini/sitecafe/internal/domain"
)

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}

// Mailer sends transactional e-mails. Implementations may be a real SMTP
// client or the development log stub.
type Mailer interface {
	SendBoasVindas(ctx context.Context, to, nome string, tipo domain.TipoUsuario) error
	SendRecuperacaoSenha(ctx context.Context, to, nome, token string) error
}

// UserStore defines the data operations for accounts and credentials.
type UserStore interface {
	CreateUser(ctx context.Context, user *domain.User) error

	// Registration writes the user row and its role profile in one
	// transaction; a failed profile never leaves an orphaned login.
	RegistrarCliente(ctx context.Context, user *domain.User, cliente *domain.Cliente) error
	RegistrarFornecedor(ctx context.Context, user *domain.User, fornecedor *domain.Fornecedor) error
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	UpdatePasswordHash(ctx context.Context, userID, hash string) error
	DeleteUser(ctx context.Context, id string) error

	// Password reset tokens (sha256 hash is stored, never the raw token)
	StoreResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	GetUserByResetTokenHash(ctx context.Context, tokenHash string) (*domain.User, error)
	ClearResetToken(ctx context.Context, userID string) error
	PurgeExpiredResetTokens(ctx context.Context, now time.Time) error

	// Admin listings
	ListUsers(ctx context.Context, filtro domain.UsuarioFiltro, page, perPage int) ([]domain.User, int, error)
	CountUsers(ctx context.Context, tipo domain.TipoUsuario) (int, error)
	CountFornecedoresPendentes(ctx context.Context) (int, error)
}

// ClienteStore defines the data operations for cliente profiles.
type ClienteStore interface {
	CreateCliente(ctx context.Context, c *domain.Cliente) error
	GetClienteByUserID(ctx context.Context, userID string) (*domain.Cliente, error)
	GetClienteByID(ctx context.Context, id string) (*domain.Cliente, error)
	UpdateCliente(ctx context.Context, c *domain.Cliente) error
	ListClientes(ctx context.Context, filtro domain.ClienteFiltro, page, perPage int) ([]domain.ClienteResumo, int, error)

	// RecalcularVolumeMes re-derives the monthly purchase volume and the
	// partnership tier for the calendar month of ref, persisting both.
	RecalcularVolumeMes(ctx context.Context, clienteID string, ref time.Time) (*domain.Cliente, error)

	ContarClientesPorNivel(ctx context.Context) (map[domain.NivelParceria]int, error)
	SomaCashbackAcumulado(ctx context.Context) (float64, error)

	// EstatisticasClientes aggregates the active, approved client base:
	// top cities, tier distribution, and clients with a purchase since
	// ativosDesde.
	EstatisticasClientes(ctx context.Context, ativosDesde time.Time) (*domain.EstatisticasClientes, error)
}

// FornecedorStore defines the data operations for fornecedor profiles and
// their benefits.
type FornecedorStore interface {
	CreateFornecedor(ctx context.Context, f *domain.Fornecedor) error
	GetFornecedorByUserID(ctx context.Context, userID string) (*domain.Fornecedor, error)
	GetFornecedorByID(ctx context.Context, id string) (*domain.Fornecedor, error)
	UpdateFornecedor(ctx context.Context, f *domain.Fornecedor) error

	CreateBeneficio(ctx context.Context, b *domain.Beneficio) error
	GetBeneficio(ctx context.Context, id string) (*domain.Beneficio, error)
	UpdateBeneficio(ctx context.Context, b *domain.Beneficio) error
	DeleteBeneficio(ctx context.Context, id string) error
	ListBeneficiosByFornecedor(ctx context.Context, fornecedorID string) ([]domain.Beneficio, error)

	// ListBeneficiosDisponiveis returns active benefits whose minimum tier
	// is at or below nivel, from active and approved fornecedores only.
	ListBeneficiosDisponiveis(ctx context.Context, nivel domain.NivelParceria) ([]domain.BeneficioDisponivel, error)
	CountBeneficiosAtivos(ctx context.Context, fornecedorID string) (int, error)
}

// PedidoStore defines the data operations for orders. RegistrarCompra is
// the single write path that posts an order: it inserts the pedido, credits
// the cashback ledger and balance, bumps the cliente's monthly volume and
// recomputes the partnership tier, all inside one transaction.
type PedidoStore interface {
	RegistrarCompra(ctx context.Context, pedido *domain.Pedido, cashback *domain.TransacaoCashback) (*domain.Cliente, error)
	GetPedido(ctx context.Context, id string) (*domain.Pedido, error)
	UpdateStatusPedido(ctx context.Context, id string, status domain.StatusPedido, dataEntrega *time.Time) error
	ListPedidosByCliente(ctx context.Context, clienteID string, filtro domain.PedidoFiltro, page, perPage int) ([]domain.Pedido, int, error)
	ProximasEntregas(ctx context.Context, clienteID string) ([]domain.Pedido, error)
	CountPedidosMes(ctx context.Context, clienteID string, ref time.Time) (int, error)
	ListPedidos(ctx context.Context, filtro domain.PedidoFiltro, page, perPage int) ([]domain.PedidoComCliente, int, error)
	PedidosRecentes(ctx context.Context, limit int) ([]domain.PedidoComCliente, error)
	CountPedidos(ctx context.Context, status domain.StatusPedido) (int, error)
	RelatorioVendas(ctx context.Context, inicio, fim time.Time) (*domain.RelatorioVendas, error)
	ResumoMes(ctx context.Context, ref time.Time) (pedidos int, volumeKg, faturamento float64, err error)
}

// CashbackStore defines the data operations for the cashback ledger.
type CashbackStore interface {
	// UsarCashback debits the balance and records an uso transaction
	// atomically. Returns ErrSaldoInsuficiente when the balance does not
	// cover the amount.
	UsarCashback(ctx context.Context, clienteID string, valor float64, descricao string) (*domain.TransacaoCashback, float64, error)
	ListTransacoes(ctx context.Context, clienteID string, tipo domain.TipoTransacao, page, perPage int) ([]domain.TransacaoCashback, int, error)
	UltimasTransacoes(ctx context.Context, clienteID string, limit int) ([]domain.TransacaoCashback, error)
	ResumoCashback(ctx context.Context, clienteID string) (*domain.ResumoCashback, error)
}
