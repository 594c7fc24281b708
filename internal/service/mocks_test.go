package service_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"sync"
	"time"

	"github.com/Maiolini/sitecafe/internal/domain"
	"github.com/Maiolini/sitecafe/internal/infra/sqlite"
)

// hashFor mirrors the stored form of a raw reset token.
func hashFor(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// In-memory fakes for the storage ports. They return the same sentinel
// errors the sqlite package does, so the services exercise their real
// error translation paths.

// --- UserStore ---

type resetToken struct {
	hash      string
	expiresAt time.Time
}

type mockUserStore struct {
	mu     sync.Mutex
	users  map[string]*domain.User
	resets map[string]resetToken

	// Registration targets, wired by the fixtures that exercise Register.
	clientes     *mockClienteStore
	fornecedores *mockFornecedorStore
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{
		users:  make(map[string]*domain.User),
		resets: make(map[string]resetToken),
	}
}

func (m *mockUserStore) CreateUser(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return sqlite.ErrDuplicate
		}
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *mockUserStore) RegistrarCliente(ctx context.Context, user *domain.User, cliente *domain.Cliente) error {
	if err := m.CreateUser(ctx, user); err != nil {
		return err
	}
	if err := m.clientes.CreateCliente(ctx, cliente); err != nil {
		m.mu.Lock()
		delete(m.users, user.ID)
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *mockUserStore) RegistrarFornecedor(ctx context.Context, user *domain.User, fornecedor *domain.Fornecedor) error {
	if err := m.CreateUser(ctx, user); err != nil {
		return err
	}
	if err := m.fornecedores.CreateFornecedor(ctx, fornecedor); err != nil {
		m.mu.Lock()
		delete(m.users, user.ID)
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *mockUserStore) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, sqlite.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserStore) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, sqlite.ErrNotFound
}

func (m *mockUserStore) UpdateUser(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return sqlite.ErrNotFound
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *mockUserStore) UpdatePasswordHash(_ context.Context, userID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return sqlite.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (m *mockUserStore) DeleteUser(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return sqlite.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserStore) StoreResetToken(_ context.Context, userID, tokenHash string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets[userID] = resetToken{hash: tokenHash, expiresAt: expiresAt}
	return nil
}

func (m *mockUserStore) GetUserByResetTokenHash(_ context.Context, tokenHash string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for userID, rt := range m.resets {
		if rt.hash == tokenHash {
			u, ok := m.users[userID]
			if !ok {
				return nil, sqlite.ErrNotFound
			}
			cp := *u
			cp.ResetTokenHash = rt.hash
			exp := rt.expiresAt
			cp.ResetTokenExpira = &exp
			return &cp, nil
		}
	}
	return nil, sqlite.ErrNotFound
}

func (m *mockUserStore) ClearResetToken(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.resets, userID)
	return nil
}

func (m *mockUserStore) PurgeExpiredResetTokens(_ context.Context, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for userID, rt := range m.resets {
		if rt.expiresAt.Before(now) {
			delete(m.resets, userID)
		}
	}
	return nil
}

func (m *mockUserStore) ListUsers(_ context.Context, filtro domain.UsuarioFiltro, page, perPage int) ([]domain.User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.User
	for _, u := range m.users {
		if filtro.Tipo != "" && u.TipoUsuario != filtro.Tipo {
			continue
		}
		if filtro.Ativo != nil && u.Ativo != *filtro.Ativo {
			continue
		}
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (m *mockUserStore) CountUsers(_ context.Context, tipo domain.TipoUsuario) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, u := range m.users {
		if u.TipoUsuario == tipo {
			n++
		}
	}
	return n, nil
}

func (m *mockUserStore) CountFornecedoresPendentes(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, u := range m.users {
		if u.TipoUsuario == domain.TipoFornecedor && !u.Aprovado {
			n++
		}
	}
	return n, nil
}

// --- ClienteStore ---

type mockClienteStore struct {
	mu        sync.Mutex
	clientes  map[string]*domain.Cliente
	createErr error
}

func newMockClienteStore() *mockClienteStore {
	return &mockClienteStore{clientes: make(map[string]*domain.Cliente)}
}

func (m *mockClienteStore) CreateCliente(_ context.Context, c *domain.Cliente) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	cp := *c
	m.clientes[c.ID] = &cp
	return nil
}

func (m *mockClienteStore) GetClienteByUserID(_ context.Context, userID string) (*domain.Cliente, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.clientes {
		if c.UserID == userID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, sqlite.ErrNotFound
}

func (m *mockClienteStore) GetClienteByID(_ context.Context, id string) (*domain.Cliente, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clientes[id]
	if !ok {
		return nil, sqlite.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockClienteStore) UpdateCliente(_ context.Context, c *domain.Cliente) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clientes[c.ID]; !ok {
		return sqlite.ErrNotFound
	}
	cp := *c
	m.clientes[c.ID] = &cp
	return nil
}

func (m *mockClienteStore) ListClientes(_ context.Context, filtro domain.ClienteFiltro, page, perPage int) ([]domain.ClienteResumo, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ClienteResumo
	for _, c := range m.clientes {
		if filtro.Nivel != "" && c.NivelParceria != filtro.Nivel {
			continue
		}
		out = append(out, domain.ClienteResumo{
			ID:            c.ID,
			Empresa:       c.Empresa,
			Cidade:        c.Cidade,
			Estado:        c.Estado,
			NivelParceria: c.NivelParceria,
		})
	}
	return out, len(out), nil
}

func (m *mockClienteStore) RecalcularVolumeMes(_ context.Context, clienteID string, _ time.Time) (*domain.Cliente, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clientes[clienteID]
	if !ok {
		return nil, sqlite.ErrNotFound
	}
	c.NivelParceria = domain.CalcularNivelParceria(c.TotalComprasMes)
	cp := *c
	return &cp, nil
}

func (m *mockClienteStore) ContarClientesPorNivel(_ context.Context) (map[domain.NivelParceria]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[domain.NivelParceria]int{
		domain.NivelInicial:  0,
		domain.NivelAvancado: 0,
		domain.NivelElite:    0,
	}
	for _, c := range m.clientes {
		counts[c.NivelParceria]++
	}
	return counts, nil
}

func (m *mockClienteStore) SomaCashbackAcumulado(_ context.Context) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum float64
	for _, c := range m.clientes {
		sum += c.CashbackAcumulado
	}
	return sum, nil
}

func (m *mockClienteStore) EstatisticasClientes(_ context.Context, ativosDesde time.Time) (*domain.EstatisticasClientes, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := &domain.EstatisticasClientes{}

	porCidade := map[string]int{}
	porNivel := map[domain.NivelParceria]int{}
	for _, c := range m.clientes {
		if c.Cidade != "" {
			porCidade[c.Cidade]++
		}
		porNivel[c.NivelParceria]++
		if c.DataUltimaCompra != nil && !c.DataUltimaCompra.Before(ativosDesde) {
			stats.ClientesAtivosRecentes = append(stats.ClientesAtivosRecentes, domain.ClienteAtivo{
				Empresa:          c.Empresa,
				Cidade:           c.Cidade,
				NivelParceria:    c.NivelParceria,
				DataUltimaCompra: c.DataUltimaCompra,
			})
		}
	}
	for cidade, n := range porCidade {
		stats.ClientesPorCidade = append(stats.ClientesPorCidade, domain.ContagemCidade{Cidade: cidade, Count: n})
	}
	sort.Slice(stats.ClientesPorCidade, func(i, j int) bool {
		return stats.ClientesPorCidade[i].Count > stats.ClientesPorCidade[j].Count
	})
	for nivel, n := range porNivel {
		stats.ClientesPorNivel = append(stats.ClientesPorNivel, domain.ContagemNivel{Nivel: nivel, Count: n})
	}
	sort.Slice(stats.ClientesAtivosRecentes, func(i, j int) bool {
		return stats.ClientesAtivosRecentes[i].DataUltimaCompra.After(*stats.ClientesAtivosRecentes[j].DataUltimaCompra)
	})
	return stats, nil
}

// --- FornecedorStore ---

type mockFornecedorStore struct {
	mu           sync.Mutex
	fornecedores map[string]*domain.Fornecedor
	beneficios   map[string]*domain.Beneficio
	createErr    error
}

func newMockFornecedorStore() *mockFornecedorStore {
	return &mockFornecedorStore{
		fornecedores: make(map[string]*domain.Fornecedor),
		beneficios:   make(map[string]*domain.Beneficio),
	}
}

func (m *mockFornecedorStore) CreateFornecedor(_ context.Context, f *domain.Fornecedor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	cp := *f
	m.fornecedores[f.ID] = &cp
	return nil
}

func (m *mockFornecedorStore) GetFornecedorByUserID(_ context.Context, userID string) (*domain.Fornecedor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.fornecedores {
		if f.UserID == userID {
			cp := *f
			return &cp, nil
		}
	}
	return nil, sqlite.ErrNotFound
}

func (m *mockFornecedorStore) GetFornecedorByID(_ context.Context, id string) (*domain.Fornecedor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.fornecedores[id]
	if !ok {
		return nil, sqlite.ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (m *mockFornecedorStore) UpdateFornecedor(_ context.Context, f *domain.Fornecedor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.fornecedores[f.ID]; !ok {
		return sqlite.ErrNotFound
	}
	cp := *f
	m.fornecedores[f.ID] = &cp
	return nil
}

func (m *mockFornecedorStore) CreateBeneficio(_ context.Context, b *domain.Beneficio) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *b
	m.beneficios[b.ID] = &cp
	return nil
}

func (m *mockFornecedorStore) GetBeneficio(_ context.Context, id string) (*domain.Beneficio, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.beneficios[id]
	if !ok {
		return nil, sqlite.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *mockFornecedorStore) UpdateBeneficio(_ context.Context, b *domain.Beneficio) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.beneficios[b.ID]; !ok {
		return sqlite.ErrNotFound
	}
	cp := *b
	m.beneficios[b.ID] = &cp
	return nil
}

func (m *mockFornecedorStore) DeleteBeneficio(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.beneficios[id]; !ok {
		return sqlite.ErrNotFound
	}
	delete(m.beneficios, id)
	return nil
}

func (m *mockFornecedorStore) ListBeneficiosByFornecedor(_ context.Context, fornecedorID string) ([]domain.Beneficio, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Beneficio
	for _, b := range m.beneficios {
		if b.FornecedorID == fornecedorID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *mockFornecedorStore) ListBeneficiosDisponiveis(_ context.Context, nivel domain.NivelParceria) ([]domain.BeneficioDisponivel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.BeneficioDisponivel
	for _, b := range m.beneficios {
		if b.Ativo && nivel.Atende(b.NivelMinimo) {
			out = append(out, domain.BeneficioDisponivel{Beneficio: *b})
		}
	}
	return out, nil
}

func (m *mockFornecedorStore) CountBeneficiosAtivos(_ context.Context, fornecedorID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, b := range m.beneficios {
		if b.FornecedorID == fornecedorID && b.Ativo {
			n++
		}
	}
	return n, nil
}

// --- PedidoStore ---

type mockPedidoStore struct {
	mu         sync.Mutex
	clientes   *mockClienteStore
	cashback   *mockCashbackStore
	pedidos    map[string]*domain.Pedido
	compraErr  error
	registered []*domain.Pedido
}

func newMockPedidoStore(clientes *mockClienteStore, cashback *mockCashbackStore) *mockPedidoStore {
	return &mockPedidoStore{
		clientes: clientes,
		cashback: cashback,
		pedidos:  make(map[string]*domain.Pedido),
	}
}

// RegistrarCompra mirrors the transactional posting: stores the order,
// appends the ledger entry, credits the balance and bumps the volume.
func (m *mockPedidoStore) RegistrarCompra(ctx context.Context, pedido *domain.Pedido, cashback *domain.TransacaoCashback) (*domain.Cliente, error) {
	m.mu.Lock()
	if m.compraErr != nil {
		m.mu.Unlock()
		return nil, m.compraErr
	}
	cp := *pedido
	m.pedidos[pedido.ID] = &cp
	m.registered = append(m.registered, &cp)
	m.mu.Unlock()

	m.cashback.append(cashback)

	m.clientes.mu.Lock()
	c, ok := m.clientes.clientes[pedido.ClienteID]
	if !ok {
		m.clientes.mu.Unlock()
		return nil, sqlite.ErrNotFound
	}
	c.CashbackAcumulado += cashback.Valor
	c.TotalComprasMes += pedido.QuantidadeKg
	c.NivelParceria = domain.CalcularNivelParceria(c.TotalComprasMes)
	c.DataUltimaCompra = &pedido.DataPedido
	out := *c
	m.clientes.mu.Unlock()
	return &out, nil
}

func (m *mockPedidoStore) GetPedido(_ context.Context, id string) (*domain.Pedido, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pedidos[id]
	if !ok {
		return nil, sqlite.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockPedidoStore) UpdateStatusPedido(_ context.Context, id string, status domain.StatusPedido, dataEntrega *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pedidos[id]
	if !ok {
		return sqlite.ErrNotFound
	}
	p.Status = status
	if dataEntrega != nil {
		p.DataEntrega = dataEntrega
	}
	return nil
}

func (m *mockPedidoStore) ListPedidosByCliente(_ context.Context, clienteID string, filtro domain.PedidoFiltro, page, perPage int) ([]domain.Pedido, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Pedido
	for _, p := range m.pedidos {
		if p.ClienteID != clienteID {
			continue
		}
		if filtro.Status != "" && p.Status != filtro.Status {
			continue
		}
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (m *mockPedidoStore) ProximasEntregas(_ context.Context, clienteID string) ([]domain.Pedido, error) {
	return nil, nil
}

func (m *mockPedidoStore) CountPedidosMes(_ context.Context, clienteID string, _ time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, p := range m.pedidos {
		if p.ClienteID == clienteID {
			n++
		}
	}
	return n, nil
}

func (m *mockPedidoStore) ListPedidos(_ context.Context, filtro domain.PedidoFiltro, page, perPage int) ([]domain.PedidoComCliente, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.PedidoComCliente
	for _, p := range m.pedidos {
		if filtro.Status != "" && p.Status != filtro.Status {
			continue
		}
		out = append(out, domain.PedidoComCliente{Pedido: *p})
	}
	return out, len(out), nil
}

func (m *mockPedidoStore) PedidosRecentes(_ context.Context, limit int) ([]domain.PedidoComCliente, error) {
	return nil, nil
}

func (m *mockPedidoStore) CountPedidos(_ context.Context, status domain.StatusPedido) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, p := range m.pedidos {
		if status == "" || p.Status == status {
			n++
		}
	}
	return n, nil
}

func (m *mockPedidoStore) RelatorioVendas(_ context.Context, inicio, fim time.Time) (*domain.RelatorioVendas, error) {
	return &domain.RelatorioVendas{}, nil
}

func (m *mockPedidoStore) ResumoMes(_ context.Context, _ time.Time) (int, float64, float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var volume, faturamento float64
	for _, p := range m.pedidos {
		volume += p.QuantidadeKg
		faturamento += p.ValorTotal
	}
	return len(m.pedidos), volume, faturamento, nil
}

// --- CashbackStore ---

type mockCashbackStore struct {
	mu         sync.Mutex
	clientes   *mockClienteStore
	transacoes []domain.TransacaoCashback
}

func newMockCashbackStore(clientes *mockClienteStore) *mockCashbackStore {
	return &mockCashbackStore{clientes: clientes}
}

func (m *mockCashbackStore) append(t *domain.TransacaoCashback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transacoes = append(m.transacoes, *t)
}

func (m *mockCashbackStore) UsarCashback(_ context.Context, clienteID string, valor float64, descricao string) (*domain.TransacaoCashback, float64, error) {
	m.clientes.mu.Lock()
	c, ok := m.clientes.clientes[clienteID]
	if !ok {
		m.clientes.mu.Unlock()
		return nil, 0, sqlite.ErrNotFound
	}
	if c.CashbackAcumulado < valor {
		saldo := c.CashbackAcumulado
		m.clientes.mu.Unlock()
		return nil, 0, &domain.ErrSaldoInsuficiente{Saldo: saldo, Solicitado: valor}
	}
	c.CashbackAcumulado -= valor
	saldo := c.CashbackAcumulado
	m.clientes.mu.Unlock()

	t := domain.TransacaoCashback{
		ID:            "tx-uso",
		ClienteID:     clienteID,
		Tipo:          domain.TransacaoUso,
		Valor:         valor,
		Descricao:     descricao,
		DataTransacao: time.Now().UTC(),
	}
	m.append(&t)
	return &t, saldo, nil
}

func (m *mockCashbackStore) ListTransacoes(_ context.Context, clienteID string, tipo domain.TipoTransacao, page, perPage int) ([]domain.TransacaoCashback, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.TransacaoCashback
	for _, t := range m.transacoes {
		if t.ClienteID != clienteID {
			continue
		}
		if tipo != "" && t.Tipo != tipo {
			continue
		}
		out = append(out, t)
	}
	return out, len(out), nil
}

func (m *mockCashbackStore) UltimasTransacoes(_ context.Context, clienteID string, limit int) ([]domain.TransacaoCashback, error) {
	out, _, _ := m.ListTransacoes(context.Background(), clienteID, "", 1, limit)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockCashbackStore) ResumoCashback(_ context.Context, clienteID string) (*domain.ResumoCashback, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	resumo := &domain.ResumoCashback{}
	for _, t := range m.transacoes {
		if t.ClienteID != clienteID {
			continue
		}
		switch t.Tipo {
		case domain.TransacaoGanho:
			resumo.TotalGanho += t.Valor
		case domain.TransacaoUso:
			resumo.TotalUsado += t.Valor
		}
	}
	resumo.SaldoAtual = resumo.TotalGanho - resumo.TotalUsado
	return resumo, nil
}

// --- Mailer ---

type mockMailer struct {
	mu          sync.Mutex
	boasVindas  []string
	recuperacao []string
	lastToken   string
}

func (m *mockMailer) SendBoasVindas(_ context.Context, to, _ string, _ domain.TipoUsuario) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.boasVindas = append(m.boasVindas, to)
	return nil
}

func (m *mockMailer) SendRecuperacaoSenha(_ context.Context, to, _ string, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recuperacao = append(m.recuperacao, to)
	m.lastToken = token
	return nil
}

func (m *mockMailer) resetMails() (int, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.recuperacao), m.lastToken
}
