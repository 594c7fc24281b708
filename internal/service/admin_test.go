package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Maiolini/sitecafe/internal/domain"
	"github.com/Maiolini/sitecafe/internal/infra/observability"
	"github.com/Maiolini/sitecafe/internal/service"

	"go.uber.org/zap"
)

type adminFixture struct {
	svc      *service.AdminService
	users    *mockUserStore
	clientes *mockClienteStore
	pedidos  *mockPedidoStore
	cashback *mockCashbackStore
	metrics  *observability.Metrics
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	users := newMockUserStore()
	clientes := newMockClienteStore()
	cashback := newMockCashbackStore(clientes)
	pedidos := newMockPedidoStore(clientes, cashback)
	auth := newAuthService(users, clientes, newMockFornecedorStore(), &mockMailer{})
	metrics := observability.NewMetrics()

	return &adminFixture{
		svc:      service.NewAdminService(users, clientes, pedidos, auth, metrics, zap.NewNop()),
		users:    users,
		clientes: clientes,
		pedidos:  pedidos,
		cashback: cashback,
		metrics:  metrics,
	}
}

func TestAprovarFornecedor(t *testing.T) {
	f := newAdminFixture(t)
	forn := seedUser(t, f.users, "forn@cafe.com", "segredo123", domain.TipoFornecedor, true, false)

	resp, err := f.svc.AprovarFornecedor(context.Background(), forn.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Message != "Fornecedor aprovado com sucesso" {
		t.Errorf("unexpected message %q", resp.Message)
	}

	updated, err := f.users.GetUserByID(context.Background(), forn.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if !updated.Aprovado {
		t.Error("expected fornecedor to be approved")
	}
}

func TestAprovarFornecedor_NaoFornecedor(t *testing.T) {
	f := newAdminFixture(t)
	cliente := seedUser(t, f.users, "cli@cafe.com", "segredo123", domain.TipoCliente, true, true)

	_, err := f.svc.AprovarFornecedor(context.Background(), cliente.ID)
	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error for non-fornecedor, got %v", err)
	}

	_, err = f.svc.AprovarFornecedor(context.Background(), "inexistente")
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRejeitarFornecedor(t *testing.T) {
	f := newAdminFixture(t)
	forn := seedUser(t, f.users, "forn@cafe.com", "segredo123", domain.TipoFornecedor, true, false)

	if _, err := f.svc.RejeitarFornecedor(context.Background(), forn.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := f.users.GetUserByID(context.Background(), forn.ID); err == nil {
		t.Error("expected rejected fornecedor to be deleted")
	}
}

func TestToggleUsuario(t *testing.T) {
	f := newAdminFixture(t)
	admin := seedUser(t, f.users, "admin@cafe.com", "segredo123", domain.TipoAdmin, true, true)
	alvo := seedUser(t, f.users, "alvo@cafe.com", "segredo123", domain.TipoCliente, true, true)

	resp, err := f.svc.ToggleUsuario(context.Background(), admin.ID, alvo.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Message != "Usuário desativado com sucesso" {
		t.Errorf("unexpected message %q", resp.Message)
	}

	resp, err = f.svc.ToggleUsuario(context.Background(), admin.ID, alvo.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Message != "Usuário ativado com sucesso" {
		t.Errorf("unexpected message %q", resp.Message)
	}
}

func TestToggleUsuario_PropriaConta(t *testing.T) {
	f := newAdminFixture(t)
	admin := seedUser(t, f.users, "admin@cafe.com", "segredo123", domain.TipoAdmin, true, true)

	_, err := f.svc.ToggleUsuario(context.Background(), admin.ID, admin.ID)
	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error for self-toggle, got %v", err)
	}
}

func TestAtualizarStatusPedido_EntregueCarimbaUmaVez(t *testing.T) {
	f := newAdminFixture(t)
	seedClienteComPedido(t, f, "cli-1", "ped-1")

	if _, err := f.svc.AtualizarStatusPedido(context.Background(), "ped-1", &domain.AtualizarStatusPedidoRequest{Status: domain.StatusEntregue}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	p, err := f.pedidos.GetPedido(context.Background(), "ped-1")
	if err != nil {
		t.Fatalf("get pedido: %v", err)
	}
	if p.DataEntrega == nil {
		t.Fatal("expected data_entrega to be stamped")
	}
	primeira := *p.DataEntrega

	// Cycling through another status and back must not move the stamp.
	if _, err := f.svc.AtualizarStatusPedido(context.Background(), "ped-1", &domain.AtualizarStatusPedidoRequest{Status: domain.StatusProcessando}); err != nil {
		t.Fatalf("processando: %v", err)
	}
	if _, err := f.svc.AtualizarStatusPedido(context.Background(), "ped-1", &domain.AtualizarStatusPedidoRequest{Status: domain.StatusEntregue}); err != nil {
		t.Fatalf("entregue de novo: %v", err)
	}
	p, _ = f.pedidos.GetPedido(context.Background(), "ped-1")
	if !p.DataEntrega.Equal(primeira) {
		t.Errorf("expected delivery stamp to stay at %v, got %v", primeira, *p.DataEntrega)
	}
}

func TestAtualizarStatusPedido_StatusInvalido(t *testing.T) {
	f := newAdminFixture(t)
	_, err := f.svc.AtualizarStatusPedido(context.Background(), "ped-x", &domain.AtualizarStatusPedidoRequest{Status: "despachado"})
	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAdicionarCompraManual(t *testing.T) {
	f := newAdminFixture(t)
	if err := f.clientes.CreateCliente(context.Background(), &domain.Cliente{
		ID:            "cli-1",
		UserID:        "user-1",
		NivelParceria: domain.NivelElite,
	}); err != nil {
		t.Fatalf("seed cliente: %v", err)
	}

	resp, err := f.svc.AdicionarCompraManual(context.Background(), &domain.CompraManualRequest{
		ClienteID:    "cli-1",
		QuantidadeKg: 25,
		TipoCafe:     domain.CafeGraos,
		TipoTorra:    domain.TorraMedia,
		ValorTotal:   3000,
		DataPedido:   "2026-07-10",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Pedido.Status != domain.StatusEntregue {
		t.Errorf("expected entregue, got %s", resp.Pedido.Status)
	}
	if resp.Pedido.DataEntrega == nil || resp.Pedido.DataEntrega.Format("2006-01-02") != "2026-07-10" {
		t.Errorf("expected delivery on the informed date, got %v", resp.Pedido.DataEntrega)
	}
	if resp.CashbackGanho != 60 { // elite: 3000 * 2%
		t.Errorf("expected cashback 60.00, got %.2f", resp.CashbackGanho)
	}
	if resp.Pedido.Observacoes != "Compra adicionada manualmente pelo administrador" {
		t.Errorf("unexpected default observacoes %q", resp.Pedido.Observacoes)
	}

	snap := f.metrics.Snapshot()
	if snap.PedidosCriados != 1 {
		t.Errorf("expected manual order counted, got %d", snap.PedidosCriados)
	}
	if snap.CashbackCreditado != 60 {
		t.Errorf("expected cashback 60.00 counted, got %.2f", snap.CashbackCreditado)
	}
}

func TestAdicionarCompraManual_ClienteInexistente(t *testing.T) {
	f := newAdminFixture(t)
	_, err := f.svc.AdicionarCompraManual(context.Background(), &domain.CompraManualRequest{
		ClienteID:    "fantasma",
		QuantidadeKg: 5,
		TipoCafe:     domain.CafeMoido,
		TipoTorra:    domain.TorraMedia,
		ValorTotal:   100,
	})
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRelatorioVendas_Validacao(t *testing.T) {
	f := newAdminFixture(t)
	cases := []struct {
		name   string
		inicio string
		fim    string
	}{
		{"sem datas", "", ""},
		{"inicio invalido", "10/07/2026", "2026-07-20"},
		{"fim antes do inicio", "2026-07-20", "2026-07-10"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.RelatorioVendas(context.Background(), tc.inicio, tc.fim)
			var validation *domain.ErrValidation
			if !errors.As(err, &validation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCriarAdmin(t *testing.T) {
	f := newAdminFixture(t)

	perfil, err := f.svc.CriarAdmin(context.Background(), &domain.CriarAdminRequest{
		Email:    "Novo@Admin.com",
		Password: "segredo123",
		Nome:     "Novo Admin",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if perfil.TipoUsuario != domain.TipoAdmin {
		t.Errorf("expected admin role, got %s", perfil.TipoUsuario)
	}
	if !perfil.Ativo || !perfil.Aprovado {
		t.Error("expected admin to be active and approved")
	}

	_, err = f.svc.CriarAdmin(context.Background(), &domain.CriarAdminRequest{
		Email:    "novo@admin.com",
		Password: "segredo123",
		Nome:     "Duplicado",
	})
	var conflict *domain.ErrConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict for duplicate email, got %v", err)
	}
}

func TestAdminDashboard(t *testing.T) {
	f := newAdminFixture(t)
	seedUser(t, f.users, "c1@cafe.com", "segredo123", domain.TipoCliente, true, true)
	seedUser(t, f.users, "c2@cafe.com", "segredo123", domain.TipoCliente, true, true)
	seedUser(t, f.users, "f1@cafe.com", "segredo123", domain.TipoFornecedor, true, false)
	seedClienteComPedido(t, f, "cli-1", "ped-1")

	dash, err := f.svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if dash.TotalClientes != 2 {
		t.Errorf("expected 2 clientes, got %d", dash.TotalClientes)
	}
	if dash.TotalFornecedores != 1 || dash.FornecedoresPendentes != 1 {
		t.Errorf("expected 1 fornecedor pendente, got %d/%d", dash.TotalFornecedores, dash.FornecedoresPendentes)
	}
	if dash.PedidosPendentes != 1 {
		t.Errorf("expected 1 pedido pendente, got %d", dash.PedidosPendentes)
	}
	if dash.VolumeMesKg != 10 {
		t.Errorf("expected 10kg volume, got %.2f", dash.VolumeMesKg)
	}
}

// seedClienteComPedido posts one pending 10kg order worth 1000 for a
// fresh cliente.
func seedClienteComPedido(t *testing.T, f *adminFixture, clienteID, pedidoID string) {
	t.Helper()
	if err := f.clientes.CreateCliente(context.Background(), &domain.Cliente{
		ID:            clienteID,
		UserID:        "user-" + clienteID,
		NivelParceria: domain.NivelInicial,
	}); err != nil {
		t.Fatalf("seed cliente: %v", err)
	}
	now := time.Now().UTC()
	if _, err := f.pedidos.RegistrarCompra(context.Background(), &domain.Pedido{
		ID:           pedidoID,
		ClienteID:    clienteID,
		QuantidadeKg: 10,
		TipoCafe:     domain.CafeGraos,
		TipoTorra:    domain.TorraMedia,
		ValorTotal:   1000,
		Status:       domain.StatusPendente,
		DataPedido:   now,
	}, &domain.TransacaoCashback{
		ID:            "tx-" + pedidoID,
		ClienteID:     clienteID,
		PedidoID:      pedidoID,
		Tipo:          domain.TransacaoGanho,
		Valor:         15,
		DataTransacao: now,
	}); err != nil {
		t.Fatalf("seed pedido: %v", err)
	}
}
