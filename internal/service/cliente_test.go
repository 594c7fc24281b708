package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Maiolini/sitecafe/internal/domain"
	"github.com/Maiolini/sitecafe/internal/infra/cache"
	"github.com/Maiolini/sitecafe/internal/infra/observability"
	"github.com/Maiolini/sitecafe/internal/service"

	"go.uber.org/zap"
)

type clienteFixture struct {
	svc          *service.ClienteService
	clientes     *mockClienteStore
	pedidos      *mockPedidoStore
	cashback     *mockCashbackStore
	fornecedores *mockFornecedorStore
	cliente      *domain.Cliente
}

func newClienteFixture(t *testing.T) *clienteFixture {
	t.Helper()
	clientes := newMockClienteStore()
	cashbackStore := newMockCashbackStore(clientes)
	pedidos := newMockPedidoStore(clientes, cashbackStore)
	fornecedores := newMockFornecedorStore()

	cliente := &domain.Cliente{
		ID:            "cli-1",
		UserID:        "user-1",
		Empresa:       "Padaria Central",
		Endereco:      "Rua das Flores, 123",
		NivelParceria: domain.NivelInicial,
	}
	if err := clientes.CreateCliente(context.Background(), cliente); err != nil {
		t.Fatalf("seed cliente: %v", err)
	}

	svc := service.NewClienteService(
		clientes, pedidos, cashbackStore, fornecedores,
		cache.New[[]domain.BeneficioDisponivel](5*time.Minute),
		observability.NewMetrics(),
		zap.NewNop(),
	)
	return &clienteFixture{
		svc:          svc,
		clientes:     clientes,
		pedidos:      pedidos,
		cashback:     cashbackStore,
		fornecedores: fornecedores,
		cliente:      cliente,
	}
}

func TestCriarPedido_CashbackPelaTaxaDoNivel(t *testing.T) {
	cases := []struct {
		name         string
		nivel        domain.NivelParceria
		valor        float64
		wantCashback float64
	}{
		{"inicial 1.5%", domain.NivelInicial, 1000, 15},
		{"avancado 1.5%", domain.NivelAvancado, 1000, 15},
		{"elite 2%", domain.NivelElite, 1000, 20},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newClienteFixture(t)
			f.cliente.NivelParceria = tc.nivel
			if err := f.clientes.UpdateCliente(context.Background(), f.cliente); err != nil {
				t.Fatalf("set nivel: %v", err)
			}

			resp, err := f.svc.CriarPedido(context.Background(), "user-1", &domain.CriarPedidoRequest{
				QuantidadeKg: 10,
				TipoCafe:     domain.CafeGraos,
				TipoTorra:    domain.TorraMedia,
				ValorTotal:   tc.valor,
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.CashbackGanho != tc.wantCashback {
				t.Errorf("expected cashback %.2f, got %.2f", tc.wantCashback, resp.CashbackGanho)
			}
			if resp.Cliente.CashbackAcumulado != tc.wantCashback {
				t.Errorf("expected balance %.2f, got %.2f", tc.wantCashback, resp.Cliente.CashbackAcumulado)
			}
			if resp.Pedido.Status != domain.StatusPendente {
				t.Errorf("expected status pendente, got %s", resp.Pedido.Status)
			}
		})
	}
}

func TestCriarPedido_TaxaDoNivelAnteriorAoPedido(t *testing.T) {
	// 79kg + 10kg crosses into elite, but the rate charged is the one the
	// client held before the order.
	f := newClienteFixture(t)
	f.cliente.TotalComprasMes = 79
	f.cliente.NivelParceria = domain.NivelAvancado
	if err := f.clientes.UpdateCliente(context.Background(), f.cliente); err != nil {
		t.Fatalf("seed volume: %v", err)
	}

	resp, err := f.svc.CriarPedido(context.Background(), "user-1", &domain.CriarPedidoRequest{
		QuantidadeKg: 10,
		TipoCafe:     domain.CafeMoido,
		TipoTorra:    domain.TorraEscura,
		ValorTotal:   2000,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.CashbackGanho != 30 { // 2000 * 1.5%
		t.Errorf("expected pre-order rate cashback 30.00, got %.2f", resp.CashbackGanho)
	}
	if resp.Cliente.NivelParceria != domain.NivelElite {
		t.Errorf("expected tier to advance to elite after posting, got %s", resp.Cliente.NivelParceria)
	}
}

func TestCriarPedido_Validacao(t *testing.T) {
	f := newClienteFixture(t)
	cases := []struct {
		name string
		req  domain.CriarPedidoRequest
	}{
		{"quantidade zero", domain.CriarPedidoRequest{TipoCafe: domain.CafeMoido, TipoTorra: domain.TorraMedia, ValorTotal: 100}},
		{"valor zero", domain.CriarPedidoRequest{QuantidadeKg: 5, TipoCafe: domain.CafeMoido, TipoTorra: domain.TorraMedia}},
		{"tipo cafe invalido", domain.CriarPedidoRequest{QuantidadeKg: 5, TipoCafe: "soluvel", TipoTorra: domain.TorraMedia, ValorTotal: 100}},
		{"tipo torra invalido", domain.CriarPedidoRequest{QuantidadeKg: 5, TipoCafe: domain.CafeMoido, TipoTorra: "clara", ValorTotal: 100}},
		{"dia automatico invalido", domain.CriarPedidoRequest{QuantidadeKg: 5, TipoCafe: domain.CafeMoido, TipoTorra: domain.TorraMedia, ValorTotal: 100, Automatico: true, DiaEntregaAutomatica: 20}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CriarPedido(context.Background(), "user-1", &tc.req)
			var validation *domain.ErrValidation
			if !errors.As(err, &validation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCriarPedido_EntregaAutomatica(t *testing.T) {
	f := newClienteFixture(t)
	resp, err := f.svc.CriarPedido(context.Background(), "user-1", &domain.CriarPedidoRequest{
		QuantidadeKg:         5,
		TipoCafe:             domain.CafeGraos,
		TipoTorra:            domain.TorraMedia,
		ValorTotal:           500,
		Automatico:           true,
		DiaEntregaAutomatica: 15,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Pedido.DataEntrega == nil {
		t.Fatal("expected a scheduled delivery date")
	}
	if got := resp.Pedido.DataEntrega.Day(); got != 15 {
		t.Errorf("expected delivery on day 15, got %d", got)
	}
	if !resp.Pedido.DataEntrega.After(time.Now().UTC()) {
		t.Error("expected delivery date in the future")
	}
}

func TestCriarPedido_EnderecoPadraoDoCliente(t *testing.T) {
	f := newClienteFixture(t)

	resp, err := f.svc.CriarPedido(context.Background(), "user-1", &domain.CriarPedidoRequest{
		QuantidadeKg: 10,
		TipoCafe:     domain.CafeGraos,
		TipoTorra:    domain.TorraMedia,
		ValorTotal:   500,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Pedido.EnderecoEntrega != "Rua das Flores, 123" {
		t.Errorf("expected client's address as fallback, got %q", resp.Pedido.EnderecoEntrega)
	}

	resp, err = f.svc.CriarPedido(context.Background(), "user-1", &domain.CriarPedidoRequest{
		QuantidadeKg:    10,
		TipoCafe:        domain.CafeGraos,
		TipoTorra:       domain.TorraMedia,
		ValorTotal:      500,
		EnderecoEntrega: "Av. Paulista, 1000",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Pedido.EnderecoEntrega != "Av. Paulista, 1000" {
		t.Errorf("expected explicit address kept, got %q", resp.Pedido.EnderecoEntrega)
	}
}

func TestUsarCashback(t *testing.T) {
	f := newClienteFixture(t)
	f.cliente.CashbackAcumulado = 50
	if err := f.clientes.UpdateCliente(context.Background(), f.cliente); err != nil {
		t.Fatalf("seed saldo: %v", err)
	}

	resp, err := f.svc.UsarCashback(context.Background(), "user-1", &domain.UsarCashbackRequest{Valor: 30})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.SaldoAtual != 20 {
		t.Errorf("expected saldo 20.00, got %.2f", resp.SaldoAtual)
	}
	if resp.Transacao.Tipo != domain.TransacaoUso {
		t.Errorf("expected uso transaction, got %s", resp.Transacao.Tipo)
	}
	if resp.Transacao.Descricao != "Resgate de cashback" {
		t.Errorf("expected default description, got %q", resp.Transacao.Descricao)
	}
}

func TestUsarCashback_SaldoInsuficiente(t *testing.T) {
	f := newClienteFixture(t)
	f.cliente.CashbackAcumulado = 10
	if err := f.clientes.UpdateCliente(context.Background(), f.cliente); err != nil {
		t.Fatalf("seed saldo: %v", err)
	}

	_, err := f.svc.UsarCashback(context.Background(), "user-1", &domain.UsarCashbackRequest{Valor: 10.01})
	var saldoErr *domain.ErrSaldoInsuficiente
	if !errors.As(err, &saldoErr) {
		t.Fatalf("expected ErrSaldoInsuficiente, got %v", err)
	}
	if saldoErr.Saldo != 10 || saldoErr.Solicitado != 10.01 {
		t.Errorf("expected saldo=10 solicitado=10.01, got %+v", saldoErr)
	}

	// Exact balance is allowed.
	if _, err := f.svc.UsarCashback(context.Background(), "user-1", &domain.UsarCashbackRequest{Valor: 10}); err != nil {
		t.Errorf("expected full-balance redemption to succeed, got %v", err)
	}
}

func TestUsarCashback_ValorInvalido(t *testing.T) {
	f := newClienteFixture(t)
	for _, valor := range []float64{0, -5} {
		_, err := f.svc.UsarCashback(context.Background(), "user-1", &domain.UsarCashbackRequest{Valor: valor})
		var validation *domain.ErrValidation
		if !errors.As(err, &validation) {
			t.Errorf("valor %.2f: expected validation error, got %v", valor, err)
		}
	}
}

func TestDashboard(t *testing.T) {
	f := newClienteFixture(t)

	for i := 0; i < 3; i++ {
		if _, err := f.svc.CriarPedido(context.Background(), "user-1", &domain.CriarPedidoRequest{
			QuantidadeKg: 20,
			TipoCafe:     domain.CafeGraos,
			TipoTorra:    domain.TorraMedia,
			ValorTotal:   1000,
		}); err != nil {
			t.Fatalf("criar pedido: %v", err)
		}
	}

	dash, err := f.svc.Dashboard(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if dash.PedidosMes != 3 {
		t.Errorf("expected 3 pedidos no mês, got %d", dash.PedidosMes)
	}
	if dash.Cliente.NivelParceria != domain.NivelAvancado {
		t.Errorf("expected avancado at 60kg, got %s", dash.Cliente.NivelParceria)
	}
	if dash.TaxaCashback != 0.015 {
		t.Errorf("expected taxa 0.015, got %f", dash.TaxaCashback)
	}
	if dash.ResumoCashback.TotalGanho != 45 { // 3 x 1000 x 1.5%
		t.Errorf("expected total ganho 45.00, got %.2f", dash.ResumoCashback.TotalGanho)
	}
}

func TestBeneficiosDisponiveis_FiltraPorNivel(t *testing.T) {
	f := newClienteFixture(t)
	seedBeneficio(t, f.fornecedores, "b-inicial", domain.NivelInicial, true)
	seedBeneficio(t, f.fornecedores, "b-avancado", domain.NivelAvancado, true)
	seedBeneficio(t, f.fornecedores, "b-elite", domain.NivelElite, true)
	seedBeneficio(t, f.fornecedores, "b-inativo", domain.NivelInicial, false)

	f.cliente.NivelParceria = domain.NivelAvancado
	if err := f.clientes.UpdateCliente(context.Background(), f.cliente); err != nil {
		t.Fatalf("set nivel: %v", err)
	}

	beneficios, err := f.svc.BeneficiosDisponiveis(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(beneficios) != 2 {
		t.Fatalf("expected 2 beneficios for avancado, got %d", len(beneficios))
	}
	for _, b := range beneficios {
		if b.Beneficio.NivelMinimo == domain.NivelElite {
			t.Error("elite-only benefit leaked to avancado client")
		}
	}
}

func TestHistoricoCashback_TipoInvalido(t *testing.T) {
	f := newClienteFixture(t)
	_, err := f.svc.HistoricoCashback(context.Background(), "user-1", "transferencia", 1, 10)
	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func seedBeneficio(t *testing.T, store *mockFornecedorStore, id string, nivel domain.NivelParceria, ativo bool) {
	t.Helper()
	if err := store.CreateBeneficio(context.Background(), &domain.Beneficio{
		ID:           id,
		FornecedorID: "forn-1",
		Descricao:    "Desconto parceiro",
		NivelMinimo:  nivel,
		Ativo:        ativo,
	}); err != nil {
		t.Fatalf("seed beneficio: %v", err)
	}
}
