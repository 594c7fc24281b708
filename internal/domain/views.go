package domain

import "time"

// Aggregated read models served by dashboards and listings.

// Page carries the pagination metadata the frontend paginators expect.
type Page struct {
	Total       int `json:"total"`
	Pages       int `json:"pages"`
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
}

// NumPages computes the page count for a total at a given page size.
func NumPages(total, perPage int) int {
	if perPage <= 0 {
		return 0
	}
	pages := total / perPage
	if total%perPage != 0 {
		pages++
	}
	return pages
}

// ClienteDashboard is the payload for GET /v1/cliente/dashboard.
type ClienteDashboard struct {
	Cliente               *Cliente            `json:"cliente"`
	PedidosMes            int                 `json:"pedidos_mes"`
	ProximasEntregas      []Pedido            `json:"proximas_entregas"`
	UltimasTransacoes     []TransacaoCashback `json:"ultimas_transacoes"`
	ResumoCashback        ResumoCashback      `json:"resumo_cashback"`
	BeneficiosDisponiveis int                 `json:"beneficios_disponiveis"`
	TaxaCashback          float64             `json:"taxa_cashback"`
}

// PedidosPage is a paginated order listing.
type PedidosPage struct {
	Pedidos []Pedido `json:"pedidos"`
	Page
}

// TransacoesPage is a paginated cashback ledger listing plus totals.
type TransacoesPage struct {
	Transacoes []TransacaoCashback `json:"transacoes"`
	Resumo     ResumoCashback      `json:"resumo"`
	Page
}

// FornecedorDashboard is the payload for GET /v1/fornecedor/dashboard.
type FornecedorDashboard struct {
	Fornecedor       *Fornecedor           `json:"fornecedor"`
	TotalClientes    int                   `json:"total_clientes"`
	ClientesPorNivel map[NivelParceria]int `json:"clientes_por_nivel"`
	BeneficiosAtivos int                   `json:"beneficios_ativos"`
}

// EstatisticasClientes is the payload for
// GET /v1/fornecedor/estatisticas-clientes: where the client base is,
// how it distributes over the tiers, and who bought recently.
type EstatisticasClientes struct {
	ClientesPorCidade      []ContagemCidade `json:"clientes_por_cidade"`
	ClientesPorNivel       []ContagemNivel  `json:"clientes_por_nivel"`
	ClientesAtivosRecentes []ClienteAtivo   `json:"clientes_ativos_recentes"`
}

// ContagemCidade is one bucket of the city distribution.
type ContagemCidade struct {
	Cidade string `json:"cidade"`
	Count  int    `json:"count"`
}

// ContagemNivel is one bucket of the tier distribution.
type ContagemNivel struct {
	Nivel NivelParceria `json:"nivel"`
	Count int           `json:"count"`
}

// ClienteAtivo is a client with a purchase inside the activity window.
type ClienteAtivo struct {
	Nome             string        `json:"nome"`
	Empresa          string        `json:"empresa,omitempty"`
	Cidade           string        `json:"cidade,omitempty"`
	NivelParceria    NivelParceria `json:"nivel_parceria"`
	DataUltimaCompra *time.Time    `json:"data_ultima_compra,omitempty"`
}

// ClientesPage is a paginated listing of redacted cliente profiles.
type ClientesPage struct {
	Clientes []ClienteResumo `json:"clientes"`
	Page
}

// AdminDashboard is the payload for GET /v1/admin/dashboard.
type AdminDashboard struct {
	TotalClientes          int                   `json:"total_clientes"`
	TotalFornecedores      int                   `json:"total_fornecedores"`
	FornecedoresPendentes  int                   `json:"fornecedores_pendentes"`
	PedidosPendentes       int                   `json:"pedidos_pendentes"`
	PedidosMes             int                   `json:"pedidos_mes"`
	VolumeMesKg            float64               `json:"volume_mes_kg"`
	FaturamentoMes         float64               `json:"faturamento_mes"`
	CashbackAcumuladoTotal float64               `json:"cashback_acumulado_total"`
	UltimosPedidos         []PedidoComCliente    `json:"ultimos_pedidos"`
	ClientesPorNivel       map[NivelParceria]int `json:"clientes_por_nivel"`
}

// UsuariosPage is a paginated admin user listing.
type UsuariosPage struct {
	Usuarios []UserPerfil `json:"usuarios"`
	Page
}

// PedidosAdminPage is a paginated admin order listing with cliente info.
type PedidosAdminPage struct {
	Pedidos []PedidoComCliente `json:"pedidos"`
	Page
}

// MetricasOperacionais is a point-in-time snapshot of the service
// counters, served by GET /v1/admin/metrics.
type MetricasOperacionais struct {
	TotalRequisicoes  int64   `json:"total_requisicoes"`
	TaxaErro          float64 `json:"taxa_erro"`
	PedidosCriados    int64   `json:"pedidos_criados"`
	CashbackCreditado float64 `json:"cashback_creditado"`
	CashbackResgatado float64 `json:"cashback_resgatado"`
	EmailsEnviados    int64   `json:"emails_enviados"`
	TaxaAcertoCache   float64 `json:"taxa_acerto_cache"`
	Periodo           string  `json:"periodo"`
}

// RelatorioVendas is the payload for GET /v1/admin/relatorio-vendas.
// Only entregue and processando orders count toward sales.
type RelatorioVendas struct {
	Inicio           string          `json:"inicio"`
	Fim              string          `json:"fim"`
	TotalPedidos     int             `json:"total_pedidos"`
	VolumeTotalKg    float64         `json:"volume_total_kg"`
	FaturamentoTotal float64         `json:"faturamento_total"`
	CashbackGerado   float64         `json:"cashback_gerado"`
	PorMes           []VendasMes     `json:"por_mes"`
	TopClientes      []VendasCliente `json:"top_clientes"`
}

// VendasMes buckets sales by calendar month.
type VendasMes struct {
	Mes              string  `json:"mes"`
	TotalPedidos     int     `json:"total_pedidos"`
	VolumeKg         float64 `json:"volume_kg"`
	FaturamentoTotal float64 `json:"faturamento_total"`
}

// VendasCliente ranks a cliente inside the sales report.
type VendasCliente struct {
	ClienteID        string  `json:"cliente_id"`
	Empresa          string  `json:"empresa"`
	TotalPedidos     int     `json:"total_pedidos"`
	VolumeKg         float64 `json:"volume_kg"`
	FaturamentoTotal float64 `json:"faturamento_total"`
}
