package domain

// Request/response bodies for the order, cashback, benefit and admin
// endpoints.

// CriarPedidoRequest is the body for POST /v1/cliente/pedidos.
type CriarPedidoRequest struct {
	QuantidadeKg         float64 `json:"quantidade_kg"`
	TipoCafe             string  `json:"tipo_cafe"`
	TipoTorra            string  `json:"tipo_torra"`
	ValorTotal           float64 `json:"valor_total"`
	EnderecoEntrega      string  `json:"endereco_entrega,omitempty"`
	Observacoes          string  `json:"observacoes,omitempty"`
	Automatico           bool    `json:"automatico"`
	DiaEntregaAutomatica int     `json:"dia_entrega_automatica,omitempty"`
}

// CriarPedidoResponse confirms an order and reports the cashback earned
// and the refreshed cliente (balance, volume and tier).
type CriarPedidoResponse struct {
	Message       string   `json:"message"`
	Pedido        *Pedido  `json:"pedido"`
	CashbackGanho float64  `json:"cashback_ganho"`
	Cliente       *Cliente `json:"cliente"`
}

// UsarCashbackRequest is the body for POST /v1/cliente/cashback/usar.
type UsarCashbackRequest struct {
	Valor     float64 `json:"valor"`
	Descricao string  `json:"descricao,omitempty"`
}

// UsarCashbackResponse confirms a redemption.
type UsarCashbackResponse struct {
	Message    string             `json:"message"`
	Transacao  *TransacaoCashback `json:"transacao"`
	SaldoAtual float64            `json:"saldo_atual"`
}

// BeneficioRequest is the body for creating or updating a benefit.
// Ativo is a pointer so an update can leave it untouched.
type BeneficioRequest struct {
	Descricao   string        `json:"descricao"`
	NivelMinimo NivelParceria `json:"nivel_minimo"`
	Ativo       *bool         `json:"ativo,omitempty"`
}

// AtualizarStatusPedidoRequest is the body for PUT /v1/admin/pedidos/{id}/status.
type AtualizarStatusPedidoRequest struct {
	Status StatusPedido `json:"status"`
}

// CompraManualRequest is the body for POST /v1/admin/compras-manuais.
// DataPedido uses the 2006-01-02 layout; empty means today.
type CompraManualRequest struct {
	ClienteID    string  `json:"cliente_id"`
	QuantidadeKg float64 `json:"quantidade_kg"`
	TipoCafe     string  `json:"tipo_cafe"`
	TipoTorra    string  `json:"tipo_torra"`
	ValorTotal   float64 `json:"valor_total"`
	DataPedido   string  `json:"data_pedido,omitempty"`
	Observacoes  string  `json:"observacoes,omitempty"`
}

// CriarAdminRequest is the body for POST /v1/admin/admins.
type CriarAdminRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Nome     string `json:"nome"`
	Telefone string `json:"telefone,omitempty"`
}
