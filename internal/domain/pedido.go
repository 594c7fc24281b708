package domain

import "time"

// StatusPedido is the closed set of order states.
// pendente → processando → entregue, with cancelado reachable from any
// non-terminal state. entregue and cancelado are terminal.
type StatusPedido string

const (
	StatusPendente    StatusPedido = "pendente"
	StatusProcessando StatusPedido = "processando"
	StatusEntregue    StatusPedido = "entregue"
	StatusCancelado   StatusPedido = "cancelado"
)

// Valid reports whether s is one of the four known states.
func (s StatusPedido) Valid() bool {
	switch s {
	case StatusPendente, StatusProcessando, StatusEntregue, StatusCancelado:
		return true
	}
	return false
}

// Coffee and roast types accepted on orders.
const (
	CafeMoido   = "moido"
	CafeGraos   = "graos"
	TorraMedia  = "media"
	TorraEscura = "escura"
)

// TipoCafeValido reports whether v names a known coffee type.
func TipoCafeValido(v string) bool { return v == CafeMoido || v == CafeGraos }

// TipoTorraValido reports whether v names a known roast type.
func TipoTorraValido(v string) bool { return v == TorraMedia || v == TorraEscura }

// Pedido is a coffee order. Creating one always posts exactly one
// ganho cashback entry, atomically with the insert.
type Pedido struct {
	ID                   string       `json:"id"`
	ClienteID            string       `json:"cliente_id"`
	QuantidadeKg         float64      `json:"quantidade_kg"`
	TipoCafe             string       `json:"tipo_cafe"`
	TipoTorra            string       `json:"tipo_torra"`
	ValorTotal           float64      `json:"valor_total"`
	Status               StatusPedido `json:"status"`
	DataPedido           time.Time    `json:"data_pedido"`
	DataEntrega          *time.Time   `json:"data_entrega,omitempty"`
	EnderecoEntrega      string       `json:"endereco_entrega,omitempty"`
	Observacoes          string       `json:"observacoes,omitempty"`
	Automatico           bool         `json:"automatico"`
	DiaEntregaAutomatica int          `json:"dia_entrega_automatica,omitempty"`
}

// PedidoComCliente is the admin listing view: the order plus the
// identifying data of the buying client.
type PedidoComCliente struct {
	Pedido  Pedido        `json:"pedido"`
	Cliente ClientePedido `json:"cliente"`
}

// ClientePedido identifies the client behind an order in listings.
type ClientePedido struct {
	ID            string        `json:"id"`
	Nome          string        `json:"nome"`
	Email         string        `json:"email"`
	Empresa       string        `json:"empresa,omitempty"`
	NivelParceria NivelParceria `json:"nivel_parceria,omitempty"`
}
