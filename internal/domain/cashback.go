package domain

import "time"

// TipoTransacao distinguishes accrual from redemption in the ledger.
type TipoTransacao string

const (
	TransacaoGanho TipoTransacao = "ganho"
	TransacaoUso   TipoTransacao = "uso"
)

// TransacaoCashback is one append-only ledger entry. Ganho entries
// reference the order that generated them; uso entries stand alone.
// The client's cashback_acumulado field is kept in lockstep with the
// ledger inside the same database transaction.
type TransacaoCashback struct {
	ID            string        `json:"id"`
	ClienteID     string        `json:"cliente_id"`
	PedidoID      string        `json:"pedido_id,omitempty"`
	Tipo          TipoTransacao `json:"tipo"`
	Valor         float64       `json:"valor"`
	Descricao     string        `json:"descricao,omitempty"`
	DataTransacao time.Time     `json:"data_transacao"`
}

// ResumoCashback summarizes a client's ledger.
type ResumoCashback struct {
	TotalGanho float64 `json:"total_ganho"`
	TotalUsado float64 `json:"total_usado"`
	SaldoAtual float64 `json:"saldo_atual"`
}
