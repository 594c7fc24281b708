package domain

import "time"

// Cliente is the buyer profile attached to a User of role cliente.
// NivelParceria and TotalComprasMes are refreshed together by the
// operations that recompute the monthly volume (dashboard, order
// creation, manual purchase); they are not recomputed on every read.
type Cliente struct {
	ID                string        `json:"id"`
	UserID            string        `json:"user_id"`
	Empresa           string        `json:"empresa,omitempty"`
	CNPJ              string        `json:"cnpj,omitempty"`
	Endereco          string        `json:"endereco,omitempty"`
	Cidade            string        `json:"cidade,omitempty"`
	Estado            string        `json:"estado,omitempty"`
	CEP               string        `json:"cep,omitempty"`
	NivelParceria     NivelParceria `json:"nivel_parceria"`
	CashbackAcumulado float64       `json:"cashback_acumulado"`
	TotalComprasMes   float64       `json:"total_compras_mes"`
	DataUltimaCompra  *time.Time    `json:"data_ultima_compra,omitempty"`
}

// ClienteResumo is the redacted view fornecedores see when browsing the
// client base (commercial contact data only, no balances).
type ClienteResumo struct {
	ID               string        `json:"id"`
	Nome             string        `json:"nome"`
	Empresa          string        `json:"empresa,omitempty"`
	Cidade           string        `json:"cidade,omitempty"`
	Estado           string        `json:"estado,omitempty"`
	NivelParceria    NivelParceria `json:"nivel_parceria"`
	Telefone         string        `json:"telefone,omitempty"`
	DataUltimaCompra *time.Time    `json:"data_ultima_compra,omitempty"`
}
