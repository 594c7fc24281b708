package domain

import "time"

// Listing filters. Zero values mean "no filter".

// PedidoFiltro narrows order listings.
type PedidoFiltro struct {
	Status     StatusPedido
	ClienteID  string
	Mes        int
	Ano        int
	DataInicio *time.Time
	DataFim    *time.Time
}

// ClienteFiltro narrows cliente listings for fornecedores.
type ClienteFiltro struct {
	Nivel  NivelParceria
	Cidade string
	Busca  string
}

// UsuarioFiltro narrows admin user listings. Ativo nil means both.
type UsuarioFiltro struct {
	Tipo  TipoUsuario
	Ativo *bool
	Busca string
}
