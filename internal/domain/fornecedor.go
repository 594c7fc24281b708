package domain

// Fornecedor is the supplier profile attached to a User of role
// fornecedor. Its benefits are cascade-deleted with the profile.
type Fornecedor struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	NomeEmpresa string `json:"nome_empresa"`
	CNPJ        string `json:"cnpj,omitempty"`
	Categoria   string `json:"categoria"`
	Descricao   string `json:"descricao,omitempty"`
	Endereco    string `json:"endereco,omitempty"`
	Cidade      string `json:"cidade,omitempty"`
	Estado      string `json:"estado,omitempty"`
	CEP         string `json:"cep,omitempty"`
	Instagram   string `json:"instagram,omitempty"`
	Site        string `json:"site,omitempty"`
}

// Beneficio is a supplier-authored perk gated by a minimum tier.
type Beneficio struct {
	ID           string        `json:"id"`
	FornecedorID string        `json:"fornecedor_id"`
	Descricao    string        `json:"descricao"`
	NivelMinimo  NivelParceria `json:"nivel_minimo"`
	Ativo        bool          `json:"ativo"`
}

// BeneficioDisponivel pairs a visible benefit with the contact data of
// the supplier offering it, as shown to qualifying clients.
type BeneficioDisponivel struct {
	Beneficio  Beneficio         `json:"beneficio"`
	Fornecedor ContatoFornecedor `json:"fornecedor"`
}

// ContatoFornecedor is the public contact card of a supplier.
type ContatoFornecedor struct {
	ID          string `json:"id"`
	NomeEmpresa string `json:"nome_empresa"`
	Categoria   string `json:"categoria"`
	Telefone    string `json:"telefone,omitempty"`
	Instagram   string `json:"instagram,omitempty"`
	Site        string `json:"site,omitempty"`
}
