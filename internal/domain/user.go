// Package domain contains the core entities, the partnership/cashback
// rules and the typed errors shared by all layers.
package domain

import "time"

// TipoUsuario is the closed set of account roles.
type TipoUsuario string

const (
	TipoCliente    TipoUsuario = "cliente"
	TipoFornecedor TipoUsuario = "fornecedor"
	TipoAdmin      TipoUsuario = "admin"
)

// Valid reports whether t is one of the three known roles.
func (t TipoUsuario) Valid() bool {
	switch t {
	case TipoCliente, TipoFornecedor, TipoAdmin:
		return true
	}
	return false
}

// User is the identity record behind every account.
// Fornecedores start with Aprovado=false and cannot log in until an
// admin approves them; Ativo=false blocks login for any role.
type User struct {
	ID           string      `json:"id"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	Nome         string      `json:"nome"`
	Telefone     string      `json:"telefone,omitempty"`
	TipoUsuario  TipoUsuario `json:"tipo_usuario"`
	Ativo        bool        `json:"ativo"`
	Aprovado     bool        `json:"aprovado"`
	DataCriacao  time.Time   `json:"data_criacao"`

	// Password reset: token stored sha256-hashed, purged on use or expiry.
	ResetTokenHash   string     `json:"-"`
	ResetTokenExpira *time.Time `json:"-"`
}
