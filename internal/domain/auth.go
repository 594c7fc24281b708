package domain

// ============================================================
// Auth — Request / Response types (matches frontend API contract)
// ============================================================

// RegisterRequest is the body for POST /v1/auth/register.
// Profile fields are picked up according to tipo_usuario.
type RegisterRequest struct {
	Email       string      `json:"email"`
	Password    string      `json:"password"`
	Nome        string      `json:"nome"`
	Telefone    string      `json:"telefone,omitempty"`
	TipoUsuario TipoUsuario `json:"tipo_usuario"`

	// Cliente fields
	Empresa  string `json:"empresa,omitempty"`
	CNPJ     string `json:"cnpj,omitempty"`
	Endereco string `json:"endereco,omitempty"`
	Cidade   string `json:"cidade,omitempty"`
	Estado   string `json:"estado,omitempty"`
	CEP      string `json:"cep,omitempty"`

	// Fornecedor fields
	NomeEmpresa string `json:"nome_empresa,omitempty"`
	Categoria   string `json:"categoria,omitempty"`
	Descricao   string `json:"descricao,omitempty"`
	Instagram   string `json:"instagram,omitempty"`
	Site        string `json:"site,omitempty"`
}

// RegisterResponse is the body for 201 from POST /v1/auth/register.
// Token is empty for fornecedores awaiting approval.
type RegisterResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token,omitempty"`
	User    *UserPerfil `json:"user"`
}

// LoginRequest is the body for POST /v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the body for 200 from POST /v1/auth/login.
type LoginResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    *UserPerfil `json:"user"`
}

// UserPerfil is a user plus the role-specific profile embedded the way
// the frontend consumes it.
type UserPerfil struct {
	User
	Cliente    *Cliente    `json:"cliente,omitempty"`
	Fornecedor *Fornecedor `json:"fornecedor,omitempty"`
}

// UpdateProfileRequest is the body for PUT /v1/auth/profile. Pointer
// fields distinguish "absent" from "set to empty".
type UpdateProfileRequest struct {
	Nome     *string `json:"nome,omitempty"`
	Telefone *string `json:"telefone,omitempty"`

	// Cliente fields
	Empresa  *string `json:"empresa,omitempty"`
	CNPJ     *string `json:"cnpj,omitempty"`
	Endereco *string `json:"endereco,omitempty"`
	Cidade   *string `json:"cidade,omitempty"`
	Estado   *string `json:"estado,omitempty"`
	CEP      *string `json:"cep,omitempty"`

	// Fornecedor fields
	NomeEmpresa *string `json:"nome_empresa,omitempty"`
	Categoria   *string `json:"categoria,omitempty"`
	Descricao   *string `json:"descricao,omitempty"`
	Instagram   *string `json:"instagram,omitempty"`
	Site        *string `json:"site,omitempty"`
}

// ChangePasswordRequest is the body for PUT /v1/auth/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ForgotPasswordRequest is the body for POST /v1/auth/forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest is the body for POST /v1/auth/reset-password.
type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ValidateResetTokenRequest is the body for POST /v1/auth/validate-reset-token.
type ValidateResetTokenRequest struct {
	Token string `json:"token"`
}

// ValidateResetTokenResponse reports whether a reset token is usable.
type ValidateResetTokenResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
	Email   string `json:"email,omitempty"`
}

// SuccessResponse is a generic message envelope.
type SuccessResponse struct {
	Message string `json:"message"`
}
