package usuario

// LoginRequest é usado em POST /auth/login
type LoginRequest struct {
	Email string `json:"email" validate:"required,email"`
	Senha string `json:"senha" validate:"required"`
}

// CreateUsuarioRequest é usado em POST /usuarios. Senha vazia gera uma temporária.
type CreateUsuarioRequest struct {
	Nome    string `json:"nome" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Senha   string `json:"senha"`
	IsAdmin bool   `json:"isAdmin"`
}

type CreateUsuarioResponse struct {
	Usuario
	SenhaTemporaria string `json:"senhaTemporaria,omitempty"`
}
