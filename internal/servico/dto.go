package servico

import "github.com/shopspring/decimal"

// PlanoRequest sem ID cria um plano novo; com ID altera o existente
type PlanoRequest struct {
	ID          string          `json:"id"`
	Nome        string          `json:"nome" validate:"required"`
	PrecoMensal decimal.Decimal `json:"precoMensal"`
	Duracao     string          `json:"duracao"`
	Recursos    []string        `json:"recursos"`
	Ativo       *bool           `json:"ativo"`
}

// ServicoRequest é usado em POST /servicos e PUT /servicos/{id}
type ServicoRequest struct {
	Nome      string         `json:"nome" validate:"required"`
	Descricao string         `json:"descricao"`
	Ativo     *bool          `json:"ativo"`
	Planos    []PlanoRequest `json:"planos" validate:"required,min=1,dive"`
}
