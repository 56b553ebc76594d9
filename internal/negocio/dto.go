package negocio

import (
	"github.com/KromaEnergia/api-crm/internal/etapa"
	"github.com/shopspring/decimal"
)

// AtualizarRequest é usado em PUT /negocios/{id}. ResponsavelID vazio mantém o atual.
type AtualizarRequest struct {
	Titulo        string   `json:"titulo"`
	ContatoIDs    []string `json:"contatoIds"`
	ResponsavelID string   `json:"responsavelId"`
	Termos
}

// MoverRequest é usado em PATCH /negocios/{id}/etapa
type MoverRequest struct {
	EtapaID string `json:"etapaId"`
}

// NegocioDTO acrescenta a etapa resolvida e o preço mensal do plano
type NegocioDTO struct {
	Negocio
	EtapaNome   string          `json:"etapaNome"`
	Bucket      etapa.Bucket    `json:"bucket"`
	PrecoMensal decimal.Decimal `json:"precoMensal"`
}
