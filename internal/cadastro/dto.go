package cadastro

import (
	"github.com/KromaEnergia/api-crm/internal/empresa"
	"github.com/KromaEnergia/api-crm/internal/negocio"
)

// CadastroRequest reúne os três passos do assistente de novo negócio
type CadastroRequest struct {
	Empresa  EmpresaRequest   `json:"empresa"`
	Contatos []ContatoRequest `json:"contatos" validate:"dive"`
	Negocio  NegocioRequest   `json:"negocio"`
}

type EmpresaRequest struct {
	CNPJ               string `json:"cnpj" validate:"required"`
	RazaoSocial        string `json:"razaoSocial"`
	NomeFantasia       string `json:"nomeFantasia"`
	Logradouro         string `json:"logradouro"`
	Numero             string `json:"numero"`
	Bairro             string `json:"bairro"`
	Cidade             string `json:"cidade"`
	UF                 string `json:"uf" validate:"omitempty,len=2"`
	CEP                string `json:"cep"`
	Telefone           string `json:"telefone"`
	Email              string `json:"email" validate:"omitempty,email"`
	Situacao           string `json:"situacao"`
	AtividadePrincipal string `json:"atividadePrincipal"`
}

type ContatoRequest struct {
	Nome     string `json:"nome"`
	Email    string `json:"email" validate:"omitempty,email"`
	Telefone string `json:"telefone"`
	Cargo    string `json:"cargo"`
}

type NegocioRequest struct {
	Titulo        string `json:"titulo"`
	EtapaID       string `json:"etapaId"`
	ResponsavelID string `json:"responsavelId"`
	negocio.Termos
}

// Resultado informa se a empresa já existia no tenant
type Resultado struct {
	Negocio          negocio.Negocio   `json:"negocio"`
	Empresa          empresa.Empresa   `json:"empresa"`
	Contatos         []empresa.Contato `json:"contatos"`
	EmpresaExistente bool              `json:"empresaExistente"`
}
