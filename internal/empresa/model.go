package empresa

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Empresa struct {
	ID                 string    `gorm:"primaryKey;size:36" json:"id"`
	TenantID           string    `gorm:"uniqueIndex:idx_empresa_tenant_cnpj;size:64;not null" json:"-"`
	CNPJ               string    `gorm:"uniqueIndex:idx_empresa_tenant_cnpj;size:14;not null" json:"cnpj"`
	RazaoSocial        string    `gorm:"size:200" json:"razaoSocial"`
	NomeFantasia       string    `gorm:"size:200" json:"nomeFantasia"`
	Logradouro         string    `json:"logradouro"`
	Numero             string    `gorm:"size:20" json:"numero"`
	Bairro             string    `json:"bairro"`
	Cidade             string    `json:"cidade"`
	UF                 string    `gorm:"size:2" json:"uf"`
	CEP                string    `gorm:"size:8" json:"cep"`
	Telefone           string    `gorm:"size:30" json:"telefone"`
	Email              string    `json:"email"`
	Situacao           string    `gorm:"size:50" json:"situacao"`
	AtividadePrincipal string    `json:"atividadePrincipal"`
	Contatos           []Contato `gorm:"foreignKey:EmpresaID" json:"contatos,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

type Contato struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	TenantID  string    `gorm:"index;size:64;not null" json:"-"`
	EmpresaID string    `gorm:"index;size:36;not null" json:"empresaId"`
	Nome      string    `gorm:"size:150;not null" json:"nome"`
	Email     string    `json:"email"`
	Telefone  string    `gorm:"size:30" json:"telefone"`
	Cargo     string    `json:"cargo"`
	CreatedAt time.Time `json:"createdAt"`
}

// Nome devolve o nome fantasia ou, na falta dele, a razão social
func (e Empresa) Nome() string {
	if e.NomeFantasia != "" {
		return e.NomeFantasia
	}
	return e.RazaoSocial
}

func (e *Empresa) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

func (c *Contato) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
