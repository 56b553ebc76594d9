package etapa

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Etapa é um passo do funil, com nome e cor definidos pelo tenant
type Etapa struct {
	ID       string `gorm:"primaryKey;size:36" json:"id"`
	TenantID string `gorm:"index:idx_etapa_tenant_ordem;size:64;not null" json:"-"`
	Nome     string `gorm:"size:100;not null" json:"nome"`
	Cor      string `gorm:"size:30" json:"cor"`
	Ordem    int    `gorm:"index:idx_etapa_tenant_ordem;not null" json:"ordem"`
}

func (e *Etapa) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

type padrao struct{ nome, cor string }

var etapasPadrao = []padrao{
	{"Mapeada", "gray"},
	{"Em Contato", "blue"},
	{"Proposta Enviada", "yellow"},
	{"Fechada", "green"},
	{"Perdida", "red"},
}

// Padrao devolve as cinco etapas iniciais de um tenant novo
func Padrao(tenantID string) []Etapa {
	out := make([]Etapa, len(etapasPadrao))
	for i, p := range etapasPadrao {
		out[i] = Etapa{ID: uuid.NewString(), TenantID: tenantID, Nome: p.nome, Cor: p.cor, Ordem: i}
	}
	return out
}
