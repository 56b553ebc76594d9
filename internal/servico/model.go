package servico

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Servico struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	TenantID  string    `gorm:"index;size:64;not null" json:"-"`
	Nome      string    `gorm:"size:150;not null" json:"nome"`
	Descricao string    `gorm:"type:text" json:"descricao"`
	Ativo     bool      `json:"ativo"`
	Planos    []Plano   `gorm:"foreignKey:ServicoID;constraint:OnDelete:CASCADE" json:"planos"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Plano é uma opção de preço mensal de um serviço
type Plano struct {
	ID          string          `gorm:"primaryKey;size:36" json:"id"`
	ServicoID   string          `gorm:"index;size:36;not null" json:"servicoId"`
	Nome        string          `gorm:"size:150;not null" json:"nome"`
	PrecoMensal decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"precoMensal"`
	Duracao     string          `gorm:"size:50" json:"duracao"`
	Recursos    []string        `gorm:"type:jsonb;serializer:json" json:"recursos"`
	Ativo       bool            `json:"ativo"`
}

func (s *Servico) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

func (p *Plano) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Plano devolve o plano do serviço pelo id
func (s Servico) Plano(id string) (Plano, bool) {
	for _, p := range s.Planos {
		if p.ID == id {
			return p, true
		}
	}
	return Plano{}, false
}
