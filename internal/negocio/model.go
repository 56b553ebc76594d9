package negocio

import (
	"time"

	"github.com/KromaEnergia/api-crm/internal/servico"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PlanoCustom no PlanoID indica preço mensal negociado fora do catálogo (PrecoCustom)
const PlanoCustom = "custom"

// Negocio é uma oportunidade de venda. Não é apagado: termina numa etapa de ganho ou perda.
type Negocio struct {
	ID            string          `gorm:"primaryKey;size:36" json:"id"`
	TenantID      string          `gorm:"index:idx_negocio_tenant_resp;index:idx_negocio_tenant_etapa;size:64;not null" json:"-"`
	Titulo        string          `gorm:"size:200" json:"titulo"`
	EmpresaID     string          `gorm:"index;size:36;not null" json:"empresaId"`
	ContatoIDs    []string        `gorm:"type:jsonb;serializer:json" json:"contatoIds"`
	ServicoID     string          `gorm:"index;size:36" json:"servicoId,omitempty"`
	PlanoID       string          `gorm:"index;size:36" json:"planoId,omitempty"`
	PrecoCustom   decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"precoCustom"`
	ValorSetup    decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"valorSetup"`
	Desconto      decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"desconto"`
	EtapaID       string          `gorm:"index:idx_negocio_tenant_etapa;size:36;not null" json:"etapaId"`
	ResponsavelID string          `gorm:"index:idx_negocio_tenant_resp;size:36;not null" json:"responsavelId"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func (n *Negocio) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

// PrecoMensal resolve o preço do plano do negócio no catálogo.
// Sem plano, ou com serviço/plano removido, o preço é zero.
func (n Negocio) PrecoMensal(catalogo []servico.Servico) decimal.Decimal {
	if n.PlanoID == PlanoCustom {
		return n.PrecoCustom
	}
	if n.PlanoID == "" {
		return decimal.Zero
	}
	for _, s := range catalogo {
		if s.ID != n.ServicoID {
			continue
		}
		if p, ok := s.Plano(n.PlanoID); ok {
			return p.PrecoMensal
		}
	}
	return decimal.Zero
}
