package interacao

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Tipo string

const (
	TipoNota         Tipo = "note"
	TipoLigacao      Tipo = "call"
	TipoEmail        Tipo = "email"
	TipoMudancaEtapa Tipo = "stage_change"
	TipoMudancaCampo Tipo = "field_change"
)

// Manual indica os tipos que o usuário pode registrar diretamente
func (t Tipo) Manual() bool {
	return t == TipoNota || t == TipoLigacao || t == TipoEmail
}

// Interacao é uma entrada do histórico de um negócio. Só existe inserção.
type Interacao struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	TenantID  string    `gorm:"index;size:64;not null" json:"-"`
	NegocioID string    `gorm:"index;size:36;not null" json:"negocioId"`
	AutorID   string    `gorm:"size:36" json:"autorId,omitempty"` // vazio para o sistema
	Tipo      Tipo      `gorm:"size:20;not null" json:"tipo"`
	Descricao string    `gorm:"type:text;not null" json:"descricao"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

func (i *Interacao) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
