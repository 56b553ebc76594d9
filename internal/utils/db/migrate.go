package db

import (
	"github.com/KromaEnergia/api-crm/internal/auth"
	"github.com/KromaEnergia/api-crm/internal/empresa"
	"github.com/KromaEnergia/api-crm/internal/etapa"
	"github.com/KromaEnergia/api-crm/internal/interacao"
	"github.com/KromaEnergia/api-crm/internal/negocio"
	"github.com/KromaEnergia/api-crm/internal/servico"
	"github.com/KromaEnergia/api-crm/internal/tokens"
	"github.com/KromaEnergia/api-crm/internal/usuario"
	"gorm.io/gorm"
)

// Modelos persistidos, na ordem do AutoMigrate
func Modelos() []any {
	return []any{
		&usuario.Usuario{},
		&auth.RefreshToken{},
		&etapa.Etapa{},
		&servico.Servico{},
		&servico.Plano{},
		&empresa.Empresa{},
		&empresa.Contato{},
		&negocio.Negocio{},
		&interacao.Interacao{},
		&tokens.TokenUsage{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Modelos()...)
}
