package negocio

import (
	ierr "github.com/KromaEnergia/api-crm/internal/errors"
	"github.com/KromaEnergia/api-crm/internal/servico"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Termos são as condições comerciais do negócio (terceiro passo do cadastro)
type Termos struct {
	ServicoID   string          `json:"servicoId"`
	PlanoID     string          `json:"planoId"`
	PrecoCustom decimal.Decimal `json:"precoCustom"`
	ValorSetup  decimal.Decimal `json:"valorSetup"`
	Desconto    decimal.Decimal `json:"desconto"`
}

var cem = decimal.NewFromInt(100)

func invalido(msg string) error {
	return ierr.NewError(msg).WithHint(msg).Mark(ierr.ErrValidation)
}

// ValidarTermos confere valores, desconto e a existência de serviço e plano no tenant.
// descontoAtual é o desconto já gravado; só admin pode mudá-lo.
func ValidarTermos(db *gorm.DB, servicos servico.Repository, tenantID string, isAdmin bool, t *Termos, descontoAtual decimal.Decimal) error {
	if t.ValorSetup.IsNegative() {
		return invalido("o valor de setup não pode ser negativo")
	}
	if !t.Desconto.Equal(descontoAtual) && !isAdmin {
		return ierr.NewError("desconto alterado por não-admin").
			WithHint("apenas administradores podem conceder desconto").
			Mark(ierr.ErrPermissionDenied)
	}
	if t.Desconto.IsNegative() || t.Desconto.GreaterThan(cem) {
		return invalido("o desconto deve estar entre 0 e 100")
	}

	if t.PlanoID != PlanoCustom {
		t.PrecoCustom = decimal.Zero
	} else if t.PrecoCustom.IsNegative() {
		return invalido("o preço personalizado não pode ser negativo")
	}

	if t.PlanoID != "" && t.PlanoID != PlanoCustom && t.ServicoID == "" {
		return invalido("informe o serviço do plano")
	}
	if t.ServicoID == "" {
		return nil
	}

	s, err := servicos.BuscarPorID(db, tenantID, t.ServicoID)
	if err != nil {
		return err
	}
	if t.PlanoID != "" && t.PlanoID != PlanoCustom {
		if _, ok := s.Plano(t.PlanoID); !ok {
			return ierr.NewErrorf("plano %s fora do serviço %s", t.PlanoID, t.ServicoID).
				WithHint("plano não encontrado").
				Mark(ierr.ErrNotFound)
		}
	}
	return nil
}
