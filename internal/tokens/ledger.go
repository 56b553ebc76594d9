package tokens

import (
	"context"
	"errors"
	"time"

	ierr "github.com/KromaEnergia/api-crm/internal/errors"
	"github.com/KromaEnergia/api-crm/internal/logger"
	"github.com/KromaEnergia/api-crm/internal/metrics"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Ledger struct {
	DB       *gorm.DB
	PlanDays int
	Metrics  *metrics.Collector
	Logger   *logger.Logger
	agora    func() time.Time
}

func NewLedger(db *gorm.DB, planDays int, m *metrics.Collector, log *logger.Logger) *Ledger {
	if planDays <= 0 {
		planDays = 30
	}
	return &Ledger{DB: db, PlanDays: planDays, Metrics: m, Logger: log, agora: func() time.Time { return time.Now().UTC() }}
}

// CheckAndReserve debita cost do saldo se houver saldo e o plano não tiver expirado.
// O débito é um único UPDATE condicional: chamadas concorrentes nunca passam do total.
func (l *Ledger) CheckAndReserve(ctx context.Context, ownerRef string, cost int64) (bool, error) {
	if cost <= 0 {
		return false, ierr.NewErrorf("custo inválido: %d", cost).
			WithHint("o custo deve ser positivo").
			Mark(ierr.ErrValidation)
	}
	agora := l.agora()
	res := l.DB.WithContext(ctx).Model(&TokenUsage{}).
		Where("owner_ref = ? AND used_tokens + ? <= total_tokens AND expiration_date > ?", ownerRef, cost, agora).
		Updates(map[string]any{
			"used_tokens":  gorm.Expr("used_tokens + ?", cost),
			"last_updated": agora,
		})
	if res.Error != nil {
		return false, ierr.WithError(res.Error).WithHint("erro ao reservar tokens").Mark(ierr.ErrDatabase)
	}

	ok := res.RowsAffected == 1
	if l.Metrics != nil {
		l.Metrics.RecordReservation(ok)
	}
	return ok, nil
}

// ResetForNewPlan grava o novo total, zera o uso e renova a expiração
func (l *Ledger) ResetForNewPlan(ctx context.Context, ownerRef, tenantID string, total int64, planLabel string) (*TokenUsage, error) {
	if ownerRef == "" || total < 0 {
		return nil, ierr.NewError("plano inválido").
			WithHint("dono e total de tokens (≥0) são obrigatórios").
			Mark(ierr.ErrValidation)
	}
	agora := l.agora()
	u := &TokenUsage{
		OwnerRef:       ownerRef,
		TenantID:       tenantID,
		TotalTokens:    total,
		UsedTokens:     0,
		PlanLabel:      planLabel,
		LastUpdated:    agora,
		ExpirationDate: agora.AddDate(0, 0, l.PlanDays),
	}
	err := l.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_ref"}},
		DoUpdates: clause.AssignmentColumns([]string{"tenant_id", "total_tokens", "used_tokens", "plan_label", "last_updated", "expiration_date"}),
	}).Create(u).Error
	if err != nil {
		return nil, ierr.WithError(err).WithHint("erro ao ativar plano").Mark(ierr.ErrDatabase)
	}
	l.Logger.Infow("plano de tokens ativado", "owner", ownerRef, "tenant", tenantID, "total", total, "plano", planLabel)
	return u, nil
}

func (l *Ledger) Consultar(ctx context.Context, ownerRef string) (*TokenUsage, error) {
	var u TokenUsage
	err := l.DB.WithContext(ctx).Where("owner_ref = ?", ownerRef).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ierr.WithError(err).WithHint("nenhum plano de tokens ativo").Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return &u, nil
}
